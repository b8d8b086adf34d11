package constant

// UploadsRoutePrefix 所有上传文件对外暴露的根相对路径前缀，与存储后端无关
const UploadsRoutePrefix = "/uploads"

// 对象键前缀，按用途分目录
const (
	ObjectKeyPrefixAvatars     = "avatars/"
	ObjectKeyPrefixPostImages  = "posts/"
	ObjectKeyPrefixNoticeFiles = "notices/"
)
