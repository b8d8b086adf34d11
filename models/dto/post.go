package dto

import "io"

// FileUpload 已打开的上传文件。Reader 的生命周期由控制器负责（defer Close）。
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreatePostRequest multipart 表单中的文本字段，图片字段名为 postImage
type CreatePostRequest struct {
	Content string `form:"content" binding:"max=5000"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"max=2000"`
}
