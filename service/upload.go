package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/enums"
)

// uploader 把上传文件写入 FileStore，并负责尽力而为的清理
type uploader struct {
	store  dependencies.FileStore
	logger *zap.Logger
}

// objectKey 生成对象键：<prefix>YYYYMMDD/<uuid><ext>
func objectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	return fmt.Sprintf("%s%s/%s%s", prefix, time.Now().UTC().Format("20060102"), uuid.NewString(), ext)
}

// save 保存文件并返回根相对引用
func (u *uploader) save(ctx context.Context, prefix string, file *dto.FileUpload) (string, error) {
	key := objectKey(prefix, file.Filename)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := u.store.Save(ctx, key, file.Reader, file.Size, contentType); err != nil {
		return "", fmt.Errorf("保存上传文件失败: %w", err)
	}
	return dependencies.ObjectRef(key), nil
}

// discard 删除引用对应的文件，失败只记录日志
func (u *uploader) discard(ctx context.Context, ref *string) {
	if ref == nil {
		return
	}
	key, ok := dependencies.KeyFromRef(*ref)
	if !ok {
		return
	}
	if err := u.store.Delete(ctx, key); err != nil {
		u.logger.Warn("清理上传文件失败，已忽略", zap.String("key", key), zap.Error(err))
	}
}

// classifyFileType 按声明的 MIME 类型给公告附件分类
func classifyFileType(contentType string) enums.FileType {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch {
	case mediaType == "application/pdf":
		return enums.FileTypePDF
	case strings.HasPrefix(mediaType, "image/"):
		return enums.FileTypeImage
	}
	return enums.FileTypeOther
}
