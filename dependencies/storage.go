package dependencies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/campus_service/config"
	"github.com/Xushengqwer/campus_service/constant"
)

// 存储后端
const (
	StorageLocal = "local"
	StorageCOS   = "cos"
	StorageMinIO = "minio"
)

var (
	// ErrObjectNotFound 对象不存在
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrInvalidObjectKey 对象键为空、是绝对路径或包含 ..
	ErrInvalidObjectKey = errors.New("storage: invalid object key")
)

// StoredObject 读取到的对象，调用方负责 Close
type StoredObject struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// FileStore 上传文件的存储后端。
// 对外暴露的引用统一是 /uploads/<key> 形式的根相对路径，由 GET /uploads/* 读出，
// 因此更换后端不影响客户端。
type FileStore interface {
	Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// ValidateObjectKey 拒绝可能逃逸出存储根目录的键
func ValidateObjectKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidObjectKey
	}
	if path.Clean(key) != key {
		return ErrInvalidObjectKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return ErrInvalidObjectKey
		}
	}
	return nil
}

// ObjectRef 把对象键转换为对外的根相对路径
func ObjectRef(key string) string {
	return constant.UploadsRoutePrefix + "/" + key
}

// KeyFromRef 从根相对路径还原对象键；不是本服务生成的引用时返回 false
func KeyFromRef(ref string) (string, bool) {
	prefix := constant.UploadsRoutePrefix + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(ref, prefix)
	if ValidateObjectKey(key) != nil {
		return "", false
	}
	return key, true
}

// InitFileStore 按配置选择存储后端
func InitFileStore(cfg *appConfig.StorageConfig, logger *core.ZapLogger) (FileStore, error) {
	driver := strings.ToLower(cfg.Driver)
	logger.Info("初始化文件存储", zap.String("driver", driver))
	switch driver {
	case "", StorageLocal:
		return NewLocalStore(cfg.Local.RootDir)
	case StorageCOS:
		return InitCOS(&cfg.COS, logger)
	case StorageMinIO:
		return InitMinIO(&cfg.MinIO, logger)
	}
	return nil, fmt.Errorf("不支持的存储后端: %s", cfg.Driver)
}
