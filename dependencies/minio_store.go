package dependencies

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/config"
)

type minioStore struct {
	client *minio.Client
	bucket string
	logger *core.ZapLogger
}

// InitMinIO 初始化 MinIO (S3 兼容) 存储，存储桶不存在时自动创建
func InitMinIO(cfg *config.MinIOConfig, logger *core.ZapLogger) (FileStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("MinIO 配置不完整，缺少 endpoint 或 bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
		logger.Info("已创建 MinIO 存储桶", zap.String("bucket", cfg.Bucket))
	}

	logger.Info("MinIO 客户端初始化成功", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	return &minioStore{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

func (m *minioStore) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := ValidateObjectKey(key); err != nil {
		return err
	}
	_, err := m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		m.logger.Error("MinIO 文件上传失败", zap.String("对象键", key), zap.Error(err))
		return fmt.Errorf("上传文件 '%s' 到 MinIO 失败: %w", key, err)
	}
	return nil
}

func (m *minioStore) Open(ctx context.Context, key string) (*StoredObject, error) {
	if err := ValidateObjectKey(key); err != nil {
		return nil, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("从 MinIO 读取对象 '%s' 失败: %w", key, err)
	}
	// GetObject 是惰性的，Stat 才会真正请求
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("读取 MinIO 对象信息 '%s' 失败: %w", key, err)
	}
	return &StoredObject{Body: obj, ContentType: info.ContentType, Size: info.Size}, nil
}

func (m *minioStore) Delete(ctx context.Context, key string) error {
	if err := ValidateObjectKey(key); err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("从 MinIO 删除对象 '%s' 失败: %w", key, err)
	}
	return nil
}
