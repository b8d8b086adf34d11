package dependencies

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Xushengqwer/go-common/core"
	"github.com/tencentyun/cos-go-sdk-v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/config"
)

type cosStore struct {
	client *cos.Client
	logger *core.ZapLogger
}

// InitCOS 初始化腾讯云 COS 存储
func InitCOS(cfg *config.COSConfig, logger *core.ZapLogger) (FileStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("COS 配置不能为nil")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" || cfg.BucketName == "" || cfg.AppID == "" || cfg.Region == "" {
		logger.Error("COS 配置不完整", zap.String("bucket", cfg.BucketName), zap.String("region", cfg.Region))
		return nil, fmt.Errorf("COS 配置不完整，缺少关键字段 (SecretID, SecretKey, BucketName, AppID, Region)")
	}

	bucketURLStr := fmt.Sprintf("https://%s-%s.cos.%s.myqcloud.com", cfg.BucketName, cfg.AppID, cfg.Region)
	bucketURL, err := url.Parse(bucketURLStr)
	if err != nil {
		return nil, fmt.Errorf("解析 COS 存储桶 URL '%s' 失败: %w", bucketURLStr, err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})

	logger.Info("COS 客户端初始化成功",
		zap.String("存储桶名称", cfg.BucketName),
		zap.String("地域", cfg.Region),
	)
	return &cosStore{client: client, logger: logger}, nil
}

func (c *cosStore) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := ValidateObjectKey(key); err != nil {
		return err
	}
	opts := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType:   contentType,
			ContentLength: size,
		},
	}
	resp, err := c.client.Object.Put(ctx, key, reader, opts)
	if err != nil {
		c.logger.Error("COS 文件上传失败", zap.String("对象键", key), zap.Error(err))
		return fmt.Errorf("上传文件 '%s' 到 COS 失败: %w", key, err)
	}
	resp.Body.Close()
	return nil
}

func (c *cosStore) Open(ctx context.Context, key string) (*StoredObject, error) {
	if err := ValidateObjectKey(key); err != nil {
		return nil, err
	}
	resp, err := c.client.Object.Get(ctx, key, nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("从 COS 读取对象 '%s' 失败: %w", key, err)
	}
	return &StoredObject{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

func (c *cosStore) Delete(ctx context.Context, key string) error {
	if err := ValidateObjectKey(key); err != nil {
		return err
	}
	resp, err := c.client.Object.Delete(ctx, key)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil
		}
		c.logger.Error("COS 对象删除失败", zap.String("对象键", key), zap.Error(err))
		return fmt.Errorf("从 COS 删除对象 '%s' 失败: %w", key, err)
	}
	resp.Body.Close()
	return nil
}
