package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// SecretsConfig 只从环境变量读取，避免密钥进入 YAML 和启动日志。
type SecretsConfig struct {
	JWTSecret      string `env:"CAMPUS_JWT_SECRET" env-required:"true"`
	InternalAPIKey string `env:"CAMPUS_INTERNAL_API_KEY"`
	COSSecretID    string `env:"CAMPUS_COS_SECRET_ID"`
	COSSecretKey   string `env:"CAMPUS_COS_SECRET_KEY"`
	MinIOAccessKey string `env:"CAMPUS_MINIO_ACCESS_KEY" env-default:"minioadmin"`
	MinIOSecretKey string `env:"CAMPUS_MINIO_SECRET_KEY" env-default:"minioadmin"`
}

// LoadSecrets 先尝试加载 envFile（不存在则跳过，且不覆盖已有环境变量），再读取环境变量。
func LoadSecrets(envFile string) (*SecretsConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("godotenv.Load: %w", err)
		}
	}

	secrets := &SecretsConfig{}
	if err := cleanenv.ReadEnv(secrets); err != nil {
		return nil, fmt.Errorf("cleanenv.ReadEnv: %w", err)
	}
	return secrets, nil
}

// Apply 把存储相关的密钥填入 YAML 配置。
func (s *SecretsConfig) Apply(cfg *CampusConfig) {
	cfg.StorageConfig.COS.SecretID = s.COSSecretID
	cfg.StorageConfig.COS.SecretKey = s.COSSecretKey
	cfg.StorageConfig.MinIO.AccessKey = s.MinIOAccessKey
	cfg.StorageConfig.MinIO.SecretKey = s.MinIOSecretKey
}
