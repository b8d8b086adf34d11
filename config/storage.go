package config

// StorageConfig 选择上传文件的存储后端。
// Driver 取值 local / cos / minio，为空时按 local 处理。
type StorageConfig struct {
	Driver      string             `mapstructure:"driver" json:"driver" yaml:"driver"`
	MaxUploadMB int                `mapstructure:"maxUploadMB" json:"maxUploadMB" yaml:"maxUploadMB"`
	Local       LocalStorageConfig `mapstructure:"local" json:"local" yaml:"local"`
	COS         COSConfig          `mapstructure:"cos" json:"cos" yaml:"cos"`
	MinIO       MinIOConfig        `mapstructure:"minio" json:"minio" yaml:"minio"`
}

type LocalStorageConfig struct {
	RootDir string `mapstructure:"rootDir" json:"rootDir" yaml:"rootDir"`
}

// COSConfig 腾讯云 COS 存储桶配置，SecretID/SecretKey 来自环境变量
type COSConfig struct {
	BucketName string `mapstructure:"bucketName" json:"bucketName" yaml:"bucketName"`
	AppID      string `mapstructure:"appID" json:"appID" yaml:"appID"`
	Region     string `mapstructure:"region" json:"region" yaml:"region"`
	SecretID   string `mapstructure:"-" json:"-" yaml:"-"`
	SecretKey  string `mapstructure:"-" json:"-" yaml:"-"`
}

// MinIOConfig 访问密钥来自环境变量
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	Bucket    string `mapstructure:"bucket" json:"bucket" yaml:"bucket"`
	UseSSL    bool   `mapstructure:"useSSL" json:"useSSL" yaml:"useSSL"`
	AccessKey string `mapstructure:"-" json:"-" yaml:"-"`
	SecretKey string `mapstructure:"-" json:"-" yaml:"-"`
}
