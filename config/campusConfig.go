package config

import "github.com/Xushengqwer/go-common/config"

// CampusConfig 是服务的全部 YAML 配置，由 core.LoadConfig 加载。
// 密钥类配置不放在这里，见 SecretsConfig。
type CampusConfig struct {
	ZapConfig          config.ZapConfig     `mapstructure:"zapConfig" json:"zapConfig" yaml:"zapConfig"`
	GormLogConfig      config.GormLogConfig `mapstructure:"gormLogConfig" json:"gormLogConfig" yaml:"gormLogConfig"`
	ServerConfig       config.ServerConfig  `mapstructure:"serverConfig" json:"serverConfig" yaml:"serverConfig"`
	TracerConfig       config.TracerConfig  `mapstructure:"tracerConfig" json:"tracerConfig" yaml:"tracerConfig"`
	DatabaseConfig     DatabaseConfig       `mapstructure:"databaseConfig" json:"databaseConfig" yaml:"databaseConfig"`
	KafkaConfig        KafkaConfig          `mapstructure:"kafkaConfig" json:"kafkaConfig" yaml:"kafkaConfig"`
	StorageConfig      StorageConfig        `mapstructure:"storageConfig" json:"storageConfig" yaml:"storageConfig"`
	AuthConfig         AuthConfig           `mapstructure:"authConfig" json:"authConfig" yaml:"authConfig"`
	NotificationConfig NotificationConfig   `mapstructure:"notificationConfig" json:"notificationConfig" yaml:"notificationConfig"`
	CORSConfig         CORSConfig           `mapstructure:"corsConfig" json:"corsConfig" yaml:"corsConfig"`
}

// AuthConfig 控制令牌签发。
type AuthConfig struct {
	// TokenTTLHours 令牌有效期（小时），0 表示使用默认的 90 天
	TokenTTLHours int    `mapstructure:"tokenTTLHours" json:"tokenTTLHours" yaml:"tokenTTLHours"`
	Issuer        string `mapstructure:"issuer" json:"issuer" yaml:"issuer"`
}

// NotificationConfig 控制通知的读取入口和保留策略。
type NotificationConfig struct {
	// ReadEnabled 为 false 时不注册 GET /notifications
	ReadEnabled bool `mapstructure:"readEnabled" json:"readEnabled" yaml:"readEnabled"`
	// RetentionDays 通知保留天数，0 表示不清理
	RetentionDays int `mapstructure:"retentionDays" json:"retentionDays" yaml:"retentionDays"`
	// PurgeCron 清理任务的 cron 表达式，为空时使用 constant.DefaultNotificationPurgeCron
	PurgeCron string `mapstructure:"purgeCron" json:"purgeCron" yaml:"purgeCron"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allowOrigins" json:"allowOrigins" yaml:"allowOrigins"`
	MaxAgeSecond int      `mapstructure:"maxAgeSecond" json:"maxAgeSecond" yaml:"maxAgeSecond"`
}
