package config

// SourceConfig 代表一个数据库源（主库或从库）的配置
type SourceConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
	// 独立的连接池设置，允许覆盖共享设置
	MaxIdleConns    *int `mapstructure:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty"`
	MaxOpenConns    *int `mapstructure:"max_open_conns,omitempty" yaml:"max_open_conns,omitempty"`
	ConnMaxLifetime *int `mapstructure:"conn_max_lifetime,omitempty" yaml:"conn_max_lifetime,omitempty"` // 秒
}

// DatabaseConfig 包含主库和从库的配置。
// Driver 取值 mysql / postgres / sqlite，为空时按 mysql 处理。
type DatabaseConfig struct {
	Driver string         `mapstructure:"driver" yaml:"driver"`
	Write  SourceConfig   `mapstructure:"write" yaml:"write"`
	Read   []SourceConfig `mapstructure:"read" yaml:"read"` // 为空表示不启用读写分离

	SharedMaxIdleConns    int `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	SharedMaxOpenConns    int `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	SharedConnMaxLifetime int `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"` // 秒
}
