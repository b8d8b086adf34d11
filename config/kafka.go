package config

// KafkaConfig 通知事件的消息队列配置。Brokers 为空时通知直接写库。
type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers" json:"brokers" yaml:"brokers"`
	Topics          Topics   `mapstructure:"topics" json:"topics" yaml:"topics"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id" json:"consumer_group_id" yaml:"consumer_group_id"`

	// 生产者批量发送的等待时间，默认 50ms
	BatchTimeoutMs int `mapstructure:"batchTimeoutMs" json:"batchTimeoutMs" yaml:"batchTimeoutMs"`
	// 单条消息的处理超时与最大尝试次数，默认 10s / 3 次
	HandlerTimeoutSeconds int `mapstructure:"handlerTimeoutSeconds" json:"handlerTimeoutSeconds" yaml:"handlerTimeoutSeconds"`
	MaxHandleAttempts     int `mapstructure:"maxHandleAttempts" json:"maxHandleAttempts" yaml:"maxHandleAttempts"`
}

type Topics struct {
	Notifications string `mapstructure:"notifications" yaml:"notifications"` // 点赞/评论/关注产生的通知事件
}
