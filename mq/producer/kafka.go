package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/config"
	"github.com/Xushengqwer/campus_service/models/events"
)

// KafkaProducer Kafka 消息生产者
type KafkaProducer struct {
	writer *kafka.Writer
	logger *core.ZapLogger
	topics config.Topics
}

// NewKafkaProducer 创建一个新的 Kafka 生产者实例
func NewKafkaProducer(cfg config.KafkaConfig, logger *core.ZapLogger) *KafkaProducer {
	batchTimeout := 50 * time.Millisecond
	if cfg.BatchTimeoutMs > 0 {
		batchTimeout = time.Duration(cfg.BatchTimeoutMs) * time.Millisecond
	}
	// 按接收者哈希分区，同一用户的通知保持顺序
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaProducer{
		writer: writer,
		logger: logger,
		topics: cfg.Topics,
	}
}

// SendEvent 序列化为 JSON 后写入指定主题，key 决定分区
func (p *KafkaProducer) SendEvent(ctx context.Context, topic, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("序列化事件失败", zap.Error(err), zap.String("topic", topic))
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: eventBytes,
	})
	if err != nil {
		p.logger.Error("写入 Kafka 消息失败", zap.Error(err), zap.String("topic", topic), zap.String("key", key))
		return err
	}
	p.logger.Debug("Kafka 消息已发送", zap.String("topic", topic), zap.String("key", key))
	return nil
}

// PublishNotification 按接收者分区，同一用户的通知保持顺序
func (p *KafkaProducer) PublishNotification(ctx context.Context, event events.NotificationEvent) error {
	return p.SendEvent(ctx, p.topics.Notifications, strconv.FormatUint(event.RecipientID, 10), event)
}

// Close 刷出缓冲区并关闭 writer
func (p *KafkaProducer) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("关闭 Kafka 生产者失败", zap.Error(err))
		return err
	}
	p.logger.Info("Kafka 生产者已关闭")
	return nil
}
