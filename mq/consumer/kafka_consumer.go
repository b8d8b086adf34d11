package consumer

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/campus_service/config"
)

const (
	defaultHandlerTimeout = 10 * time.Second
	defaultMaxAttempts    = 3
	retryBackoff          = 500 * time.Millisecond
)

// MessageHandler 处理单条 Kafka 消息。
// 返回 ErrMalformedEvent（或包装了它的错误）表示消息本身有问题，不再重试。
type MessageHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// Consumer 单主题消费循环。消息处理失败时有限次重试，之后记录日志并跳过，
// 一条坏消息不会卡住整个分区。
type Consumer struct {
	reader         *kafka.Reader
	handler        MessageHandler
	logger         *core.ZapLogger
	topic          string
	handlerTimeout time.Duration
	maxAttempts    int
	backoff        time.Duration
}

func NewConsumer(cfg *appConfig.KafkaConfig, groupID string, topicName string, handler MessageHandler, logger *core.ZapLogger) (*Consumer, error) {
	switch {
	case topicName == "":
		return nil, errors.New("kafka topic 名称不能为空")
	case groupID == "":
		return nil, errors.New("kafka consumer group 不能为空")
	case len(cfg.Brokers) == 0:
		return nil, errors.New("kafka brokers 配置不能为空")
	}

	handlerTimeout := defaultHandlerTimeout
	if cfg.HandlerTimeoutSeconds > 0 {
		handlerTimeout = time.Duration(cfg.HandlerTimeoutSeconds) * time.Second
	}
	maxAttempts := defaultMaxAttempts
	if cfg.MaxHandleAttempts > 0 {
		maxAttempts = cfg.MaxHandleAttempts
	}

	logger.Info("初始化 Kafka 消费者",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", topicName),
		zap.String("group_id", groupID),
		zap.Int("maxAttempts", maxAttempts))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topicName,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1e6,
		CommitInterval: time.Second,
		MaxWait:        time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &Consumer{
		reader:         reader,
		handler:        handler,
		logger:         logger,
		topic:          topicName,
		handlerTimeout: handlerTimeout,
		maxAttempts:    maxAttempts,
		backoff:        retryBackoff,
	}, nil
}

// Start 阻塞运行，ctx 取消或 Reader 关闭后返回
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Kafka 消费者已启动", zap.String("topic", c.topic))
	defer c.logger.Info("Kafka 消费者已停止", zap.String("topic", c.topic))

	for ctx.Err() == nil {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return
			}
			c.logger.Error("读取 Kafka 消息失败", zap.String("topic", c.topic), zap.Error(err))
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}
		c.process(ctx, msg)
	}
}

// process 处理一条消息，必要时重试。返回后消息即视为已消费。
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	fields := []zap.Field{
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	}
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		handleCtx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
		err := c.handler.Handle(handleCtx, msg)
		cancel()
		if err == nil {
			return
		}
		if errors.Is(err, ErrMalformedEvent) {
			c.logger.Error("消息格式错误，已跳过", append(fields, zap.Error(err))...)
			return
		}
		c.logger.Warn("处理 Kafka 消息失败", append(fields, zap.Int("attempt", attempt), zap.Error(err))...)
		if attempt < c.maxAttempts && !sleepCtx(ctx, time.Duration(attempt)*c.backoff) {
			return
		}
	}
	c.logger.Error("重试次数用尽，消息已丢弃", fields...)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// Close 关闭 Kafka Reader，使阻塞中的 ReadMessage 返回
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("关闭 Kafka Reader 失败", zap.Error(err), zap.String("topic", c.topic))
		return err
	}
	c.logger.Info("Kafka 消费者已关闭", zap.String("topic", c.topic))
	return nil
}
