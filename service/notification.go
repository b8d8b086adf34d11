package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/models/events"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
)

// NotificationRequest 一条待写入的通知
type NotificationRequest struct {
	RecipientID uint64
	SenderID    uint64
	PostID      *uint64
	Type        enums.NotificationType
}

// NotificationSink 尽力而为的通知写入通道。
// 失败只记录日志：不返回、不重试，也不影响触发它的主操作。
type NotificationSink interface {
	Notify(ctx context.Context, req NotificationRequest)

	// Drain 等待已发起的异步投递结束，关闭 Kafka 生产者之前调用。
	// ctx 先结束时返回 ctx.Err()，未完成的投递继续在后台运行。
	Drain(ctx context.Context) error
}

// NotificationPublisher 把通知事件发往消息队列，由 mq/producer 实现
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, event events.NotificationEvent) error
}

const publishTimeout = 5 * time.Second

type notificationSink struct {
	repo      gormrepo.NotificationRepository
	publisher NotificationPublisher
	logger    *zap.Logger
	inflight  sync.WaitGroup
}

// NewNotificationSink publisher 为 nil 时直接写库，否则异步投递到 Kafka 由消费者落库
func NewNotificationSink(repo gormrepo.NotificationRepository, publisher NotificationPublisher, logger *zap.Logger) NotificationSink {
	return &notificationSink{repo: repo, publisher: publisher, logger: logger}
}

func (s *notificationSink) Notify(ctx context.Context, req NotificationRequest) {
	if req.RecipientID == 0 || req.RecipientID == req.SenderID {
		return
	}

	if s.publisher != nil {
		event := events.NotificationEvent{
			EventID:     uuid.NewString(),
			Timestamp:   time.Now().UTC(),
			RecipientID: req.RecipientID,
			SenderID:    req.SenderID,
			PostID:      req.PostID,
			Type:        req.Type,
		}
		// 与请求生命周期解耦，请求结束不应取消投递
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := s.publisher.PublishNotification(pubCtx, event); err != nil {
				s.logger.Warn("投递通知事件失败，已忽略",
					zap.String("eventID", event.EventID),
					zap.String("type", string(req.Type)),
					zap.Error(err))
			}
		}()
		return
	}

	n := &entities.Notification{
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		PostID:      req.PostID,
		Type:        req.Type,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("写入通知失败，已忽略",
			zap.Uint64("recipientID", req.RecipientID),
			zap.String("type", string(req.Type)),
			zap.Error(err))
	}
}

func (s *notificationSink) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NotificationService 通知的读取入口，默认不对外注册
type NotificationService interface {
	ListForUser(ctx context.Context, userID uint64) ([]*vo.NotificationVO, error)
}

type notificationService struct {
	repo gormrepo.NotificationRepository
}

func NewNotificationService(repo gormrepo.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListForUser(ctx context.Context, userID uint64) ([]*vo.NotificationVO, error) {
	items, err := s.repo.ListForRecipient(ctx, userID, constant.NotificationListMax)
	if err != nil {
		return nil, fmt.Errorf("查询通知失败: %w", err)
	}
	return items, nil
}
