package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/events"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
)

// ErrMalformedEvent 消息无法解析或字段不合法，不会重试
var ErrMalformedEvent = errors.New("malformed notification event")

// NotificationHandler 把通知事件写入数据库
type NotificationHandler struct {
	repo   gormrepo.NotificationRepository
	logger *zap.Logger
}

func NewNotificationHandler(repo gormrepo.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{repo: repo, logger: logger}
}

func (h *NotificationHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.NotificationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("反序列化通知事件失败", zap.Error(err), zap.ByteString("value", msg.Value))
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if !event.Type.Valid() || event.RecipientID == 0 || event.SenderID == 0 {
		h.logger.Error("通知事件字段不合法", zap.String("eventID", event.EventID), zap.String("type", string(event.Type)))
		return ErrMalformedEvent
	}
	if event.RecipientID == event.SenderID {
		return nil
	}

	notification := &entities.Notification{
		RecipientID: event.RecipientID,
		SenderID:    event.SenderID,
		PostID:      event.PostID,
		Type:        event.Type,
	}
	if err := h.repo.Create(ctx, notification); err != nil {
		// 外键失败说明用户或帖子已被删除，这条通知直接丢弃
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			h.logger.Warn("通知引用的用户或帖子已不存在，丢弃", zap.String("eventID", event.EventID))
			return nil
		}
		return fmt.Errorf("写入通知失败: %w", err)
	}
	h.logger.Debug("通知已落库", zap.String("eventID", event.EventID), zap.Uint64("recipientID", event.RecipientID))
	return nil
}
