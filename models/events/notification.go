package events

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/enums"
)

// NotificationEvent 通知事件，经 Kafka 投递后由消费者落库
type NotificationEvent struct {
	EventID     string                 `json:"event_id"`
	Timestamp   time.Time              `json:"timestamp"`
	RecipientID uint64                 `json:"recipient_id"`
	SenderID    uint64                 `json:"sender_id"`
	PostID      *uint64                `json:"post_id,omitempty"`
	Type        enums.NotificationType `json:"type"`
}
