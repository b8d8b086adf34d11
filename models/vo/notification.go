package vo

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/enums"
)

type NotificationVO struct {
	ID             uint64                 `json:"id"`
	Type           enums.NotificationType `json:"type"`
	PostID         *uint64                `json:"post_id"`
	IsRead         bool                   `json:"is_read"`
	CreatedAt      time.Time              `json:"created_at"`
	SenderID       uint64                 `json:"sender_id"`
	SenderName     string                 `json:"sender_name"`
	SenderUsername string                 `json:"sender_username"`
	SenderAvatar   *string                `json:"sender_avatar"`
}
