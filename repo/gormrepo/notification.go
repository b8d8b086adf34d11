package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/vo"
)

// NotificationRepository 通知的写入、读取与过期清理
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	// ListForRecipient 最新在前，附带发送者信息
	ListForRecipient(ctx context.Context, recipientID uint64, limit int) ([]*vo.NotificationVO, error)
	// DeleteOlderThan 删除 before 之前创建的通知，返回删除数量
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error)
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID uint64, limit int) ([]*vo.NotificationVO, error) {
	items := make([]*vo.NotificationVO, 0)
	err := r.db.WithContext(ctx).
		Table("notifications AS n").
		Select(`n.id, n.type, n.post_id, n.is_read, n.created_at,
			s.id AS sender_id, s.name AS sender_name, s.username AS sender_username, s.avatar_url AS sender_avatar`).
		Joins("JOIN users s ON s.id = n.sender_id").
		Where("n.recipient_id = ?", recipientID).
		Order("n.created_at DESC, n.id DESC").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *notificationRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&entities.Notification{})
	return result.RowsAffected, result.Error
}
