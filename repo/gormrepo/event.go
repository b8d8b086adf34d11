package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
)

// EventRepository 日历事件。区间查询为左闭右开 [from, to)，按 start_time 正序
type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	ListPublicBetween(ctx context.Context, from, to time.Time) ([]*entities.Event, error)
	ListOwnedBetween(ctx context.Context, userID uint64, from, to time.Time) ([]*entities.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entities.Event) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *eventRepository) between(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time ASC, id ASC")
}

func (r *eventRepository) ListPublicBetween(ctx context.Context, from, to time.Time) ([]*entities.Event, error) {
	events := make([]*entities.Event, 0)
	err := r.between(ctx, from, to).
		Where("category IN ?", enums.PublicEventCategories).
		Find(&events).Error
	return events, err
}

func (r *eventRepository) ListOwnedBetween(ctx context.Context, userID uint64, from, to time.Time) ([]*entities.Event, error) {
	events := make([]*entities.Event, 0)
	err := r.between(ctx, from, to).
		Where("category = ? AND user_id = ?", enums.EventUserPrivate, userID).
		Find(&events).Error
	return events, err
}
