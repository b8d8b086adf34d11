package vo

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
)

type EventVO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	StartTime   time.Time           `json:"start_time"`
	EndTime     time.Time           `json:"end_time"`
	Category    enums.EventCategory `json:"category"`
	UserID      *uint64             `json:"user_id"`
}

func NewEventVO(e *entities.Event) *EventVO {
	return &EventVO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Category:    e.Category,
		UserID:      e.UserID,
	}
}

func NewEventVOs(events []*entities.Event) []*EventVO {
	out := make([]*EventVO, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventVO(e))
	}
	return out
}
