package entities

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/enums"
)

// Event 日历事件。ACADEMIC / CAMPUS 没有所有者，USER_PRIVATE 属于 UserID
type Event struct {
	ID          uint64              `gorm:"primaryKey"`
	Title       string              `gorm:"type:varchar(255);not null"`
	Description *string             `gorm:"type:text"`
	StartTime   time.Time           `gorm:"not null;index"`
	EndTime     time.Time           `gorm:"not null"`
	Category    enums.EventCategory `gorm:"type:varchar(16);not null;index"`
	UserID      *uint64             `gorm:"index"`
	CreatedAt   time.Time

	Owner *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
