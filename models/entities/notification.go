package entities

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/enums"
)

// Notification 点赞/评论/关注产生的派生事件记录
type Notification struct {
	ID          uint64                 `gorm:"primaryKey"`
	RecipientID uint64                 `gorm:"not null;index"`
	SenderID    uint64                 `gorm:"not null"`
	PostID      *uint64                `gorm:"index"`
	Type        enums.NotificationType `gorm:"type:varchar(16);not null"`
	IsRead      bool                   `gorm:"not null;default:false"`
	CreatedAt   time.Time              `gorm:"index"`

	Recipient *User `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Sender    *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Post      *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}
