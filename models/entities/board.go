package entities

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/enums"
)

// NoticeBoard 社区公告板，ID 为 UUID 字符串
type NoticeBoard struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	Slug        string `gorm:"type:varchar(100);not null;uniqueIndex:idx_notice_boards_slug"`
	CreatedAt   time.Time
}

// BoardMember 公告板成员关系，与点赞一样按有序对切换
type BoardMember struct {
	UserID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	BoardID   string `gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time

	User  *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Board *NoticeBoard `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
}

// Notice 公告板内的帖子，附件一旦设置不可修改
type Notice struct {
	ID        string          `gorm:"type:char(36);primaryKey"`
	BoardID   string          `gorm:"type:char(36);not null;index"`
	UserID    uint64          `gorm:"not null;index"`
	Subject   string          `gorm:"type:varchar(100);not null"`
	Content   string          `gorm:"type:text;not null"`
	FileURL   *string         `gorm:"type:varchar(512)"`
	FileType  *enums.FileType `gorm:"type:varchar(16)"`
	CreatedAt time.Time       `gorm:"index"`

	Board  *NoticeBoard `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
	Author *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
