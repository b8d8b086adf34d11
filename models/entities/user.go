package entities

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/enums"
)

// User 用户凭据与公开资料
// - Email、Username 写入前统一转成小写，唯一索引即可保证大小写不敏感的唯一性
// - 用户不会被物理删除
type User struct {
	ID           uint64     `gorm:"primaryKey"`
	Name         string     `gorm:"type:varchar(100);not null"`
	Username     string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_users_username"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Course       *string    `gorm:"type:varchar(100)"`
	Bio          *string    `gorm:"type:text"`
	AvatarURL    *string    `gorm:"type:varchar(512)"`
	Role         enums.Role `gorm:"type:varchar(16);not null;default:member"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
