package entities

import "time"

// Post 用户动态，Content 与 ImageURL 至少有一个
type Post struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;index"`
	Content   *string   `gorm:"type:text"`
	ImageURL  *string   `gorm:"type:varchar(512)"`
	CreatedAt time.Time `gorm:"index"`

	Author *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// PostLike 点赞记录，存在即表示已点赞
type PostLike struct {
	UserID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	PostID    uint64 `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// Comment 评论，只追加
type Comment struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;index"`
	PostID    uint64 `gorm:"not null;index"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}
