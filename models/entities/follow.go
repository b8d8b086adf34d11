package entities

import "time"

// Follow 有向关注边：FollowerID 关注了 FollowingID
// 复合主键保证同一有序对最多一条，check 约束禁止自环
type Follow struct {
	FollowerID  uint64 `gorm:"primaryKey;autoIncrement:false;check:chk_follows_no_self,follower_id <> following_id"`
	FollowingID uint64 `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt   time.Time

	Follower  *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following *User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}
