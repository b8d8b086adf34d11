package vo

import "github.com/Xushengqwer/campus_service/models/entities"

// UserProfile 用户公开资料投影，注册、登录、资料修改都返回这个结构
type UserProfile struct {
	ID        uint64  `json:"id" example:"1"`
	Name      string  `json:"name" example:"Ana"`
	Email     string  `json:"email" example:"ana@x.com"`
	Username  string  `json:"username" example:"ana"`
	Course    *string `json:"course"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

// NewUserProfile 从实体构造公开资料，不含密码哈希与角色
func NewUserProfile(u *entities.User) *UserProfile {
	return &UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Username:  u.Username,
		Course:    u.Course,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
	}
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

// ProfileView 个人主页，附带关注统计与当前查看者是否已关注
type ProfileView struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Username        string  `json:"username"`
	Course          *string `json:"course"`
	Bio             *string `json:"bio"`
	AvatarURL       *string `json:"avatar_url"`
	FollowersCount  int64   `json:"followers_count"`
	FollowingCount  int64   `json:"following_count"`
	IsFollowingByMe bool    `json:"is_following_by_me"`
}

type UserSearchItem struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Username        string  `json:"username"`
	Course          *string `json:"course"`
	AvatarURL       *string `json:"avatar_url"`
	IsFollowingByMe bool    `json:"is_following_by_me"`
}

type FollowResult struct {
	Following bool `json:"following"`
}
