package vo

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/entities"
)

type PostVO struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Content   *string   `json:"content"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPostVO(p *entities.Post) *PostVO {
	return &PostVO{
		ID:        p.ID,
		UserID:    p.UserID,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
	}
}

// FeedItem 所有帖子流共用的行结构
type FeedItem struct {
	ID             uint64    `json:"id"`
	Content        *string   `json:"content"`
	ImageURL       *string   `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
	AuthorID       uint64    `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorAvatar   *string   `json:"author_avatar"`
	AuthorCourse   *string   `json:"author_course"`
	AuthorUsername string    `json:"author_username"`
	TotalLikes     int64     `json:"total_likes"`
	LikedByMe      bool      `json:"liked_by_me"`
	TotalComments  int64     `json:"total_comments"`
}

type LikeResult struct {
	Liked bool `json:"liked"`
}

// CommentVO 评论及作者信息
type CommentVO struct {
	ID             uint64    `json:"id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	AuthorName     string    `json:"author_name"`
	AuthorAvatar   *string   `json:"author_avatar"`
	AuthorUsername string    `json:"author_username"`
}
