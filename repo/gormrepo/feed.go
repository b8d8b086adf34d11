package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Xushengqwer/campus_service/models/vo"
)

// FeedRepository 只读的帖子流查询。
// 所有帖子流返回同一行结构，按 created_at DESC, id DESC 排序。
type FeedRepository interface {
	// ForYou 全部帖子，limit <= 0 表示不限制
	ForYou(ctx context.Context, viewerID uint64, limit int) ([]*vo.FeedItem, error)
	// Following viewerID 关注的作者的帖子
	Following(ctx context.Context, viewerID uint64, limit int) ([]*vo.FeedItem, error)
	// ByAuthor 单个作者的全部帖子
	ByAuthor(ctx context.Context, authorID, viewerID uint64) ([]*vo.FeedItem, error)
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

const feedSelect = `p.id, p.content, p.image_url, p.created_at,
	u.id AS author_id, u.name AS author_name, u.avatar_url AS author_avatar,
	u.course AS author_course, u.username AS author_username,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS total_likes,
	EXISTS (SELECT 1 FROM post_likes ml WHERE ml.post_id = p.id AND ml.user_id = ?) AS liked_by_me,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS total_comments`

// base 构造带注解的查询，viewerID 为 0 时 liked_by_me 恒为 false
func (r *feedRepository) base(ctx context.Context, viewerID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts AS p").
		Select(feedSelect, viewerID).
		Joins("JOIN users u ON u.id = p.user_id").
		Order("p.created_at DESC, p.id DESC")
}

func scanFeed(query *gorm.DB, limit int) ([]*vo.FeedItem, error) {
	if limit > 0 {
		query = query.Limit(limit)
	}
	items := make([]*vo.FeedItem, 0)
	if err := query.Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *feedRepository) ForYou(ctx context.Context, viewerID uint64, limit int) ([]*vo.FeedItem, error) {
	return scanFeed(r.base(ctx, viewerID), limit)
}

func (r *feedRepository) Following(ctx context.Context, viewerID uint64, limit int) ([]*vo.FeedItem, error) {
	query := r.base(ctx, viewerID).
		Joins("JOIN follows f ON f.following_id = p.user_id AND f.follower_id = ?", viewerID)
	return scanFeed(query, limit)
}

func (r *feedRepository) ByAuthor(ctx context.Context, authorID, viewerID uint64) ([]*vo.FeedItem, error) {
	return scanFeed(r.base(ctx, viewerID).Where("p.user_id = ?", authorID), 0)
}
