package gormrepo

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
)

// PostRepository 帖子、点赞、评论的存储
type PostRepository interface {
	CreatePost(ctx context.Context, post *entities.Post) error

	// GetPostByID 未找到返回 myErrors.ErrRepoNotFound
	GetPostByID(ctx context.Context, id uint64) (*entities.Post, error)

	// DeleteOwnedPost 只删除属于 userID 的帖子并返回被删除的行；
	// 未命中（不存在或不属于该用户）返回 myErrors.ErrRepoNoRowsAffected。
	// 点赞、评论、通知由外键级联删除。
	DeleteOwnedPost(ctx context.Context, id, userID uint64) (*entities.Post, error)

	LikeExists(ctx context.Context, postID, userID uint64) (bool, error)
	// CreateLike 重复点赞返回 myErrors.ErrRepoDuplicate
	CreateLike(ctx context.Context, postID, userID uint64) error
	// DeleteLike 返回是否确实删除了一行
	DeleteLike(ctx context.Context, postID, userID uint64) (bool, error)

	CreateComment(ctx context.Context, comment *entities.Comment) error
	// ListComments 按时间正序
	ListComments(ctx context.Context, postID uint64) ([]*vo.CommentVO, error)
}

type postRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPostRepository(db *gorm.DB, logger *zap.Logger) PostRepository {
	return &postRepository{db: db, logger: logger}
}

func (r *postRepository) CreatePost(ctx context.Context, post *entities.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

func (r *postRepository) GetPostByID(ctx context.Context, id uint64) (*entities.Post, error) {
	var post entities.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) DeleteOwnedPost(ctx context.Context, id, userID uint64) (*entities.Post, error) {
	// 先读出行以便调用方清理图片文件；删除本身仍以 user_id 作为条件
	var post entities.Post
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&post).Error
	if err != nil {
		if errors.Is(translate(err), myErrors.ErrRepoNotFound) {
			return nil, myErrors.ErrRepoNoRowsAffected
		}
		return nil, err
	}

	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Post{})
	if result.Error != nil {
		r.logger.Error("删除帖子失败", zap.Uint64("postID", id), zap.Error(result.Error))
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, myErrors.ErrRepoNoRowsAffected
	}
	return &post, nil
}

func (r *postRepository) LikeExists(ctx context.Context, postID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepository) CreateLike(ctx context.Context, postID, userID uint64) error {
	return translate(r.db.WithContext(ctx).Create(&entities.PostLike{PostID: postID, UserID: userID}).Error)
}

func (r *postRepository) DeleteLike(ctx context.Context, postID, userID uint64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&entities.PostLike{})
	return result.RowsAffected > 0, result.Error
}

func (r *postRepository) CreateComment(ctx context.Context, comment *entities.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error)
}

func (r *postRepository) ListComments(ctx context.Context, postID uint64) ([]*vo.CommentVO, error) {
	comments := make([]*vo.CommentVO, 0)
	err := r.db.WithContext(ctx).
		Table("comments AS c").
		Select("c.id, c.content, c.created_at, u.name AS author_name, u.avatar_url AS author_avatar, u.username AS author_username").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.post_id = ?", postID).
		Order("c.created_at ASC, c.id ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
