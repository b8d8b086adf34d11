package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
)

// FollowRepository 社交关系图存储
type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID uint64) (bool, error)

	// Create 插入关注边；已存在时返回 myErrors.ErrRepoDuplicate
	Create(ctx context.Context, followerID, followingID uint64) error

	// Delete 删除关注边；没有可删除的边时返回 myErrors.ErrRepoNoRowsAffected
	Delete(ctx context.Context, followerID, followingID uint64) error

	// ProfileByUsername / ProfileByID 返回带关注统计的个人主页，未找到返回 ErrRepoNotFound
	ProfileByUsername(ctx context.Context, username string, viewerID uint64) (*vo.ProfileView, error)
	ProfileByID(ctx context.Context, id uint64, viewerID uint64) (*vo.ProfileView, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID uint64) error {
	edge := &entities.Follow{FollowerID: followerID, FollowingID: followingID}
	return translate(r.db.WithContext(ctx).Create(edge).Error)
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint64) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&entities.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return myErrors.ErrRepoNoRowsAffected
	}
	return nil
}

const profileSelect = `u.id, u.name, u.username, u.course, u.bio, u.avatar_url,
	(SELECT COUNT(*) FROM follows f1 WHERE f1.following_id = u.id) AS followers_count,
	(SELECT COUNT(*) FROM follows f2 WHERE f2.follower_id = u.id) AS following_count,
	EXISTS (SELECT 1 FROM follows f3 WHERE f3.follower_id = ? AND f3.following_id = u.id) AS is_following_by_me`

func (r *followRepository) ProfileByUsername(ctx context.Context, username string, viewerID uint64) (*vo.ProfileView, error) {
	return r.profile(ctx, "u.username = ?", username, viewerID)
}

func (r *followRepository) ProfileByID(ctx context.Context, id uint64, viewerID uint64) (*vo.ProfileView, error) {
	return r.profile(ctx, "u.id = ?", id, viewerID)
}

func (r *followRepository) profile(ctx context.Context, cond string, arg interface{}, viewerID uint64) (*vo.ProfileView, error) {
	var view vo.ProfileView
	result := r.db.WithContext(ctx).
		Table("users AS u").
		Select(profileSelect, viewerID).
		Where(cond, arg).
		Limit(1).
		Scan(&view)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, myErrors.ErrRepoNotFound
	}
	return &view, nil
}
