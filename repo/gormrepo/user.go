package gormrepo

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
)

// UserRepository 凭据存储
type UserRepository interface {
	// Create 插入新用户；email 或 username 冲突时返回 myErrors.ErrRepoDuplicate
	Create(ctx context.Context, user *entities.User) error

	// GetByID / GetByUsername 未找到时返回 myErrors.ErrRepoNotFound
	GetByID(ctx context.Context, id uint64) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// GetByIdentifier 按 email 或 username 查找，identifier 需已转小写
	GetByIdentifier(ctx context.Context, identifier string) (*entities.User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateProfile 更新 name/username/course/bio；username 冲突返回 ErrRepoDuplicate。
	// MySQL 在值未变化时受影响行数为 0，所以这里不以行数判断存在性，由调用方先确认用户存在。
	UpdateProfile(ctx context.Context, id uint64, name, username string, course, bio *string) error

	UpdateAvatar(ctx context.Context, id uint64, avatarURL string) error
	UpdateRole(ctx context.Context, id uint64, role enums.Role) error

	// Search 在 username 或 name 上做大小写不敏感的子串匹配，排除 viewerID 本人
	Search(ctx context.Context, query string, viewerID uint64, limit int) ([]*vo.UserSearchItem, error)
}

type userRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserRepository(db *gorm.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	if user.Role == "" {
		user.Role = enums.RoleMember
	}
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint64) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint64, name, username string, course, bio *string) error {
	// 使用 map 以便把 course/bio 显式更新为 NULL
	err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":     name,
			"username": username,
			"course":   course,
			"bio":      bio,
		}).Error
	if err != nil {
		err = translate(err)
		if !errors.Is(err, myErrors.ErrRepoDuplicate) {
			r.logger.Error("更新用户资料失败", zap.Uint64("userID", id), zap.Error(err))
		}
		return err
	}
	return nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uint64, avatarURL string) error {
	return r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Update("avatar_url", avatarURL).Error
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint64, role enums.Role) error {
	return r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Update("role", role).Error
}

func (r *userRepository) Search(ctx context.Context, query string, viewerID uint64, limit int) ([]*vo.UserSearchItem, error) {
	pattern := likePattern(strings.ToLower(query))
	items := make([]*vo.UserSearchItem, 0)
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select(`u.id, u.name, u.username, u.course, u.avatar_url,
			EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = ? AND f.following_id = u.id) AS is_following_by_me`, viewerID).
		Where(likeAny("u.username", "u.name"), pattern, pattern).
		Where("u.id <> ?", viewerID).
		Order("u.username ASC").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		r.logger.Error("搜索用户失败", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return items, nil
}
