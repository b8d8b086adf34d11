package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
)

// SocialGraphService 关注关系、资料页与用户搜索
type SocialGraphService interface {
	Follow(ctx context.Context, followerID uint64, targetUsername string) (*vo.FollowResult, error)
	Unfollow(ctx context.Context, followerID uint64, targetUsername string) (*vo.FollowResult, error)

	// ProfileByUsername viewerID 为 0 表示匿名访问
	ProfileByUsername(ctx context.Context, username string, viewerID uint64) (*vo.ProfileView, error)
	ProfileByID(ctx context.Context, id, viewerID uint64) (*vo.ProfileView, error)

	// SearchUsers 空查询返回空列表
	SearchUsers(ctx context.Context, query string, viewerID uint64) ([]*vo.UserSearchItem, error)
}

type socialGraphService struct {
	users   gormrepo.UserRepository
	follows gormrepo.FollowRepository
	notify  NotificationSink
	logger  *zap.Logger
}

func NewSocialGraphService(users gormrepo.UserRepository, follows gormrepo.FollowRepository, notify NotificationSink, logger *zap.Logger) SocialGraphService {
	return &socialGraphService{users: users, follows: follows, notify: notify, logger: logger}
}

func (s *socialGraphService) resolve(ctx context.Context, username string) (*entities.User, error) {
	target, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return target, nil
}

func (s *socialGraphService) Follow(ctx context.Context, followerID uint64, targetUsername string) (*vo.FollowResult, error) {
	target, err := s.resolve(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, myErrors.InvalidOperation("you cannot follow yourself")
	}

	exists, err := s.follows.Exists(ctx, followerID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("查询关注关系失败: %w", err)
	}
	if exists {
		return nil, myErrors.AlreadyExists("already following this user")
	}
	if err := s.follows.Create(ctx, followerID, target.ID); err != nil {
		if errors.Is(err, myErrors.ErrRepoDuplicate) {
			return nil, myErrors.AlreadyExists("already following this user")
		}
		return nil, fmt.Errorf("创建关注关系失败: %w", err)
	}

	s.notify.Notify(ctx, NotificationRequest{
		RecipientID: target.ID,
		SenderID:    followerID,
		Type:        enums.NotificationFollow,
	})
	return &vo.FollowResult{Following: true}, nil
}

func (s *socialGraphService) Unfollow(ctx context.Context, followerID uint64, targetUsername string) (*vo.FollowResult, error) {
	target, err := s.resolve(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if err := s.follows.Delete(ctx, followerID, target.ID); err != nil {
		if errors.Is(err, myErrors.ErrRepoNoRowsAffected) {
			return nil, myErrors.InvalidOperation("you are not following this user")
		}
		return nil, fmt.Errorf("删除关注关系失败: %w", err)
	}
	return &vo.FollowResult{Following: false}, nil
}

func (s *socialGraphService) ProfileByUsername(ctx context.Context, username string, viewerID uint64) (*vo.ProfileView, error) {
	profile, err := s.follows.ProfileByUsername(ctx, strings.ToLower(strings.TrimSpace(username)), viewerID)
	return profileResult(profile, err)
}

func (s *socialGraphService) ProfileByID(ctx context.Context, id, viewerID uint64) (*vo.ProfileView, error) {
	profile, err := s.follows.ProfileByID(ctx, id, viewerID)
	return profileResult(profile, err)
}

func profileResult(profile *vo.ProfileView, err error) (*vo.ProfileView, error) {
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("查询资料失败: %w", err)
	}
	return profile, nil
}

func (s *socialGraphService) SearchUsers(ctx context.Context, query string, viewerID uint64) ([]*vo.UserSearchItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*vo.UserSearchItem{}, nil
	}
	items, err := s.users.Search(ctx, query, viewerID, constant.SearchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("搜索用户失败: %w", err)
	}
	return items, nil
}
