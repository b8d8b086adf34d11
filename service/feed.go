package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
)

// FeedService 组合各类帖子流，viewerID 为 0 表示匿名
type FeedService interface {
	ForYou(ctx context.Context, viewerID uint64) ([]*vo.FeedItem, error)
	Following(ctx context.Context, viewerID uint64) ([]*vo.FeedItem, error)
	ByUsername(ctx context.Context, username string, viewerID uint64) ([]*vo.FeedItem, error)
	ByUserID(ctx context.Context, authorID, viewerID uint64) ([]*vo.FeedItem, error)
}

type feedService struct {
	feeds  gormrepo.FeedRepository
	users  gormrepo.UserRepository
	logger *zap.Logger
}

func NewFeedService(feeds gormrepo.FeedRepository, users gormrepo.UserRepository, logger *zap.Logger) FeedService {
	return &feedService{feeds: feeds, users: users, logger: logger}
}

func (s *feedService) ForYou(ctx context.Context, viewerID uint64) ([]*vo.FeedItem, error) {
	items, err := s.feeds.ForYou(ctx, viewerID, constant.ForYouFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("查询推荐帖子流失败: %w", err)
	}
	return items, nil
}

func (s *feedService) Following(ctx context.Context, viewerID uint64) ([]*vo.FeedItem, error) {
	items, err := s.feeds.Following(ctx, viewerID, constant.FollowingFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("查询关注帖子流失败: %w", err)
	}
	return items, nil
}

func (s *feedService) ByUsername(ctx context.Context, username string, viewerID uint64) ([]*vo.FeedItem, error) {
	author, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return s.byAuthor(ctx, author.ID, viewerID)
}

// ByUserID 作者不存在时返回空列表
func (s *feedService) ByUserID(ctx context.Context, authorID, viewerID uint64) ([]*vo.FeedItem, error) {
	return s.byAuthor(ctx, authorID, viewerID)
}

func (s *feedService) byAuthor(ctx context.Context, authorID, viewerID uint64) ([]*vo.FeedItem, error) {
	items, err := s.feeds.ByAuthor(ctx, authorID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("查询用户帖子流失败: %w", err)
	}
	return items, nil
}
