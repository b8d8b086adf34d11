package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
	"github.com/Xushengqwer/campus_service/security"
)

// PostService 处理帖子、点赞与评论的业务逻辑。
type PostService interface {
	// CreatePost 发布帖子。
	// - 文本和图片至少要有一个。
	// - 图片先写入文件存储，插入失败时尽力删除已写入的文件。
	CreatePost(ctx context.Context, userID uint64, content string, image *dto.FileUpload) (*vo.PostVO, error)

	// DeletePost 只能删除自己的帖子，没有命中任何行时返回 Forbidden。
	// 点赞、评论、通知随帖子级联删除。
	DeletePost(ctx context.Context, postID, actingUserID uint64) error

	// ToggleLike 已点赞则取消，否则点赞并通知作者。
	// 并发重复插入触发唯一约束时返回 Conflict，由客户端重试。
	ToggleLike(ctx context.Context, postID, userID uint64) (*vo.LikeResult, error)

	// ListComments 按时间正序
	ListComments(ctx context.Context, postID uint64) ([]*vo.CommentVO, error)

	// CreateComment 返回值中的作者信息取自令牌快照，不回查数据库。
	CreateComment(ctx context.Context, postID uint64, author *security.Identity, content string) (*vo.CommentVO, error)
}

type postService struct {
	posts    gormrepo.PostRepository
	notify   NotificationSink
	uploader *uploader
	logger   *zap.Logger
}

func NewPostService(posts gormrepo.PostRepository, store dependencies.FileStore, notify NotificationSink, logger *zap.Logger) PostService {
	return &postService{
		posts:    posts,
		notify:   notify,
		uploader: &uploader{store: store, logger: logger},
		logger:   logger,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uint64, content string, image *dto.FileUpload) (*vo.PostVO, error) {
	content = strings.TrimSpace(content)
	if content == "" && image == nil {
		return nil, myErrors.InvalidInput("post must have content or an image")
	}

	post := &entities.Post{UserID: userID}
	if content != "" {
		post.Content = &content
	}
	if image != nil {
		ref, err := s.uploader.save(ctx, constant.ObjectKeyPrefixPostImages, image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = &ref
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.uploader.discard(ctx, post.ImageURL)
		s.logger.Error("创建帖子失败", zap.Uint64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("创建帖子失败: %w", err)
	}
	return vo.NewPostVO(post), nil
}

func (s *postService) DeletePost(ctx context.Context, postID, actingUserID uint64) error {
	post, err := s.posts.DeleteOwnedPost(ctx, postID, actingUserID)
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNoRowsAffected) {
			return myErrors.Forbidden("post not found or access denied")
		}
		return fmt.Errorf("删除帖子失败: %w", err)
	}
	s.uploader.discard(ctx, post.ImageURL)
	s.logger.Info("帖子已删除", zap.Uint64("postID", postID), zap.Uint64("userID", actingUserID))
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, postID, userID uint64) (*vo.LikeResult, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.posts.LikeExists(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("查询点赞失败: %w", err)
	}
	if liked {
		if _, err := s.posts.DeleteLike(ctx, postID, userID); err != nil {
			return nil, fmt.Errorf("取消点赞失败: %w", err)
		}
		return &vo.LikeResult{Liked: false}, nil
	}

	if err := s.posts.CreateLike(ctx, postID, userID); err != nil {
		if errors.Is(err, myErrors.ErrRepoDuplicate) {
			return nil, myErrors.Conflict("like state changed concurrently, please retry")
		}
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("点赞失败: %w", err)
	}

	pid := post.ID
	s.notify.Notify(ctx, NotificationRequest{
		RecipientID: post.UserID,
		SenderID:    userID,
		PostID:      &pid,
		Type:        enums.NotificationLike,
	})
	return &vo.LikeResult{Liked: true}, nil
}

func (s *postService) ListComments(ctx context.Context, postID uint64) ([]*vo.CommentVO, error) {
	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	return comments, nil
}

func (s *postService) CreateComment(ctx context.Context, postID uint64, author *security.Identity, content string) (*vo.CommentVO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, myErrors.InvalidInput("comment content is required")
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &entities.Comment{UserID: author.ID, PostID: postID, Content: content}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}

	pid := post.ID
	s.notify.Notify(ctx, NotificationRequest{
		RecipientID: post.UserID,
		SenderID:    author.ID,
		PostID:      &pid,
		Type:        enums.NotificationComment,
	})

	return &vo.CommentVO{
		ID:             comment.ID,
		Content:        comment.Content,
		CreatedAt:      comment.CreatedAt,
		AuthorName:     author.Snapshot.Name,
		AuthorAvatar:   author.Snapshot.AvatarURL,
		AuthorUsername: author.Snapshot.Username,
	}, nil
}

func (s *postService) getPost(ctx context.Context, postID uint64) (*entities.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("post not found")
		}
		return nil, fmt.Errorf("查询帖子失败: %w", err)
	}
	return post, nil
}
