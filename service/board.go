package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
)

// BoardService 公告板、成员关系与公告
type BoardService interface {
	// CreateBoard 权限由路由层的 admin 中间件保证
	CreateBoard(ctx context.Context, req *dto.CreateBoardRequest) (*vo.BoardVO, error)
	ListBoards(ctx context.Context, viewerID uint64) ([]*vo.BoardListItem, error)
	ToggleMembership(ctx context.Context, boardID string, userID uint64) (*vo.JoinResult, error)
	SearchBoards(ctx context.Context, query string, viewerID uint64) ([]*vo.BoardListItem, error)

	// CreateNotice 不检查发布者是否为该板成员
	CreateNotice(ctx context.Context, boardID string, userID uint64, subject, content string, file *dto.FileUpload) (*vo.NoticeVO, error)
	// EditNotice 只改标题与正文，附件不可变
	EditNotice(ctx context.Context, noticeID string, userID uint64, subject, content string) (*vo.NoticeVO, error)
	DeleteNotice(ctx context.Context, noticeID string, userID uint64) error
	// NoticeFeed 用户所加入公告板的公告，最新在前
	NoticeFeed(ctx context.Context, userID uint64) ([]*vo.NoticeFeedItem, error)
}

type boardService struct {
	boards   gormrepo.BoardRepository
	notices  gormrepo.NoticeRepository
	uploader *uploader
	logger   *zap.Logger
}

func NewBoardService(boards gormrepo.BoardRepository, notices gormrepo.NoticeRepository, store dependencies.FileStore, logger *zap.Logger) BoardService {
	return &boardService{
		boards:   boards,
		notices:  notices,
		uploader: &uploader{store: store, logger: logger},
		logger:   logger,
	}
}

func (s *boardService) CreateBoard(ctx context.Context, req *dto.CreateBoardRequest) (*vo.BoardVO, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if name == "" || slug == "" {
		return nil, myErrors.InvalidInput("name and slug are required")
	}

	board := &entities.NoticeBoard{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Slug:        slug,
	}
	if err := s.boards.CreateBoard(ctx, board); err != nil {
		if errors.Is(err, myErrors.ErrRepoDuplicate) {
			return nil, myErrors.AlreadyExists("slug already exists")
		}
		return nil, fmt.Errorf("创建公告板失败: %w", err)
	}
	s.logger.Info("公告板已创建", zap.String("boardID", board.ID), zap.String("slug", slug))
	return vo.NewBoardVO(board), nil
}

func (s *boardService) ListBoards(ctx context.Context, viewerID uint64) ([]*vo.BoardListItem, error) {
	items, err := s.boards.ListBoards(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("查询公告板失败: %w", err)
	}
	return items, nil
}

func (s *boardService) ToggleMembership(ctx context.Context, boardID string, userID uint64) (*vo.JoinResult, error) {
	if _, err := s.getBoard(ctx, boardID); err != nil {
		return nil, err
	}

	member, err := s.boards.MemberExists(ctx, boardID, userID)
	if err != nil {
		return nil, fmt.Errorf("查询成员关系失败: %w", err)
	}
	if member {
		if _, err := s.boards.RemoveMember(ctx, boardID, userID); err != nil {
			return nil, fmt.Errorf("退出公告板失败: %w", err)
		}
		return &vo.JoinResult{Joined: false}, nil
	}

	if err := s.boards.AddMember(ctx, boardID, userID); err != nil {
		if errors.Is(err, myErrors.ErrRepoDuplicate) {
			return nil, myErrors.Conflict("membership changed concurrently, please retry")
		}
		return nil, fmt.Errorf("加入公告板失败: %w", err)
	}
	return &vo.JoinResult{Joined: true}, nil
}

func (s *boardService) SearchBoards(ctx context.Context, query string, viewerID uint64) ([]*vo.BoardListItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*vo.BoardListItem{}, nil
	}
	items, err := s.boards.SearchBoards(ctx, query, viewerID, constant.SearchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("搜索公告板失败: %w", err)
	}
	return items, nil
}

func noticeSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return constant.DefaultNoticeSubject
	}
	return subject
}

func (s *boardService) CreateNotice(ctx context.Context, boardID string, userID uint64, subject, content string, file *dto.FileUpload) (*vo.NoticeVO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, myErrors.InvalidInput("notice content is required")
	}
	if _, err := s.getBoard(ctx, boardID); err != nil {
		return nil, err
	}

	notice := &entities.Notice{
		ID:      uuid.NewString(),
		BoardID: boardID,
		UserID:  userID,
		Subject: noticeSubject(subject),
		Content: content,
	}
	if file != nil {
		ref, err := s.uploader.save(ctx, constant.ObjectKeyPrefixNoticeFiles, file)
		if err != nil {
			return nil, err
		}
		fileType := classifyFileType(file.ContentType)
		notice.FileURL = &ref
		notice.FileType = &fileType
	}

	if err := s.notices.CreateNotice(ctx, notice); err != nil {
		s.uploader.discard(ctx, notice.FileURL)
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("board not found")
		}
		return nil, fmt.Errorf("创建公告失败: %w", err)
	}
	return vo.NewNoticeVO(notice), nil
}

func (s *boardService) EditNotice(ctx context.Context, noticeID string, userID uint64, subject, content string) (*vo.NoticeVO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, myErrors.InvalidInput("notice content is required")
	}
	notice, err := s.notices.UpdateOwnedNotice(ctx, noticeID, userID, noticeSubject(subject), content)
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNoRowsAffected) {
			return nil, myErrors.Forbidden("notice not found or access denied")
		}
		return nil, fmt.Errorf("修改公告失败: %w", err)
	}
	return vo.NewNoticeVO(notice), nil
}

func (s *boardService) DeleteNotice(ctx context.Context, noticeID string, userID uint64) error {
	notice, err := s.notices.DeleteOwnedNotice(ctx, noticeID, userID)
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNoRowsAffected) {
			return myErrors.Forbidden("notice not found or access denied")
		}
		return fmt.Errorf("删除公告失败: %w", err)
	}
	s.uploader.discard(ctx, notice.FileURL)
	return nil
}

func (s *boardService) NoticeFeed(ctx context.Context, userID uint64) ([]*vo.NoticeFeedItem, error) {
	items, err := s.notices.Feed(ctx, userID, constant.NoticeFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("查询公告流失败: %w", err)
	}
	return items, nil
}

func (s *boardService) getBoard(ctx context.Context, boardID string) (*entities.NoticeBoard, error) {
	board, err := s.boards.GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, myErrors.ErrRepoNotFound) {
			return nil, myErrors.NotFound("board not found")
		}
		return nil, fmt.Errorf("查询公告板失败: %w", err)
	}
	return board, nil
}
