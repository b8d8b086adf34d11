package gormrepo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/vo"
)

// BoardRepository 公告板与成员关系
type BoardRepository interface {
	// CreateBoard slug 冲突返回 myErrors.ErrRepoDuplicate
	CreateBoard(ctx context.Context, board *entities.NoticeBoard) error
	// GetBoardByID 未找到返回 myErrors.ErrRepoNotFound
	GetBoardByID(ctx context.Context, id string) (*entities.NoticeBoard, error)
	// ListBoards 全部公告板，按名称排序，附带成员数与 viewerID 是否为成员
	ListBoards(ctx context.Context, viewerID uint64) ([]*vo.BoardListItem, error)
	// SearchBoards 在 name/description/slug 上做子串匹配
	SearchBoards(ctx context.Context, query string, viewerID uint64, limit int) ([]*vo.BoardListItem, error)

	MemberExists(ctx context.Context, boardID string, userID uint64) (bool, error)
	// AddMember 已是成员时返回 myErrors.ErrRepoDuplicate
	AddMember(ctx context.Context, boardID string, userID uint64) error
	RemoveMember(ctx context.Context, boardID string, userID uint64) (bool, error)
}

type boardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) CreateBoard(ctx context.Context, board *entities.NoticeBoard) error {
	return translate(r.db.WithContext(ctx).Create(board).Error)
}

func (r *boardRepository) GetBoardByID(ctx context.Context, id string) (*entities.NoticeBoard, error) {
	var board entities.NoticeBoard
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, translate(err)
	}
	return &board, nil
}

const boardListSelect = `b.id, b.name, b.description, b.slug,
	(SELECT COUNT(*) FROM board_members m1 WHERE m1.board_id = b.id) AS member_count,
	EXISTS (SELECT 1 FROM board_members m2 WHERE m2.board_id = b.id AND m2.user_id = ?) AS is_member`

func (r *boardRepository) listQuery(ctx context.Context, viewerID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("notice_boards AS b").
		Select(boardListSelect, viewerID).
		Order("b.name ASC")
}

func (r *boardRepository) ListBoards(ctx context.Context, viewerID uint64) ([]*vo.BoardListItem, error) {
	items := make([]*vo.BoardListItem, 0)
	if err := r.listQuery(ctx, viewerID).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *boardRepository) SearchBoards(ctx context.Context, query string, viewerID uint64, limit int) ([]*vo.BoardListItem, error) {
	pattern := likePattern(strings.ToLower(query))
	items := make([]*vo.BoardListItem, 0)
	err := r.listQuery(ctx, viewerID).
		Where(likeAny("b.name", "b.description", "b.slug"), pattern, pattern, pattern).
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *boardRepository) MemberExists(ctx context.Context, boardID string, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *boardRepository) AddMember(ctx context.Context, boardID string, userID uint64) error {
	return translate(r.db.WithContext(ctx).Create(&entities.BoardMember{BoardID: boardID, UserID: userID}).Error)
}

func (r *boardRepository) RemoveMember(ctx context.Context, boardID string, userID uint64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&entities.BoardMember{})
	return result.RowsAffected > 0, result.Error
}
