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

// NoticeRepository 公告存储。修改和删除都以 user_id 作为过滤条件，
// 未命中时统一返回 myErrors.ErrRepoNoRowsAffected（不存在或不是作者）。
type NoticeRepository interface {
	CreateNotice(ctx context.Context, notice *entities.Notice) error
	GetNoticeByID(ctx context.Context, id string) (*entities.Notice, error)
	UpdateOwnedNotice(ctx context.Context, id string, userID uint64, subject, content string) (*entities.Notice, error)
	DeleteOwnedNotice(ctx context.Context, id string, userID uint64) (*entities.Notice, error)
	// Feed 用户所在公告板的公告，最新在前
	Feed(ctx context.Context, userID uint64, limit int) ([]*vo.NoticeFeedItem, error)
}

type noticeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewNoticeRepository(db *gorm.DB, logger *zap.Logger) NoticeRepository {
	return &noticeRepository{db: db, logger: logger}
}

func (r *noticeRepository) CreateNotice(ctx context.Context, notice *entities.Notice) error {
	return translate(r.db.WithContext(ctx).Create(notice).Error)
}

func (r *noticeRepository) GetNoticeByID(ctx context.Context, id string) (*entities.Notice, error) {
	var notice entities.Notice
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&notice).Error; err != nil {
		return nil, translate(err)
	}
	return &notice, nil
}

func (r *noticeRepository) getOwned(ctx context.Context, id string, userID uint64) (*entities.Notice, error) {
	var notice entities.Notice
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&notice).Error
	if err != nil {
		if errors.Is(translate(err), myErrors.ErrRepoNotFound) {
			return nil, myErrors.ErrRepoNoRowsAffected
		}
		return nil, err
	}
	return &notice, nil
}

func (r *noticeRepository) UpdateOwnedNotice(ctx context.Context, id string, userID uint64, subject, content string) (*entities.Notice, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Notice{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"subject": subject, "content": content})
	if result.Error != nil {
		r.logger.Error("更新公告失败", zap.String("noticeID", id), zap.Error(result.Error))
		return nil, result.Error
	}
	// 行数为 0 也可能是 MySQL 的“值未变化”，回读一次区分
	return r.getOwned(ctx, id, userID)
}

func (r *noticeRepository) DeleteOwnedNotice(ctx context.Context, id string, userID uint64) (*entities.Notice, error) {
	notice, err := r.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Notice{})
	if result.Error != nil {
		r.logger.Error("删除公告失败", zap.String("noticeID", id), zap.Error(result.Error))
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, myErrors.ErrRepoNoRowsAffected
	}
	return notice, nil
}

func (r *noticeRepository) Feed(ctx context.Context, userID uint64, limit int) ([]*vo.NoticeFeedItem, error) {
	items := make([]*vo.NoticeFeedItem, 0)
	err := r.db.WithContext(ctx).
		Table("notices AS n").
		Select(`n.id, n.board_id, n.subject, n.content, n.file_url, n.file_type, n.created_at,
			b.name AS board_name, u.id AS author_id, u.name AS author_name, u.avatar_url AS author_avatar`).
		Joins("JOIN board_members m ON m.board_id = n.board_id AND m.user_id = ?", userID).
		Joins("JOIN notice_boards b ON b.id = n.board_id").
		Joins("JOIN users u ON u.id = n.user_id").
		Order("n.created_at DESC, n.id DESC").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
