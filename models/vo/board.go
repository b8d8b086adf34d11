package vo

import (
	"time"

	"github.com/Xushengqwer/campus_service/models/entities"
	"github.com/Xushengqwer/campus_service/models/enums"
)

type BoardVO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewBoardVO(b *entities.NoticeBoard) *BoardVO {
	return &BoardVO{ID: b.ID, Name: b.Name, Description: b.Description, Slug: b.Slug, CreatedAt: b.CreatedAt}
}

// BoardListItem 公告板列表与搜索结果
type BoardListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	MemberCount int64  `json:"member_count"`
	IsMember    bool   `json:"is_member"`
}

type JoinResult struct {
	Joined bool `json:"joined"`
}

type NoticeVO struct {
	ID        string          `json:"id"`
	BoardID   string          `json:"board_id"`
	UserID    uint64          `json:"user_id"`
	Subject   string          `json:"subject"`
	Content   string          `json:"content"`
	FileURL   *string         `json:"file_url"`
	FileType  *enums.FileType `json:"file_type"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewNoticeVO(n *entities.Notice) *NoticeVO {
	return &NoticeVO{
		ID:        n.ID,
		BoardID:   n.BoardID,
		UserID:    n.UserID,
		Subject:   n.Subject,
		Content:   n.Content,
		FileURL:   n.FileURL,
		FileType:  n.FileType,
		CreatedAt: n.CreatedAt,
	}
}

// NoticeFeedItem 客户端用 AuthorID 判断是否展示编辑/删除按钮
type NoticeFeedItem struct {
	ID           string          `json:"id"`
	BoardID      string          `json:"board_id"`
	Subject      string          `json:"subject"`
	Content      string          `json:"content"`
	FileURL      *string         `json:"file_url"`
	FileType     *enums.FileType `json:"file_type"`
	CreatedAt    time.Time       `json:"created_at"`
	BoardName    string          `json:"board_name"`
	AuthorID     uint64          `json:"author_id"`
	AuthorName   string          `json:"author_name"`
	AuthorAvatar *string         `json:"author_avatar"`
}
