package enums

// Role 用户角色
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// NotificationType 通知类型
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow:
		return true
	}
	return false
}

// FileType 公告附件的分类
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypePDF   FileType = "pdf"
	FileTypeOther FileType = "other"
)

// EventCategory 日历事件分类
type EventCategory string

const (
	EventAcademic    EventCategory = "ACADEMIC"
	EventCampus      EventCategory = "CAMPUS"
	EventUserPrivate EventCategory = "USER_PRIVATE"
)

// PublicEventCategories 公共日历中可见的分类
var PublicEventCategories = []EventCategory{EventAcademic, EventCampus}
