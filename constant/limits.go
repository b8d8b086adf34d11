package constant

import "time"

// 列表查询的固定上限
const (
	ForYouFeedLimit     = 20
	FollowingFeedLimit  = 20
	NoticeFeedLimit     = 50
	SearchResultLimit   = 10
	NotificationListMax = 50
)

// DefaultTokenTTL 令牌默认有效期：90 天
const DefaultTokenTTL = 90 * 24 * time.Hour

// DefaultNoticeSubject 公告未填写主题时使用的默认值
const DefaultNoticeSubject = "Geral"

// DefaultMaxUploadMB 单个上传文件的默认大小上限
const DefaultMaxUploadMB = 10
