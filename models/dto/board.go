package dto

type CreateBoardRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Slug        string `json:"slug" binding:"required,max=100"`
}

// CreateNoticeRequest multipart 表单字段，附件字段名为 file
type CreateNoticeRequest struct {
	Subject string `form:"subject" binding:"max=100"`
	Content string `form:"content"`
}

// EditNoticeRequest 附件不可修改
type EditNoticeRequest struct {
	Subject string `json:"subject" binding:"max=100"`
	Content string `json:"content"`
}

// SearchQuery ?q= 查询
type SearchQuery struct {
	Q string `form:"q"`
}
