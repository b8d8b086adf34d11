package vo

// ErrorResponse 所有失败响应的统一结构
type ErrorResponse struct {
	Error string `json:"error" example:"invalid input"`
}
