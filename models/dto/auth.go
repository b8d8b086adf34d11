package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,max=255"`
	Password string `json:"password" binding:"required,max=72"`
	Username string `json:"username" binding:"required,max=50"`
}

// LoginRequest identifier 可以是邮箱或用户名
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// UpdateProfileRequest course/bio 为空时清空对应字段
type UpdateProfileRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Username string  `json:"username" binding:"required,max=50"`
	Course   *string `json:"course" binding:"omitempty,max=100"`
	Bio      *string `json:"bio"`
}

// UpdateRoleRequest 内部接口：调整用户角色
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=member admin"`
}
