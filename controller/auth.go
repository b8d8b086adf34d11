package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/middleware"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/service"
)

// AuthController 注册、登录与个人资料维护
type AuthController struct {
	authService    service.AuthService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewAuthController(authService service.AuthService, maxUploadBytes int64, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, maxUploadBytes: maxUploadBytes, logger: logger}
}

// Register 注册新用户
// @Summary      注册
// @Description  email 与 username 统一转为小写后保存，二者任一重复返回 409。
// @Tags         auth (认证)
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} vo.UserProfile "注册成功"
// @Failure      400 {object} vo.ErrorResponse "缺少必填字段"
// @Failure      409 {object} vo.ErrorResponse "email 或 username 已存在"
// @Failure      500 {object} vo.ErrorResponse "服务器内部错误"
// @Router       /register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, email, password and username are required")
		return
	}
	profile, err := ctrl.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// Login 登录
// @Summary      登录
// @Description  identifier 可以是邮箱或用户名，成功返回 Bearer 令牌与资料。
// @Tags         auth (认证)
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} vo.LoginResponse "登录成功"
// @Failure      400 {object} vo.ErrorResponse "缺少必填字段"
// @Failure      401 {object} vo.ErrorResponse "密码错误"
// @Failure      404 {object} vo.ErrorResponse "用户不存在"
// @Router       /login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "identifier and password are required")
		return
	}
	resp, err := ctrl.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateProfile 修改自己的资料
// @Summary      修改资料
// @Tags         profile (资料)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户 ID"
// @Param        request body dto.UpdateProfileRequest true "新资料"
// @Success      200 {object} vo.UserProfile "修改成功"
// @Failure      400 {object} vo.ErrorResponse "参数错误"
// @Failure      403 {object} vo.ErrorResponse "只能修改自己的资料"
// @Failure      409 {object} vo.ErrorResponse "username 已被占用"
// @Router       /profile/{id} [put]
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and username are required")
		return
	}
	profile, err := ctrl.authService.UpdateProfile(c.Request.Context(), userID, middleware.ViewerID(c), &req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadAvatar 上传头像
// @Summary      上传头像
// @Description  返回的 avatar_url 为根相对路径，客户端自行拼接服务地址。
// @Tags         profile (资料)
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "头像图片"
// @Success      200 {object} vo.UserProfile "上传成功"
// @Failure      400 {object} vo.ErrorResponse "未上传文件"
// @Router       /profile/upload-avatar [post]
func (ctrl *AuthController) UploadAvatar(c *gin.Context) {
	file, release, err := formFile(c, "avatar", ctrl.maxUploadBytes)
	defer release()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if file == nil {
		badRequest(c, "no file uploaded")
		return
	}
	profile, err := ctrl.authService.SetAvatar(c.Request.Context(), middleware.ViewerID(c), file)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (ctrl *AuthController) RegisterRoutes(r gin.IRouter, gates Gates) {
	r.POST("/register", ctrl.Register)
	r.POST("/login", ctrl.Login)
	r.PUT("/profile/:id", gates.Required, ctrl.UpdateProfile)
	r.POST("/profile/upload-avatar", gates.Required, ctrl.UploadAvatar)
}
