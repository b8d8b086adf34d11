package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/models/enums"
	"github.com/Xushengqwer/campus_service/service"
)

// InternalController 运维接口，只挂在内部密钥保护的分组下
type InternalController struct {
	calendar    service.CalendarService
	authService service.AuthService
	logger      *zap.Logger
}

func NewInternalController(calendar service.CalendarService, authService service.AuthService, logger *zap.Logger) *InternalController {
	return &InternalController{calendar: calendar, authService: authService, logger: logger}
}

// CreateAcademicEvent 创建学术事件
// @Summary      创建学术事件（内部）
// @Tags         internal (内部)
// @Accept       json
// @Produce      json
// @Param        X-Internal-Key header string true "内部调用密钥"
// @Param        request body dto.CreateEventRequest true "事件"
// @Success      201 {object} vo.EventVO
// @Failure      400 {object} vo.ErrorResponse "参数错误"
// @Failure      403 {object} vo.ErrorResponse "密钥错误"
// @Router       /temp/create-academic-event [post]
func (ctrl *InternalController) CreateAcademicEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title, start_time and end_time are required")
		return
	}
	event, err := ctrl.calendar.CreateAcademicEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// SetRole 调整用户角色
// @Summary      调整用户角色（内部）
// @Tags         internal (内部)
// @Accept       json
// @Produce      json
// @Param        X-Internal-Key header string true "内部调用密钥"
// @Param        username path string true "用户名"
// @Param        request body dto.UpdateRoleRequest true "角色"
// @Success      200 {object} vo.UserProfile
// @Failure      404 {object} vo.ErrorResponse "用户不存在"
// @Router       /temp/users/{username}/role [post]
func (ctrl *InternalController) SetRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "role must be member or admin")
		return
	}
	profile, err := ctrl.authService.SetRole(c.Request.Context(), c.Param("username"), enums.Role(req.Role))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RegisterRoutes gate 为内部密钥中间件
func (ctrl *InternalController) RegisterRoutes(r gin.IRouter, gate gin.HandlerFunc) {
	internal := r.Group("/temp", gate)
	{
		internal.POST("/create-academic-event", ctrl.CreateAcademicEvent)
		internal.POST("/users/:username/role", ctrl.SetRole)
	}
}
