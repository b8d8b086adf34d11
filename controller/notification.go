package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/middleware"
	"github.com/Xushengqwer/campus_service/service"
)

type NotificationController struct {
	notifications service.NotificationService
	logger        *zap.Logger
}

func NewNotificationController(notifications service.NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, logger: logger}
}

// List 当前用户的通知
// @Summary      通知列表
// @Description  默认不开放，需在配置中打开 notificationConfig.readEnabled。
// @Tags         notifications (通知)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} vo.NotificationVO
// @Router       /notifications [get]
func (ctrl *NotificationController) List(c *gin.Context) {
	items, err := ctrl.notifications.ListForUser(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctrl *NotificationController) RegisterRoutes(r gin.IRouter, gates Gates) {
	r.GET("/notifications", gates.Required, ctrl.List)
}
