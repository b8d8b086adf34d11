package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/middleware"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/service"
)

// EventController 日历
type EventController struct {
	calendar service.CalendarService
	logger   *zap.Logger
}

func NewEventController(calendar service.CalendarService, logger *zap.Logger) *EventController {
	return &EventController{calendar: calendar, logger: logger}
}

// CreateEvent 创建私有事件
// @Summary      创建私有事件
// @Description  分类固定为 USER_PRIVATE。时间使用 RFC3339。
// @Tags         events (日历)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateEventRequest true "事件"
// @Success      201 {object} vo.EventVO
// @Failure      400 {object} vo.ErrorResponse "参数错误"
// @Router       /events [post]
func (ctrl *EventController) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title, start_time and end_time are required")
		return
	}
	event, err := ctrl.calendar.CreatePrivateEvent(c.Request.Context(), middleware.ViewerID(c), &req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListEvents 某月的公开事件
// @Summary      公开事件
// @Description  返回该月开始的 ACADEMIC 与 CAMPUS 事件，私有事件不在其中。
// @Tags         events (日历)
// @Produce      json
// @Param        month query int true "月份 1-12"
// @Param        year query int true "年份"
// @Success      200 {array} vo.EventVO
// @Failure      400 {object} vo.ErrorResponse "缺少 month 或 year"
// @Router       /events [get]
func (ctrl *EventController) ListEvents(c *gin.Context) {
	var query dto.MonthQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "month and year are required")
		return
	}
	events, err := ctrl.calendar.ListEvents(c.Request.Context(), query.Month, query.Year)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// ListOwnEvents 某月自己的私有事件
// @Summary      我的私有事件
// @Tags         events (日历)
// @Produce      json
// @Security     BearerAuth
// @Param        month query int true "月份 1-12"
// @Param        year query int true "年份"
// @Success      200 {array} vo.EventVO
// @Router       /events/mine [get]
func (ctrl *EventController) ListOwnEvents(c *gin.Context) {
	var query dto.MonthQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "month and year are required")
		return
	}
	events, err := ctrl.calendar.ListOwnEvents(c.Request.Context(), middleware.ViewerID(c), query.Month, query.Year)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (ctrl *EventController) RegisterRoutes(r gin.IRouter, gates Gates) {
	r.POST("/events", gates.Required, ctrl.CreateEvent)
	r.GET("/events", ctrl.ListEvents)
	r.GET("/events/mine", gates.Required, ctrl.ListOwnEvents)
}
