package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/middleware"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/service"
)

// BoardController 公告板与公告
type BoardController struct {
	boardService   service.BoardService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewBoardController(boardService service.BoardService, maxUploadBytes int64, logger *zap.Logger) *BoardController {
	return &BoardController{boardService: boardService, maxUploadBytes: maxUploadBytes, logger: logger}
}

// CreateBoard 创建公告板（管理员）
// @Summary      创建公告板
// @Description  需要 admin 角色，角色以数据库为准。
// @Tags         boards (公告板)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBoardRequest true "公告板信息"
// @Success      201 {object} vo.BoardVO
// @Failure      400 {object} vo.ErrorResponse "参数错误"
// @Failure      403 {object} vo.ErrorResponse "需要管理员"
// @Failure      409 {object} vo.ErrorResponse "slug 已存在"
// @Router       /boards [post]
func (ctrl *BoardController) CreateBoard(c *gin.Context) {
	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and slug are required")
		return
	}
	board, err := ctrl.boardService.CreateBoard(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// ListBoards 全部公告板
// @Summary      公告板列表
// @Tags         boards (公告板)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} vo.BoardListItem
// @Router       /boards [get]
func (ctrl *BoardController) ListBoards(c *gin.Context) {
	items, err := ctrl.boardService.ListBoards(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ToggleJoin 加入或退出公告板
// @Summary      切换成员关系
// @Tags         boards (公告板)
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "公告板 ID"
// @Success      200 {object} vo.JoinResult
// @Failure      404 {object} vo.ErrorResponse "公告板不存在"
// @Failure      409 {object} vo.ErrorResponse "并发冲突，请重试"
// @Router       /boards/{id}/toggle-join [post]
func (ctrl *BoardController) ToggleJoin(c *gin.Context) {
	result, err := ctrl.boardService.ToggleMembership(c.Request.Context(), c.Param("id"), middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateNotice 发布公告
// @Summary      发布公告
// @Description  subject 为空时默认为 "Geral"；附件按 MIME 类型归类为 image/pdf/other。
// @Tags         notices (公告)
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "公告板 ID"
// @Param        subject formData string false "标题"
// @Param        content formData string true "正文"
// @Param        file formData file false "附件"
// @Success      201 {object} vo.NoticeVO
// @Failure      400 {object} vo.ErrorResponse "正文为空"
// @Failure      404 {object} vo.ErrorResponse "公告板不存在"
// @Router       /boards/{id}/notices [post]
func (ctrl *BoardController) CreateNotice(c *gin.Context) {
	var req dto.CreateNoticeRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid notice")
		return
	}
	file, release, err := formFile(c, "file", ctrl.maxUploadBytes)
	defer release()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	notice, err := ctrl.boardService.CreateNotice(c.Request.Context(), c.Param("id"), middleware.ViewerID(c), req.Subject, req.Content, file)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, notice)
}

// NoticeFeed 已加入公告板的公告
// @Summary      公告流
// @Tags         notices (公告)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} vo.NoticeFeedItem
// @Router       /notices/feed [get]
func (ctrl *BoardController) NoticeFeed(c *gin.Context) {
	items, err := ctrl.boardService.NoticeFeed(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// EditNotice 修改自己的公告
// @Summary      修改公告
// @Tags         notices (公告)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "公告 ID"
// @Param        request body dto.EditNoticeRequest true "新标题与正文"
// @Success      200 {object} vo.NoticeVO
// @Failure      403 {object} vo.ErrorResponse "公告不存在或不属于当前用户"
// @Router       /notices/{id} [put]
func (ctrl *BoardController) EditNotice(c *gin.Context) {
	var req dto.EditNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "notice content is required")
		return
	}
	notice, err := ctrl.boardService.EditNotice(c.Request.Context(), c.Param("id"), middleware.ViewerID(c), req.Subject, req.Content)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, notice)
}

// DeleteNotice 删除自己的公告
// @Summary      删除公告
// @Tags         notices (公告)
// @Security     BearerAuth
// @Param        id path string true "公告 ID"
// @Success      204 "删除成功"
// @Failure      403 {object} vo.ErrorResponse "公告不存在或不属于当前用户"
// @Router       /notices/{id} [delete]
func (ctrl *BoardController) DeleteNotice(c *gin.Context) {
	if err := ctrl.boardService.DeleteNotice(c.Request.Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchBoards 搜索公告板
// @Summary      搜索公告板
// @Tags         search (搜索)
// @Produce      json
// @Param        q query string false "关键词"
// @Success      200 {array} vo.BoardListItem
// @Router       /search/boards [get]
func (ctrl *BoardController) SearchBoards(c *gin.Context) {
	var query dto.SearchQuery
	_ = c.ShouldBindQuery(&query)
	items, err := ctrl.boardService.SearchBoards(c.Request.Context(), query.Q, middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctrl *BoardController) RegisterRoutes(r gin.IRouter, gates Gates) {
	boards := r.Group("/boards", gates.Required)
	{
		boards.POST("", gates.Admin, ctrl.CreateBoard)
		boards.GET("", ctrl.ListBoards)
		boards.POST("/:id/toggle-join", ctrl.ToggleJoin)
		boards.POST("/:id/notices", ctrl.CreateNotice)
	}
	notices := r.Group("/notices", gates.Required)
	{
		notices.GET("/feed", ctrl.NoticeFeed)
		notices.PUT("/:id", ctrl.EditNotice)
		notices.DELETE("/:id", ctrl.DeleteNotice)
	}
	r.GET("/search/boards", gates.Optional, ctrl.SearchBoards)
}
