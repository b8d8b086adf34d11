package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/middleware"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/service"
)

// SocialController 关注、资料页与用户搜索
type SocialController struct {
	graph  service.SocialGraphService
	logger *zap.Logger
}

func NewSocialController(graph service.SocialGraphService, logger *zap.Logger) *SocialController {
	return &SocialController{graph: graph, logger: logger}
}

// Follow 关注用户
// @Summary      关注用户
// @Tags         social (社交)
// @Produce      json
// @Security     BearerAuth
// @Param        username path string true "被关注者用户名"
// @Success      200 {object} vo.FollowResult "关注成功"
// @Failure      400 {object} vo.ErrorResponse "不能关注自己"
// @Failure      404 {object} vo.ErrorResponse "用户不存在"
// @Failure      409 {object} vo.ErrorResponse "已经关注"
// @Router       /users/{username}/follow [post]
func (ctrl *SocialController) Follow(c *gin.Context) {
	result, err := ctrl.graph.Follow(c.Request.Context(), middleware.ViewerID(c), c.Param("username"))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Unfollow 取消关注
// @Summary      取消关注
// @Tags         social (社交)
// @Produce      json
// @Security     BearerAuth
// @Param        username path string true "被关注者用户名"
// @Success      200 {object} vo.FollowResult "已取消关注"
// @Failure      400 {object} vo.ErrorResponse "尚未关注"
// @Failure      404 {object} vo.ErrorResponse "用户不存在"
// @Router       /users/{username}/unfollow [delete]
func (ctrl *SocialController) Unfollow(c *gin.Context) {
	result, err := ctrl.graph.Unfollow(c.Request.Context(), middleware.ViewerID(c), c.Param("username"))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ProfileByUsername 查看资料页
// @Summary      按用户名查看资料
// @Tags         social (社交)
// @Produce      json
// @Param        username path string true "用户名"
// @Success      200 {object} vo.ProfileView
// @Failure      404 {object} vo.ErrorResponse "用户不存在"
// @Router       /profile/{username} [get]
func (ctrl *SocialController) ProfileByUsername(c *gin.Context) {
	profile, err := ctrl.graph.ProfileByUsername(c.Request.Context(), c.Param("username"), middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ProfileByID 按 ID 查看资料
// @Summary      按 ID 查看资料
// @Tags         social (社交)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Success      200 {object} vo.ProfileView
// @Failure      400 {object} vo.ErrorResponse "ID 格式错误"
// @Failure      404 {object} vo.ErrorResponse "用户不存在"
// @Router       /profile/id/{id} [get]
func (ctrl *SocialController) ProfileByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := ctrl.graph.ProfileByID(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SearchUsers 搜索用户
// @Summary      搜索用户
// @Description  按用户名或姓名模糊匹配，最多 10 条，不包含自己。
// @Tags         search (搜索)
// @Produce      json
// @Param        q query string false "关键词"
// @Success      200 {array} vo.UserSearchItem
// @Router       /search/users [get]
func (ctrl *SocialController) SearchUsers(c *gin.Context) {
	var query dto.SearchQuery
	_ = c.ShouldBindQuery(&query)
	items, err := ctrl.graph.SearchUsers(c.Request.Context(), query.Q, middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctrl *SocialController) RegisterRoutes(r gin.IRouter, gates Gates) {
	r.GET("/profile/:username", gates.Optional, ctrl.ProfileByUsername)
	r.GET("/profile/id/:id", gates.Optional, ctrl.ProfileByID)
	r.POST("/users/:username/follow", gates.Required, ctrl.Follow)
	r.DELETE("/users/:username/unfollow", gates.Required, ctrl.Unfollow)
	r.GET("/search/users", gates.Optional, ctrl.SearchUsers)
}
