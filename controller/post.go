package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/middleware"
	"github.com/Xushengqwer/campus_service/models/dto"
	"github.com/Xushengqwer/campus_service/service"
)

// PostController 帖子、点赞、评论与各类帖子流
type PostController struct {
	postService    service.PostService
	feedService    service.FeedService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewPostController(postService service.PostService, feedService service.FeedService, maxUploadBytes int64, logger *zap.Logger) *PostController {
	return &PostController{
		postService:    postService,
		feedService:    feedService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// CreatePost 发布帖子
// @Summary      发布帖子
// @Description  content 与 postImage 至少提供一个。请求体为 multipart/form-data。
// @Tags         posts (帖子)
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        content formData string false "帖子文本" maxLength(5000)
// @Param        postImage formData file false "帖子图片"
// @Success      201 {object} vo.PostVO "发布成功"
// @Failure      400 {object} vo.ErrorResponse "文本与图片都为空"
// @Failure      401 {object} vo.ErrorResponse "未登录"
// @Router       /posts [post]
func (ctrl *PostController) CreatePost(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid post content")
		return
	}
	image, release, err := formFile(c, "postImage", ctrl.maxUploadBytes)
	defer release()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	post, err := ctrl.postService.CreatePost(c.Request.Context(), middleware.ViewerID(c), req.Content, image)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// DeletePost 删除自己的帖子
// @Summary      删除帖子
// @Tags         posts (帖子)
// @Security     BearerAuth
// @Param        id path int true "帖子 ID"
// @Success      204 "删除成功"
// @Failure      400 {object} vo.ErrorResponse "ID 格式错误"
// @Failure      403 {object} vo.ErrorResponse "帖子不存在或不属于当前用户"
// @Router       /posts/{id} [delete]
func (ctrl *PostController) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.postService.DeletePost(c.Request.Context(), id, middleware.ViewerID(c)); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike 点赞或取消点赞
// @Summary      切换点赞
// @Tags         posts (帖子)
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "帖子 ID"
// @Success      200 {object} vo.LikeResult
// @Failure      404 {object} vo.ErrorResponse "帖子不存在"
// @Failure      409 {object} vo.ErrorResponse "并发冲突，请重试"
// @Router       /posts/{id}/toggle-like [post]
func (ctrl *PostController) ToggleLike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := ctrl.postService.ToggleLike(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListComments 帖子评论
// @Summary      评论列表
// @Tags         posts (帖子)
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "帖子 ID"
// @Success      200 {array} vo.CommentVO
// @Router       /posts/{id}/comments [get]
func (ctrl *PostController) ListComments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := ctrl.postService.ListComments(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment 发表评论
// @Summary      发表评论
// @Description  返回的作者信息取自令牌中的资料快照。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "帖子 ID"
// @Param        request body dto.CreateCommentRequest true "评论内容"
// @Success      201 {object} vo.CommentVO
// @Failure      400 {object} vo.ErrorResponse "内容为空"
// @Failure      404 {object} vo.ErrorResponse "帖子不存在"
// @Router       /posts/{id}/comments [post]
func (ctrl *PostController) CreateComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "comment content is required")
		return
	}
	identity, _ := middleware.IdentityFrom(c)
	comment, err := ctrl.postService.CreateComment(c.Request.Context(), id, identity, req.Content)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ForYou 推荐帖子流
// @Summary      推荐帖子流
// @Description  全部帖子按时间倒序，最多 20 条。登录时 liked_by_me 反映当前用户。
// @Tags         feeds (帖子流)
// @Produce      json
// @Success      200 {array} vo.FeedItem
// @Router       /posts [get]
func (ctrl *PostController) ForYou(c *gin.Context) {
	items, err := ctrl.feedService.ForYou(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Following 关注的人的帖子
// @Summary      关注帖子流
// @Tags         feeds (帖子流)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} vo.FeedItem
// @Router       /feed/following [get]
func (ctrl *PostController) Following(c *gin.Context) {
	items, err := ctrl.feedService.Following(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ByUsername 某个用户的帖子
// @Summary      用户帖子流（按用户名）
// @Tags         feeds (帖子流)
// @Produce      json
// @Param        username path string true "用户名"
// @Success      200 {array} vo.FeedItem
// @Failure      404 {object} vo.ErrorResponse "用户不存在"
// @Router       /posts/user/{username} [get]
func (ctrl *PostController) ByUsername(c *gin.Context) {
	items, err := ctrl.feedService.ByUsername(c.Request.Context(), c.Param("username"), middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ByUserID 某个用户的帖子
// @Summary      用户帖子流（按 ID）
// @Tags         feeds (帖子流)
// @Produce      json
// @Param        id path int true "用户 ID"
// @Success      200 {array} vo.FeedItem
// @Router       /posts/user/id/{id} [get]
func (ctrl *PostController) ByUserID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := ctrl.feedService.ByUserID(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// RegisterRoutes 注册帖子与帖子流路由
func (ctrl *PostController) RegisterRoutes(r gin.IRouter, gates Gates) {
	posts := r.Group("/posts")
	{
		posts.POST("", gates.Required, ctrl.CreatePost)
		posts.GET("", gates.Optional, ctrl.ForYou)
		posts.GET("/user/:username", gates.Optional, ctrl.ByUsername)
		posts.GET("/user/id/:id", gates.Optional, ctrl.ByUserID)
		posts.DELETE("/:id", gates.Required, ctrl.DeletePost)
		posts.POST("/:id/toggle-like", gates.Required, ctrl.ToggleLike)
		posts.GET("/:id/comments", gates.Required, ctrl.ListComments)
		posts.POST("/:id/comments", gates.Required, ctrl.CreateComment)
	}
	r.GET("/feed/following", gates.Required, ctrl.Following)
}
