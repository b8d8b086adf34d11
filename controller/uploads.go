package controller

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/models/vo"
)

// UploadsController 从当前 FileStore 读出上传文件
type UploadsController struct {
	store  dependencies.FileStore
	logger *zap.Logger
}

func NewUploadsController(store dependencies.FileStore, logger *zap.Logger) *UploadsController {
	return &UploadsController{store: store, logger: logger}
}

// Serve 读取上传文件
// @Summary      读取上传文件
// @Tags         uploads (文件)
// @Produce      octet-stream
// @Param        filepath path string true "对象键"
// @Success      200 {file} file
// @Failure      404 {object} vo.ErrorResponse "文件不存在"
// @Router       /uploads/{filepath} [get]
func (ctrl *UploadsController) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filepath"), "/")
	if dependencies.ValidateObjectKey(key) != nil {
		c.JSON(http.StatusNotFound, vo.ErrorResponse{Error: "file not found"})
		return
	}

	obj, err := ctrl.store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, dependencies.ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, vo.ErrorResponse{Error: "file not found"})
			return
		}
		ctrl.logger.Error("读取上传文件失败", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, vo.ErrorResponse{Error: internalErrorMessage})
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	var extra map[string]string
	if !servedInline(contentType) {
		extra = map[string]string{
			"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)}),
		}
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body, extra)
}

// servedInline 只有位图和 PDF 在浏览器内直接展示，其余（含 svg、html）一律下载
func servedInline(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "application/pdf" {
		return true
	}
	return strings.HasPrefix(mediaType, "image/") && mediaType != "image/svg+xml"
}

func (ctrl *UploadsController) RegisterRoutes(r gin.IRouter) {
	r.GET(constant.UploadsRoutePrefix+"/*filepath", ctrl.Serve)
}
