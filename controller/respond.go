package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/campus_service/models/vo"
	"github.com/Xushengqwer/campus_service/myErrors"
)

const internalErrorMessage = "internal server error"

// Gates 路由鉴权中间件，由 router 组装后传给各控制器
type Gates struct {
	Optional gin.HandlerFunc
	Required gin.HandlerFunc
	Admin    gin.HandlerFunc
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, myErrors.ErrInvalidInput), errors.Is(err, myErrors.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, myErrors.ErrUnauthorized), errors.Is(err, myErrors.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, myErrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, myErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, myErrors.ErrDuplicateIdentity),
		errors.Is(err, myErrors.ErrAlreadyExists),
		errors.Is(err, myErrors.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError 业务错误原样返回消息；其余错误只写日志，对外统一为 500
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusOf(err)
	message := myErrors.PublicMessage(err)
	if status == http.StatusInternalServerError || message == "" {
		logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, vo.ErrorResponse{Error: internalErrorMessage})
		return
	}
	c.JSON(status, vo.ErrorResponse{Error: message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, vo.ErrorResponse{Error: message})
}

// pathID 解析数值型路径参数，失败时已写出 400
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
