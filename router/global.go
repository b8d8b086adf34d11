package router

import (
	"net/http"
	"time"

	"github.com/Xushengqwer/go-common/core"
	commonMiddleware "github.com/Xushengqwer/go-common/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/campus_service/config"
	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/controller"
	"github.com/Xushengqwer/campus_service/middleware"
)

// Controllers 需要注册路由的全部控制器
type Controllers struct {
	Auth         *controller.AuthController
	Social       *controller.SocialController
	Post         *controller.PostController
	Board        *controller.BoardController
	Event        *controller.EventController
	Internal     *controller.InternalController
	Notification *controller.NotificationController
	Uploads      *controller.UploadsController
}

// Options 路由级别的开关
type Options struct {
	Gates controller.Gates
	// InternalGate 为 nil 时不注册 /temp 分组
	InternalGate gin.HandlerFunc
	// NotificationsRead 为 false 时不注册 GET /notifications
	NotificationsRead bool
}

// NewGates 组装三种鉴权中间件
func NewGates(verifier middleware.TokenVerifier, roles middleware.RoleLookup, logger *zap.Logger) controller.Gates {
	return controller.Gates{
		Optional: middleware.OptionalAuth(verifier),
		Required: middleware.RequireAuth(verifier),
		Admin:    middleware.RequireAdmin(roles, logger),
	}
}

// RegisterRoutes 只注册业务路由，不挂全局中间件，测试里直接配合 gin.New() 使用
func RegisterRoutes(r gin.IRouter, ctrls *Controllers, opts Options) {
	ctrls.Auth.RegisterRoutes(r, opts.Gates)
	ctrls.Social.RegisterRoutes(r, opts.Gates)
	ctrls.Post.RegisterRoutes(r, opts.Gates)
	ctrls.Board.RegisterRoutes(r, opts.Gates)
	ctrls.Event.RegisterRoutes(r, opts.Gates)
	ctrls.Uploads.RegisterRoutes(r)
	if opts.InternalGate != nil && ctrls.Internal != nil {
		ctrls.Internal.RegisterRoutes(r, opts.InternalGate)
	}
	if opts.NotificationsRead && ctrls.Notification != nil {
		ctrls.Notification.RegisterRoutes(r, opts.Gates)
	}
}

// SetupRouter 配置 Gin 引擎、全局中间件和路由。
func SetupRouter(
	logger *core.ZapLogger,
	cfg *appConfig.CampusConfig,
	ctrls *Controllers,
	opts Options,
) *gin.Engine {
	logger.Info("开始设置 Gin 路由...")

	router := gin.New()
	maxUploadMB := cfg.StorageConfig.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = constant.DefaultMaxUploadMB
	}
	router.MaxMultipartMemory = int64(maxUploadMB) << 20

	// 1. OTel 最先，后续中间件才能拿到 Span
	router.Use(otelgin.Middleware(constant.ServiceName))

	// 2. Panic Recovery
	router.Use(commonMiddleware.ErrorHandlingMiddleware(logger))

	// 3. 访问日志
	if baseLogger := logger.Logger(); baseLogger != nil {
		router.Use(commonMiddleware.RequestLoggerMiddleware(baseLogger))
	} else {
		logger.Warn("无法获取底层的 *zap.Logger，跳过 RequestLoggerMiddleware 注册")
	}

	// 4. 超时控制，配置单位为秒
	requestTimeout := time.Duration(cfg.ServerConfig.RequestTimeout) * time.Second
	router.Use(commonMiddleware.RequestTimeoutMiddleware(logger, requestTimeout))

	// 5. 移动端跨域
	router.Use(cors.New(corsConfig(cfg.CORSConfig)))

	logger.Debug("已注册全局中间件")

	RegisterRoutes(router, ctrls, opts)
	if opts.InternalGate == nil {
		logger.Warn("未配置内部调用密钥，/temp 分组未注册")
	}
	logger.Info("业务路由已注册",
		zap.Bool("internalRoutes", opts.InternalGate != nil),
		zap.Bool("notificationsRead", opts.NotificationsRead))

	swaggerURL := ginSwagger.URL("/swagger/doc.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	logger.Info("Swagger UI endpoint registered at /swagger/*any")

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	logger.Info("Gin 路由器设置完成")
	return router
}

func corsConfig(cfg appConfig.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	if cfg.MaxAgeSecond > 0 {
		c.MaxAge = time.Duration(cfg.MaxAgeSecond) * time.Second
	}
	return c
}
