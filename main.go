package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sharedCore "github.com/Xushengqwer/go-common/core"
	sharedTracing "github.com/Xushengqwer/go-common/core/tracing"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/campus_service/config"
	"github.com/Xushengqwer/campus_service/constant"
	"github.com/Xushengqwer/campus_service/controller"
	"github.com/Xushengqwer/campus_service/dependencies"
	_ "github.com/Xushengqwer/campus_service/docs"
	"github.com/Xushengqwer/campus_service/middleware"
	"github.com/Xushengqwer/campus_service/mq/consumer"
	"github.com/Xushengqwer/campus_service/mq/producer"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
	"github.com/Xushengqwer/campus_service/router"
	"github.com/Xushengqwer/campus_service/security"
	"github.com/Xushengqwer/campus_service/service"
	"github.com/Xushengqwer/campus_service/tasks"
)

// @title           Campus Service API
// @version         1.0
// @description     校园社交服务：注册登录、帖子、关注、公告板与日历。

// @host      localhost:8080
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	var configFile, envFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "Path to configuration file")
	flag.StringVar(&envFile, "env", ".env", "Optional .env file with secrets")
	flag.Parse()

	// 1. 加载配置与密钥
	var cfg appConfig.CampusConfig
	if err := sharedCore.LoadConfig(configFile, &cfg); err != nil {
		log.Fatalf("FATAL: 加载配置失败 (%s): %v", configFile, err)
	}
	secrets, err := appConfig.LoadSecrets(envFile)
	if err != nil {
		log.Fatalf("FATAL: 读取密钥失败: %v", err)
	}
	secrets.Apply(&cfg)

	// 2. 初始化 Logger
	logger, loggerErr := sharedCore.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		log.Fatalf("FATAL: 初始化 ZapLogger 失败: %v", loggerErr)
	}
	defer func() {
		if err := logger.Logger().Sync(); err != nil {
			log.Printf("WARN: ZapLogger Sync 失败: %v\n", err)
		}
	}()
	logger.Info("Logger 初始化成功")
	baseLogger := logger.Logger()

	// 3. TracerProvider
	if cfg.TracerConfig.Enabled {
		tracerShutdown, err := sharedTracing.InitTracerProvider(
			constant.ServiceName,
			constant.ServiceVersion,
			cfg.TracerConfig,
		)
		if err != nil {
			logger.Fatal("初始化 TracerProvider 失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerShutdown(ctx); err != nil {
				logger.Error("关闭 TracerProvider 失败", zap.Error(err))
			}
		}()
		logger.Info("分布式追踪已初始化")
	} else {
		logger.Info("分布式追踪已禁用")
	}

	// 4. 核心依赖
	db, dbErr := dependencies.InitDatabase(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化数据库失败", zap.Error(dbErr))
	}
	fileStore, storeErr := dependencies.InitFileStore(&cfg.StorageConfig, logger)
	if storeErr != nil {
		logger.Fatal("初始化文件存储失败", zap.Error(storeErr))
	}

	var kafkaProducer *producer.KafkaProducer
	var publisher service.NotificationPublisher
	if len(cfg.KafkaConfig.Brokers) > 0 && cfg.KafkaConfig.Topics.Notifications != "" {
		kafkaProducer = producer.NewKafkaProducer(cfg.KafkaConfig, logger)
		publisher = kafkaProducer
		logger.Info("Kafka 生产者已初始化，通知经 Kafka 异步落库")
	} else {
		logger.Warn("未配置 Kafka，通知将直接写库")
	}

	// 5. Repositories
	userRepo := gormrepo.NewUserRepository(db, baseLogger)
	followRepo := gormrepo.NewFollowRepository(db)
	postRepo := gormrepo.NewPostRepository(db, baseLogger)
	feedRepo := gormrepo.NewFeedRepository(db)
	boardRepo := gormrepo.NewBoardRepository(db)
	noticeRepo := gormrepo.NewNoticeRepository(db, baseLogger)
	notificationRepo := gormrepo.NewNotificationRepository(db)
	eventRepo := gormrepo.NewEventRepository(db)

	// 6. Services
	tokens := security.NewTokenIssuer(
		secrets.JWTSecret,
		time.Duration(cfg.AuthConfig.TokenTTLHours)*time.Hour,
		cfg.AuthConfig.Issuer,
	)
	notificationSink := service.NewNotificationSink(notificationRepo, publisher, baseLogger)
	authService := service.NewAuthService(userRepo, security.NewBcryptHasher(0), tokens, fileStore, baseLogger)
	graphService := service.NewSocialGraphService(userRepo, followRepo, notificationSink, baseLogger)
	postService := service.NewPostService(postRepo, fileStore, notificationSink, baseLogger)
	feedService := service.NewFeedService(feedRepo, userRepo, baseLogger)
	boardService := service.NewBoardService(boardRepo, noticeRepo, fileStore, baseLogger)
	calendarService := service.NewCalendarService(eventRepo, baseLogger)
	notificationService := service.NewNotificationService(notificationRepo)

	// 7. Controllers
	maxUploadMB := cfg.StorageConfig.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = constant.DefaultMaxUploadMB
	}
	maxUploadBytes := int64(maxUploadMB) << 20
	ctrls := &router.Controllers{
		Auth:         controller.NewAuthController(authService, maxUploadBytes, baseLogger),
		Social:       controller.NewSocialController(graphService, baseLogger),
		Post:         controller.NewPostController(postService, feedService, maxUploadBytes, baseLogger),
		Board:        controller.NewBoardController(boardService, maxUploadBytes, baseLogger),
		Event:        controller.NewEventController(calendarService, baseLogger),
		Internal:     controller.NewInternalController(calendarService, authService, baseLogger),
		Notification: controller.NewNotificationController(notificationService, baseLogger),
		Uploads:      controller.NewUploadsController(fileStore, baseLogger),
	}
	opts := router.Options{
		Gates:             router.NewGates(tokens, authService, baseLogger),
		NotificationsRead: cfg.NotificationConfig.ReadEnabled,
	}
	if secrets.InternalAPIKey != "" {
		opts.InternalGate = middleware.InternalOnly(secrets.InternalAPIKey)
	}

	// 8. Kafka 消费者
	var consumers []*consumer.Consumer
	var consumerWg sync.WaitGroup
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	if kafkaProducer != nil {
		groupID := cfg.KafkaConfig.ConsumerGroupID
		if groupID == "" {
			groupID = constant.ServiceName + "-notifications"
		}
		notificationConsumer, err := consumer.NewConsumer(
			&cfg.KafkaConfig,
			groupID,
			cfg.KafkaConfig.Topics.Notifications,
			consumer.NewNotificationHandler(notificationRepo, baseLogger),
			logger,
		)
		if err != nil {
			logger.Fatal("初始化通知 Kafka 消费者失败", zap.Error(err))
		}
		consumers = append(consumers, notificationConsumer)
	}
	for _, c := range consumers {
		consumerWg.Add(1)
		go func(cons *consumer.Consumer) {
			defer consumerWg.Done()
			cons.Start(consumerCtx)
		}(c)
	}

	// 9. 定时任务
	var purgeTask *tasks.NotificationPurgeTask
	if cfg.NotificationConfig.RetentionDays > 0 {
		purgeTask, err = tasks.NewNotificationPurgeTask(
			notificationRepo,
			cfg.NotificationConfig.RetentionDays,
			cfg.NotificationConfig.PurgeCron,
			logger,
		)
		if err != nil {
			logger.Fatal("初始化通知清理任务失败", zap.Error(err))
		}
	} else {
		logger.Info("未配置通知保留天数，跳过清理任务")
	}

	// 10. 路由与 HTTP 服务器
	ginRouter := router.SetupRouter(logger, &cfg, ctrls, opts)
	serverAddr := fmt.Sprintf(":%s", cfg.ServerConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP 服务器开始监听", zap.String("address", serverAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
	}()

	// 11. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	logger.Info("收到关停信号，开始优雅退出...", zap.String("signal", receivedSignal.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭 HTTP 服务器失败", zap.Error(err))
	} else {
		logger.Info("HTTP 服务器已成功关闭")
	}

	consumerCancel()
	consumerWg.Wait()
	for _, c := range consumers {
		if err := c.Close(); err != nil {
			logger.Error("关闭 Kafka 消费者时出错", zap.Error(err))
		}
	}
	if err := notificationSink.Drain(shutdownCtx); err != nil {
		logger.Error("等待通知投递完成超时，剩余通知将丢失", zap.Error(err))
	}
	if kafkaProducer != nil {
		_ = kafkaProducer.Close()
	}

	if purgeTask != nil {
		select {
		case <-purgeTask.Stop().Done():
			logger.Info("通知清理任务已停止")
		case <-shutdownCtx.Done():
			logger.Error("等待定时任务停止超时", zap.Error(shutdownCtx.Err()))
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("服务已成功关闭")
}
