package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/campus_service/config"
	"github.com/Xushengqwer/campus_service/dependencies"
	"github.com/Xushengqwer/campus_service/repo/gormrepo"
	"github.com/Xushengqwer/campus_service/security"
	"github.com/Xushengqwer/campus_service/service"
)

func main() {
	var opts seedOptions
	var configFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "配置文件路径")
	flag.IntVar(&opts.Users, "users", 20, "生成的用户数量")
	flag.IntVar(&opts.Posts, "posts", 60, "生成的帖子数量")
	flag.IntVar(&opts.Boards, "boards", 4, "生成的公告板数量")
	flag.IntVar(&opts.Events, "events", 10, "当月生成的学术事件数量")
	flag.StringVar(&opts.Password, "password", "secret1", "所有种子用户的登录密码")
	flag.Int64Var(&opts.Seed, "seed", 0, "gofakeit 随机种子，0 表示随机")
	flag.Parse()

	if opts.Users < 2 || opts.Posts < 0 || opts.Boards < 0 || opts.Events < 0 {
		fmt.Println("错误: users 至少为 2，其余数量不能为负")
		os.Exit(1)
	}

	absConfigFile, err := filepath.Abs(configFile)
	if err != nil {
		absConfigFile = configFile
	}

	var cfg appConfig.CampusConfig
	if err := core.LoadConfig(absConfigFile, &cfg); err != nil {
		fmt.Printf("加载配置失败 (%s): %v\n", absConfigFile, err)
		os.Exit(1)
	}

	logger, loggerErr := core.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		fmt.Printf("初始化 ZapLogger 失败: %v\n", loggerErr)
		os.Exit(1)
	}
	defer func() { _ = logger.Logger().Sync() }()

	db, dbErr := dependencies.InitDatabase(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化数据库失败 (Seeder)", zap.Error(dbErr))
	}

	// 种子数据不带附件，不需要文件存储
	base := logger.Logger()
	userRepo := gormrepo.NewUserRepository(db, base)
	notifications := service.NewNotificationSink(gormrepo.NewNotificationRepository(db), nil, base)
	s := &seeder{
		auth:     service.NewAuthService(userRepo, security.NewBcryptHasher(0), nil, nil, base),
		graph:    service.NewSocialGraphService(userRepo, gormrepo.NewFollowRepository(db), notifications, base),
		posts:    service.NewPostService(gormrepo.NewPostRepository(db, base), nil, notifications, base),
		boards:   service.NewBoardService(gormrepo.NewBoardRepository(db), gormrepo.NewNoticeRepository(db, base), nil, base),
		calendar: service.NewCalendarService(gormrepo.NewEventRepository(db), base),
		logger:   logger,
	}

	startTime := time.Now()
	if err := s.Seed(context.Background(), opts); err != nil {
		logger.Fatal("数据填充失败", zap.Error(err))
	}
	fmt.Printf("数据填充完成！耗时: %v\n", time.Since(startTime))
}
