package dependencies

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	appConfig "github.com/Xushengqwer/campus_service/config"
	"github.com/Xushengqwer/campus_service/models/entities"
)

// 支持的数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// dialectorFor 根据驱动名构造 gorm 方言，driver 为空时按 MySQL 处理
func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "", DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres, "postgresql":
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("不支持的数据库驱动: %s", driver)
}

// newGormConfig 所有连接共用的 gorm 配置。
// TranslateError 让唯一约束冲突统一表现为 gorm.ErrDuplicatedKey；时间统一存为 UTC。
func newGormConfig(l gormlogger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:         l,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// OpenSQLite 打开 SQLite 数据库并完成迁移，用于本地开发与测试。
// dsn 需要带上 _fk=1 以启用外键级联。
func OpenSQLite(dsn string, l gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), newGormConfig(l))
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite 单写者，限制为一个连接避免 database is locked
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate 迁移全部实体
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Follow{},
		&entities.Post{},
		&entities.PostLike{},
		&entities.Comment{},
		&entities.Notification{},
		&entities.NoticeBoard{},
		&entities.BoardMember{},
		&entities.Notice{},
		&entities.Event{},
	)
	if err != nil {
		return fmt.Errorf("数据库自动迁移失败: %w", err)
	}
	return nil
}

// InitDatabase 初始化数据库连接，并配置读写分离 (如果配置了从库)
func InitDatabase(cfg *appConfig.CampusConfig, logger *core.ZapLogger) (*gorm.DB, error) {
	dbCfg := cfg.DatabaseConfig

	if dbCfg.Write.DSN == "" {
		return nil, fmt.Errorf("主数据库 DSN (databaseConfig.write.dsn) 未配置")
	}
	writeDialector, err := dialectorFor(dbCfg.Driver, dbCfg.Write.DSN)
	if err != nil {
		return nil, err
	}
	gormConfig := newGormConfig(core.NewGormLogger(logger, cfg.GormLogConfig))

	var db *gorm.DB
	maxRetries := 5
	retryInterval := 2 * time.Second

	// 重试连接主库
	logger.Info("开始连接主数据库...", zap.String("driver", dbCfg.Driver))
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(writeDialector, gormConfig)
		if err == nil {
			var sqlDB *sql.DB
			sqlDB, err = db.DB()
			if err == nil {
				if err = sqlDB.Ping(); err == nil {
					break
				}
			}
		}
		logger.Warn("无法连接到主数据库，尝试重试", zap.Int("retry", i+1), zap.Int("maxRetries", maxRetries), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}
	if err != nil {
		logger.Error("无法连接到主数据库", zap.Error(err))
		return nil, fmt.Errorf("无法连接到主数据库: %w", err)
	}
	logger.Info("成功连接到主数据库")

	// --- 读写分离 (dbresolver) ---
	replicas := make([]gorm.Dialector, 0, len(dbCfg.Read))
	for i, replicaCfg := range dbCfg.Read {
		if replicaCfg.DSN == "" {
			logger.Warn("发现空的从库 DSN 配置，已跳过", zap.Int("index", i))
			continue
		}
		d, dErr := dialectorFor(dbCfg.Driver, replicaCfg.DSN)
		if dErr != nil {
			return nil, dErr
		}
		replicas = append(replicas, d)
	}
	if len(replicas) > 0 {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Sources:  []gorm.Dialector{writeDialector},
			Replicas: replicas,
			Policy:   dbresolver.StrictRoundRobinPolicy(),
		}))
		if err != nil {
			logger.Error("配置 GORM 读写分离插件失败", zap.Error(err))
			return nil, fmt.Errorf("配置 GORM 读写分离失败: %w", err)
		}
		logger.Info("成功配置 GORM 读写分离插件", zap.Int("从库数量", len(replicas)))
	} else {
		logger.Info("未配置有效的从数据库，不启用读写分离")
	}

	// --- 连接池 ---
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("无法获取数据库对象: %w", err)
	}
	maxIdle := dbCfg.SharedMaxIdleConns
	maxOpen := dbCfg.SharedMaxOpenConns
	maxLife := dbCfg.SharedConnMaxLifetime
	if dbCfg.Write.MaxIdleConns != nil {
		maxIdle = *dbCfg.Write.MaxIdleConns
	}
	if dbCfg.Write.MaxOpenConns != nil {
		maxOpen = *dbCfg.Write.MaxOpenConns
	}
	if dbCfg.Write.ConnMaxLifetime != nil {
		maxLife = *dbCfg.Write.ConnMaxLifetime
	}
	if strings.EqualFold(dbCfg.Driver, DriverSQLite) {
		maxOpen = 1
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(maxLife) * time.Second)
	logger.Info("配置数据库连接池",
		zap.Int("最大空闲连接数", maxIdle),
		zap.Int("最大打开连接数", maxOpen),
		zap.Int("连接最大生命周期(秒)", maxLife),
	)

	// AutoMigrate 默认发送到主库 (Source)
	logger.Info("开始执行数据库自动迁移...")
	if err := AutoMigrate(db); err != nil {
		logger.Error("数据库自动迁移失败", zap.Error(err))
		return nil, err
	}
	logger.Info("数据库初始化完成")
	return db, nil
}
