package database

import (
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/model"
	applog "coursemart_backend/pkg/logger"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models 参与自动迁移的全部模型，顺序即建表顺序
var Models = []interface{}{
	&model.User{},
	&model.UserProfile{},
	&model.Category{},
	&model.Course{},
	&model.Lesson{},
	&model.Enrollment{},
	&model.CourseProgress{},
	&model.Review{},
	&model.ReviewHelpfulVote{},
	&model.GlobalDiscount{},
	&model.PaymentMethod{},
	&model.Payment{},
	&model.PaymentSettings{},
	&model.SiteSettings{},
	&model.Banner{},
}

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=Local",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.Port,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		// DBName 为文件路径，":memory:" 为内存库
		return sqlite.Open(cfg.DBName), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// InitDB 建立连接；debug 模式下 gorm 打印全部 SQL
func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if mode == "debug" {
		level = logger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	applog.Log.Info("Database connection established", zap.String("driver", d.Name()))
	return db, nil
}

// Migrate 自动迁移并写入默认单例配置
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return err
	}
	applog.Log.Info("Database migration completed")
	return Seed(db)
}

// Seed 支付设置和站点设置不存在时写入默认值，已存在则不动
func Seed(db *gorm.DB) error {
	if err := db.FirstOrCreate(model.DefaultPaymentSettings(), model.PaymentSettings{ID: 1}).Error; err != nil {
		return err
	}
	return db.FirstOrCreate(model.DefaultSiteSettings(), model.SiteSettings{ID: 1}).Error
}

// OpenMemory 内存 SQLite，已迁移，供测试和本地试跑使用
func OpenMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// 内存库每个连接是独立的数据库
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
