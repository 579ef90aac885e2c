package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Review    ReviewConfig    `mapstructure:"review"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Mail      MailConfig      `mapstructure:"mail"`
	Log       LogConfig       `mapstructure:"log"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// ReviewConfig 评价审核策略，支持热更新
type ReviewConfig struct {
	AutoApprove      bool `mapstructure:"auto_approve"`
	HelpfulThreshold int  `mapstructure:"helpful_threshold"`
}

// LogConfig 日志级别为空时按 server.mode 决定；file 为空时只输出到控制台
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Console    bool   `mapstructure:"console"`
}

type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DiscountSync string `mapstructure:"discount_sync"`
}

type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromEmail      string `mapstructure:"from_email"`
	FromName       string `mapstructure:"from_name"`
	AdminEmail     string `mapstructure:"admin_email"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("jwt.expire_hours", 72)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("review.auto_approve", true)
	v.SetDefault("review.helpful_threshold", 3)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.discount_sync", "@every 1m")
	v.SetDefault("mail.from_name", "Course Marketplace")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.console", true)
}

func LoadConfig(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("COURSEMART")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Mail
	v.BindEnv("mail.sendgrid_api_key", "SENDGRID_API_KEY")
	v.BindEnv("mail.admin_email", "ADMIN_EMAIL")

	// Log
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.file", "LOG_FILE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Review.HelpfulThreshold <= 0 {
		cfg.Review.HelpfulThreshold = 3
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
