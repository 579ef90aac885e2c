package logger

import (
	"coursemart_backend/internal/config"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 在 InitLogger 之前是 Nop，测试和 CLI 可以直接使用
var Log = zap.NewNop()

func InitLogger(cfg *config.Config) {
	Log = New(cfg.Log, cfg.Server.Mode, os.Stdout)
}

// level 未配置或无法解析时，debug 模式用 Debug，其余用 Info
func level(cfg config.LogConfig, mode string) zapcore.Level {
	if lvl, err := zapcore.ParseLevel(cfg.Level); cfg.Level != "" && err == nil {
		return lvl
	}
	if mode == "debug" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// New 文件输出为 JSON 并按 lumberjack 轮转，控制台输出为文本
func New(cfg config.LogConfig, mode string, console io.Writer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	lvl := level(cfg, mode)

	var cores []zapcore.Core
	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, lvl))
	}
	if cfg.Console && console != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(console), lvl))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}
