package configwatcher

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/pkg/logger"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type ConfigReloader func(cfg *config.Config)

const debounce = time.Second

// WatchConfig 监听配置文件，写入后防抖 1s 重新加载并回调，ctx 取消后退出
func WatchConfig(ctx context.Context, configFile string, reloader ConfigReloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(configFile)
	if err != nil {
		return err
	}

	// 监听目录，编辑器替换文件时 inode 会变化
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(debounce)
			}
		case <-pending:
			pending = nil
			newCfg, err := config.LoadConfig(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("file", absPath))
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
