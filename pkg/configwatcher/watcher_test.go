package configwatcher

import (
	"context"
	"coursemart_backend/internal/config"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfigReloadsReviewPolicy(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("storage:\n  type: minio\nreview:\n  auto_approve: true\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	go WatchConfig(ctx, file, func(cfg *config.Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	// 等待 watcher 就绪
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("storage:\n  type: minio\nreview:\n  auto_approve: false\n  helpful_threshold: 5\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.False(t, cfg.Review.AutoApprove)
		assert.Equal(t, 5, cfg.Review.HelpfulThreshold)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
