package service

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/pkg/logger"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SchedulerService 定时同步折扣状态
type SchedulerService struct {
	cron      *cron.Cron
	discounts *DiscountService
	timeout   time.Duration
}

func NewSchedulerService(cfg *config.SchedulerConfig, discounts *DiscountService) (*SchedulerService, error) {
	s := &SchedulerService{
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		discounts: discounts,
		timeout:   30 * time.Second,
	}
	spec := cfg.DiscountSync
	if spec == "" {
		spec = "@every 1m"
	}
	if _, err := s.cron.AddFunc(spec, s.SyncDiscounts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SchedulerService) SyncDiscounts() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.discounts.Sync(ctx)
	if err != nil {
		logger.Log.Error("Discount sync failed", zap.Error(err))
		return
	}
	if result.CoursesUpdated > 0 || result.GlobalUpdated > 0 {
		logger.Log.Info("Discount flags synced",
			zap.Int("courses", result.CoursesUpdated),
			zap.Int("global", result.GlobalUpdated))
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
	logger.Log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop 等待正在执行的任务结束
func (s *SchedulerService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Log.Warn("Scheduler stop timed out")
	}
}
