package service

import (
	"context"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/logger"
	"coursemart_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	globalDiscountCacheKey = "coursemart:global_discount:current"
	globalDiscountCacheTTL = 30 * time.Second
	noDiscountMarker       = "none"
)

// GlobalDiscountInput 后台创建/修改全站折扣
type GlobalDiscountInput struct {
	Title              string    `json:"title" binding:"required,max=200"`
	Description        string    `json:"description"`
	DiscountPercentage int       `json:"discountPercentage" binding:"min=0,max=100"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate" binding:"required"`
	ShowBanner         bool      `json:"showBanner"`
	BannerColor        string    `json:"bannerColor" binding:"max=20"`
}

// CourseDiscountInput 课程单独折扣
type CourseDiscountInput struct {
	DiscountPrice decimal.Decimal `json:"discountPrice" binding:"required"`
	StartDate     *time.Time      `json:"startDate"`
	EndDate       time.Time       `json:"endDate" binding:"required"`
}

// SyncResult 折扣状态同步结果
type SyncResult struct {
	CoursesUpdated int `json:"coursesUpdated"`
	GlobalUpdated  int `json:"globalUpdated"`
}

type DiscountService struct {
	Repo       *repository.DiscountRepository
	CourseRepo *repository.CourseRepository
	Redis      *redis.Client
	Now        func() time.Time
}

func NewDiscountService(repo *repository.DiscountRepository, courseRepo *repository.CourseRepository, rdb *redis.Client) *DiscountService {
	return &DiscountService{Repo: repo, CourseRepo: courseRepo, Redis: rdb, Now: time.Now}
}

// Current 当前生效的全站折扣，没有时返回 nil。结果缓存在 Redis 中。
func (s *DiscountService) Current(ctx context.Context) (*model.GlobalDiscount, error) {
	now := s.Now()

	if s.Redis != nil {
		raw, err := s.Redis.Get(ctx, globalDiscountCacheKey).Result()
		switch {
		case err == nil && raw == noDiscountMarker:
			return nil, nil
		case err == nil:
			var d model.GlobalDiscount
			if json.Unmarshal([]byte(raw), &d) == nil && d.IsCurrentlyActive(now) {
				return &d, nil
			}
		case err != redis.Nil:
			logger.Log.Warn("Redis get global discount failed", zap.Error(err))
		}
	}

	d, err := s.Repo.FindCurrent(now)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, d)
	return d, nil
}

func (s *DiscountService) cache(ctx context.Context, d *model.GlobalDiscount) {
	if s.Redis == nil {
		return
	}
	value := noDiscountMarker
	ttl := globalDiscountCacheTTL
	if d != nil {
		b, err := json.Marshal(d)
		if err != nil {
			return
		}
		value = string(b)
		// 不要缓存到折扣结束之后
		if remaining := d.EndDate.Sub(s.Now()); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return
	}
	if err := s.Redis.Set(ctx, globalDiscountCacheKey, value, ttl).Err(); err != nil {
		logger.Log.Warn("Redis set global discount failed", zap.Error(err))
	}
}

func (s *DiscountService) invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, globalDiscountCacheKey).Err(); err != nil {
		logger.Log.Warn("Redis del global discount failed", zap.Error(err))
	}
}

// Banner 需要展示横幅的当前全站折扣
func (s *DiscountService) Banner(ctx context.Context) (*model.GlobalDiscount, error) {
	d, err := s.Current(ctx)
	if err != nil || d == nil || !d.ShowBanner {
		return nil, err
	}
	return d, nil
}

func (s *DiscountService) List() ([]model.GlobalDiscount, error) {
	return s.Repo.List()
}

func (s *DiscountService) Get(id uint) (*model.GlobalDiscount, error) {
	d, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrDiscountNotFound
	}
	return d, err
}

func mapDiscountErr(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidPercentage):
		return util.ErrInvalidDiscount
	case errors.Is(err, model.ErrInvalidWindow):
		return util.ErrInvalidDiscountWin
	}
	return err
}

func (in *GlobalDiscountInput) apply(d *model.GlobalDiscount) {
	d.Title = in.Title
	d.Description = in.Description
	d.DiscountPercentage = in.DiscountPercentage
	d.StartDate = in.StartDate
	d.EndDate = in.EndDate
	d.ShowBanner = in.ShowBanner
	d.BannerColor = in.BannerColor
}

func (s *DiscountService) Create(ctx context.Context, in *GlobalDiscountInput) (*model.GlobalDiscount, error) {
	d := &model.GlobalDiscount{}
	in.apply(d)
	if err := s.Repo.Create(d); err != nil {
		return nil, mapDiscountErr(err)
	}
	s.invalidate(ctx)
	logger.Log.Info("Global discount created",
		zap.Uint("id", d.ID),
		zap.Int("percentage", d.DiscountPercentage),
		zap.Time("endDate", d.EndDate))
	return d, nil
}

func (s *DiscountService) Update(ctx context.Context, id uint, in *GlobalDiscountInput) (*model.GlobalDiscount, error) {
	d, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	in.apply(d)
	if err := s.Repo.Update(d); err != nil {
		return nil, mapDiscountErr(err)
	}
	s.invalidate(ctx)
	return d, nil
}

func (s *DiscountService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// EndNow 立即结束全站折扣
func (s *DiscountService) EndNow(ctx context.Context, id uint) (*model.GlobalDiscount, error) {
	d, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	end := s.Now().Add(-time.Second)
	if !d.StartDate.Before(end) {
		d.StartDate = end.Add(-time.Second)
	}
	d.EndDate = end
	if err := s.Repo.Update(d); err != nil {
		return nil, mapDiscountErr(err)
	}
	s.invalidate(ctx)
	logger.Log.Info("Global discount ended", zap.Uint("id", d.ID))
	return d, nil
}

// SetCourseDiscount 校验 0 <= 折扣价 <= 原价 且 开始 < 结束
func (s *DiscountService) SetCourseDiscount(courseID uint, in *CourseDiscountInput) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	if in.DiscountPrice.IsNegative() || in.DiscountPrice.GreaterThan(course.Price) {
		return nil, util.ErrInvalidDiscount
	}
	start := in.StartDate
	if start == nil {
		now := s.Now()
		start = &now
	}
	if !in.EndDate.After(*start) {
		return nil, util.ErrInvalidDiscountWin
	}

	end := in.EndDate
	course.DiscountPrice = decimal.NewNullDecimal(in.DiscountPrice.Round(2))
	course.DiscountStartDate = start
	course.DiscountEndDate = &end
	course.IsDiscountActive = course.HasActiveDiscount(s.Now())
	if err := s.CourseRepo.SetDiscount(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *DiscountService) ClearCourseDiscount(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	course.DiscountPrice = decimal.NullDecimal{}
	course.DiscountStartDate = nil
	course.DiscountEndDate = nil
	course.IsDiscountActive = false
	if err := s.CourseRepo.SetDiscount(course); err != nil {
		return nil, err
	}
	return course, nil
}

// Sync 按时间窗口刷新课程折扣和全站折扣的激活标志，只写发生变化的记录
func (s *DiscountService) Sync(ctx context.Context) (*SyncResult, error) {
	now := s.Now()
	result := &SyncResult{}

	courses, err := s.CourseRepo.WithDiscountWindow()
	if err != nil {
		return nil, err
	}
	for i := range courses {
		c := &courses[i]
		active := c.HasActiveDiscount(now)
		if active == c.IsDiscountActive {
			continue
		}
		if err := s.CourseRepo.SetDiscountActive(c.ID, active); err != nil {
			return nil, err
		}
		result.CoursesUpdated++
		logger.Log.Info("Course discount flag synced",
			zap.Uint("courseId", c.ID),
			zap.String("title", c.Title),
			zap.Bool("active", active))
	}

	discounts, err := s.Repo.List()
	if err != nil {
		return nil, err
	}
	for i := range discounts {
		d := &discounts[i]
		active := d.IsCurrentlyActive(now)
		if active == d.IsActive {
			continue
		}
		if err := s.Repo.SetActive(d.ID, active); err != nil {
			return nil, err
		}
		result.GlobalUpdated++
		logger.Log.Info("Global discount flag synced",
			zap.Uint("id", d.ID),
			zap.String("title", d.Title),
			zap.Bool("active", active))
	}

	if result.GlobalUpdated > 0 {
		s.invalidate(ctx)
	}
	monitoring.DiscountSyncUpdated.Add(float64(result.CoursesUpdated + result.GlobalUpdated))
	return result, nil
}

// AddSampleGlobalDiscount 已有生效中的全站折扣时返回它且不新建
func (s *DiscountService) AddSampleGlobalDiscount(ctx context.Context, days, percentage int) (d *model.GlobalDiscount, created bool, err error) {
	existing, err := s.Repo.FindCurrent(s.Now())
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	now := s.Now()
	d, err = s.Create(ctx, &GlobalDiscountInput{
		Title:              "Limited Time Offer!",
		Description:        fmt.Sprintf("Get %d%% off all courses", percentage),
		DiscountPercentage: percentage,
		StartDate:          now,
		EndDate:            now.AddDate(0, 0, days),
		ShowBanner:         true,
		BannerColor:        "orange",
	})
	return d, err == nil, err
}

// AddSampleCourseDiscounts 前三门已发布的付费课程打八折
func (s *DiscountService) AddSampleCourseDiscounts(days int) ([]model.Course, error) {
	courses, err := s.CourseRepo.Latest(3)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	end := now.AddDate(0, 0, days)
	eighty := decimal.RequireFromString("0.8")

	var updated []model.Course
	for _, c := range courses {
		if !c.Price.IsPositive() {
			continue
		}
		course, err := s.SetCourseDiscount(c.ID, &CourseDiscountInput{
			DiscountPrice: c.Price.Mul(eighty),
			StartDate:     &now,
			EndDate:       end,
		})
		if err != nil {
			return updated, err
		}
		updated = append(updated, *course)
	}
	return updated, nil
}
