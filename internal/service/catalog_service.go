package service

import (
	"context"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	homeFeaturedLimit   = 6
	homeLatestLimit     = 6
	homeCategoryLimit   = 8
	detailReviewLimit   = 5
	relatedCoursesLimit = 4
)

// CourseCard 课程及其当前价格
type CourseCard struct {
	model.Course
	Pricing    model.PriceView `json:"pricing"`
	IsEnrolled bool            `json:"isEnrolled"`
}

type HomePage struct {
	Featured       []CourseCard          `json:"featuredCourses"`
	Latest         []CourseCard          `json:"latestCourses"`
	Categories     []model.Category      `json:"categories"`
	GlobalDiscount *model.GlobalDiscount `json:"globalDiscount,omitempty"`
}

type CourseDetail struct {
	CourseCard
	Lessons        []model.Lesson        `json:"lessons"`
	Reviews        []model.Review        `json:"reviews"`
	Related        []CourseCard          `json:"relatedCourses"`
	PaymentMethods []model.PaymentMethod `json:"paymentMethods"`
	PendingPayment *model.Payment        `json:"pendingPayment,omitempty"`
}

// LazyPage 无限滚动
type LazyPage struct {
	Courses []CourseCard `json:"courses"`
	HasNext bool         `json:"hasNext"`
	Page    int          `json:"page"`
}

type CatalogService struct {
	CourseRepo     *repository.CourseRepository
	CategoryRepo   *repository.CategoryRepository
	LessonRepo     *repository.LessonRepository
	ReviewRepo     *repository.ReviewRepository
	EnrollmentRepo *repository.EnrollmentRepository
	PaymentRepo    *repository.PaymentRepository
	MethodRepo     *repository.PaymentMethodRepository
	Discounts      *DiscountService
	Now            func() time.Time
}

func NewCatalogService(
	courseRepo *repository.CourseRepository,
	categoryRepo *repository.CategoryRepository,
	lessonRepo *repository.LessonRepository,
	reviewRepo *repository.ReviewRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	paymentRepo *repository.PaymentRepository,
	methodRepo *repository.PaymentMethodRepository,
	discounts *DiscountService,
) *CatalogService {
	return &CatalogService{
		CourseRepo:     courseRepo,
		CategoryRepo:   categoryRepo,
		LessonRepo:     lessonRepo,
		ReviewRepo:     reviewRepo,
		EnrollmentRepo: enrollmentRepo,
		PaymentRepo:    paymentRepo,
		MethodRepo:     methodRepo,
		Discounts:      discounts,
		Now:            time.Now,
	}
}

// cards 批量计算价格，userID 为 0 时不查询报名状态
func (s *CatalogService) cards(courses []model.Course, global *model.GlobalDiscount, userID uint) ([]CourseCard, error) {
	enrolled := map[uint]bool{}
	if userID > 0 && len(courses) > 0 {
		var err error
		if enrolled, err = s.EnrollmentRepo.EnrolledCourseIDs(userID); err != nil {
			return nil, err
		}
	}

	now := s.Now()
	out := make([]CourseCard, 0, len(courses))
	for i := range courses {
		out = append(out, CourseCard{
			Course:     courses[i],
			Pricing:    courses[i].PriceView(now, global),
			IsEnrolled: enrolled[courses[i].ID],
		})
	}
	return out, nil
}

func (s *CatalogService) Home(ctx context.Context, userID uint) (*HomePage, error) {
	global, err := s.Discounts.Current(ctx)
	if err != nil {
		return nil, err
	}

	featured, err := s.CourseRepo.Featured(homeFeaturedLimit)
	if err != nil {
		return nil, err
	}
	latest, err := s.CourseRepo.Latest(homeLatestLimit)
	if err != nil {
		return nil, err
	}
	categories, err := s.CategoryRepo.List(homeCategoryLimit)
	if err != nil {
		return nil, err
	}

	page := &HomePage{Categories: categories, GlobalDiscount: global}
	if page.Featured, err = s.cards(featured, global, userID); err != nil {
		return nil, err
	}
	if page.Latest, err = s.cards(latest, global, userID); err != nil {
		return nil, err
	}
	return page, nil
}

// List 公开课程列表，只含已发布课程
func (s *CatalogService) List(ctx context.Context, f repository.CourseFilter, page, limit int, userID uint) (*util.PageResponse, error) {
	f.PublishedOnly = true
	courses, total, err := s.CourseRepo.List(f, page, limit)
	if err != nil {
		return nil, err
	}
	global, err := s.Discounts.Current(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards(courses, global, userID)
	if err != nil {
		return nil, err
	}
	resp := util.NewPage(cards, total, page, limit)
	return &resp, nil
}

func (s *CatalogService) LazyLoad(ctx context.Context, f repository.CourseFilter, page int, userID uint) (*LazyPage, error) {
	resp, err := s.List(ctx, f, page, util.CoursesPerPage, userID)
	if err != nil {
		return nil, err
	}
	return &LazyPage{Courses: resp.List.([]CourseCard), HasNext: resp.HasNext, Page: page}, nil
}

func (s *CatalogService) CategoryCourses(ctx context.Context, categoryID uint, page int, userID uint) (*model.Category, *util.PageResponse, error) {
	category, err := s.CategoryRepo.FindByID(categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, util.ErrCategoryNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.List(ctx, repository.CourseFilter{CategoryID: categoryID}, page, util.CoursesPerPage, userID)
	return category, resp, err
}

func (s *CatalogService) Categories() ([]model.Category, error) {
	return s.CategoryRepo.List(0)
}

// PublishedCourse 按 slug 查找已发布课程
func (s *CatalogService) PublishedCourse(slug string) (*model.Course, error) {
	course, err := s.CourseRepo.FindBySlug(slug, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

func (s *CatalogService) Detail(ctx context.Context, slug string, userID uint) (*CourseDetail, error) {
	course, err := s.PublishedCourse(slug)
	if err != nil {
		return nil, err
	}
	global, err := s.Discounts.Current(ctx)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{
		CourseCard: CourseCard{Course: *course, Pricing: course.PriceView(s.Now(), global)},
	}
	if detail.Lessons, err = s.LessonRepo.FindByCourse(course.ID); err != nil {
		return nil, err
	}
	if detail.Reviews, err = s.ReviewRepo.Latest(course.ID, detailReviewLimit); err != nil {
		return nil, err
	}
	related, err := s.CourseRepo.Related(course, relatedCoursesLimit)
	if err != nil {
		return nil, err
	}
	if detail.Related, err = s.cards(related, global, 0); err != nil {
		return nil, err
	}
	if detail.PaymentMethods, err = s.MethodRepo.ListActive(); err != nil {
		return nil, err
	}

	if userID > 0 {
		if detail.IsEnrolled, err = s.EnrollmentRepo.IsEnrolled(userID, course.ID); err != nil {
			return nil, err
		}
		pending, err := s.PaymentRepo.FindPending(userID, course.ID)
		if err == nil {
			detail.PendingPayment = pending
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return detail, nil
}
