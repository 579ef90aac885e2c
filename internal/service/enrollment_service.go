package service

import (
	"context"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/logger"
	"coursemart_backend/pkg/monitoring"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LessonProgress struct {
	model.Lesson
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type LearnPage struct {
	Course          *model.Course     `json:"course"`
	Enrollment      *model.Enrollment `json:"enrollment"`
	Lessons         []LessonProgress  `json:"lessons"`
	CompletedCount  int               `json:"completedLessons"`
	TotalLessons    int               `json:"totalLessons"`
	ProgressPercent int               `json:"progressPercentage"`
}

type LessonPage struct {
	Course   *model.Course         `json:"course"`
	Lesson   *model.Lesson         `json:"lesson"`
	Progress *model.CourseProgress `json:"progress"`
	Previous *model.Lesson         `json:"previousLesson,omitempty"`
	Next     *model.Lesson         `json:"nextLesson,omitempty"`
}

type CompletionResult struct {
	Completed       bool `json:"completed"`
	ProgressPercent int  `json:"progressPercentage"`
	CourseCompleted bool `json:"courseCompleted"`
}

type EnrolledCourse struct {
	model.Enrollment
	ProgressPercent int `json:"progressPercentage"`
}

// ProgressPercent 向下取整，没有课时为 0
func ProgressPercent(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(completed * 100 / total)
}

type EnrollmentService struct {
	DB             *gorm.DB
	Catalog        *CatalogService
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	LessonRepo     *repository.LessonRepository
	CourseRepo     *repository.CourseRepository
	Now            func() time.Time
}

func NewEnrollmentService(
	db *gorm.DB,
	catalog *CatalogService,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
) *EnrollmentService {
	return &EnrollmentService{
		DB:             db,
		Catalog:        catalog,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		LessonRepo:     lessonRepo,
		CourseRepo:     courseRepo,
		Now:            time.Now,
	}
}

// EnrollFree 仅当前价格为 0 的课程可以直接报名
func (s *EnrollmentService) EnrollFree(ctx context.Context, studentID uint, slug string) (*model.Enrollment, error) {
	course, err := s.Catalog.PublishedCourse(slug)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.EnrollmentRepo.IsEnrolled(studentID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, util.ErrAlreadyEnrolled
	}

	global, err := s.Catalog.Discounts.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !course.CurrentPrice(s.Now(), global).IsZero() {
		return nil, util.ErrPaidCourse
	}

	var enrollment *model.Enrollment
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		e, changed, err := s.EnrollmentRepo.WithTx(tx).Activate(studentID, course.ID, s.Now())
		if err != nil {
			return err
		}
		enrollment = e
		if changed {
			return s.CourseRepo.WithTx(tx).IncrementEnrolled(course.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	monitoring.EnrollmentsTotal.WithLabelValues("free").Inc()
	logger.Log.Info("Free enrollment", zap.Uint("studentId", studentID), zap.Uint("courseId", course.ID))
	return enrollment, nil
}

// activeEnrollment 课程已发布且学员报名有效
func (s *EnrollmentService) activeEnrollment(studentID uint, slug string) (*model.Course, *model.Enrollment, error) {
	course, err := s.Catalog.PublishedCourse(slug)
	if err != nil {
		return nil, nil, err
	}
	e, err := s.EnrollmentRepo.FindActive(studentID, course.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, util.ErrNotEnrolled
	}
	if err != nil {
		return nil, nil, err
	}
	return course, e, nil
}

func (s *EnrollmentService) Learn(studentID uint, slug string) (*LearnPage, error) {
	course, enrollment, err := s.activeEnrollment(studentID, slug)
	if err != nil {
		return nil, err
	}
	lessons, err := s.LessonRepo.FindByCourse(course.ID)
	if err != nil {
		return nil, err
	}

	page := &LearnPage{Course: course, Enrollment: enrollment, TotalLessons: len(lessons)}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		for i := range lessons {
			p, err := progressRepo.GetOrCreate(studentID, &lessons[i])
			if err != nil {
				return err
			}
			page.Lessons = append(page.Lessons, LessonProgress{
				Lesson:      lessons[i],
				Completed:   p.Completed,
				CompletedAt: p.CompletedAt,
			})
			if p.Completed {
				page.CompletedCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	page.ProgressPercent = ProgressPercent(int64(page.CompletedCount), int64(page.TotalLessons))
	return page, nil
}

func (s *EnrollmentService) Lesson(studentID uint, slug string, lessonID uint) (*LessonPage, error) {
	course, _, err := s.activeEnrollment(studentID, slug)
	if err != nil {
		return nil, err
	}
	lessons, err := s.LessonRepo.FindByCourse(course.ID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range lessons {
		if lessons[i].ID == lessonID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, util.ErrLessonNotFound
	}

	progress, err := s.ProgressRepo.GetOrCreate(studentID, &lessons[idx])
	if err != nil {
		return nil, err
	}
	page := &LessonPage{Course: course, Lesson: &lessons[idx], Progress: progress}
	if idx > 0 {
		page.Previous = &lessons[idx-1]
	}
	if idx < len(lessons)-1 {
		page.Next = &lessons[idx+1]
	}
	return page, nil
}

// CompleteLesson 幂等；全部课时完成后记录课程完成时间
func (s *EnrollmentService) CompleteLesson(studentID, lessonID uint) (*CompletionResult, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	enrollment, err := s.EnrollmentRepo.FindActive(studentID, lesson.CourseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{Completed: true}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		p, err := progressRepo.GetOrCreate(studentID, lesson)
		if err != nil {
			return err
		}
		now := s.Now()
		if err := progressRepo.MarkComplete(p, now); err != nil {
			return err
		}

		done, err := progressRepo.CountCompleted(studentID, lesson.CourseID)
		if err != nil {
			return err
		}
		total, err := s.LessonRepo.WithTx(tx).CountByCourse(lesson.CourseID)
		if err != nil {
			return err
		}
		result.ProgressPercent = ProgressPercent(done, total)
		if total > 0 && done >= total {
			result.CourseCompleted = true
			if enrollment.CompletedAt == nil {
				return s.EnrollmentRepo.WithTx(tx).MarkCompleted(enrollment.ID, now)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *EnrollmentService) MyCourses(studentID uint) ([]EnrolledCourse, error) {
	enrollments, err := s.EnrollmentRepo.ListActiveByStudent(studentID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		done, err := s.ProgressRepo.CountCompleted(studentID, e.CourseID)
		if err != nil {
			return nil, err
		}
		total, err := s.LessonRepo.CountByCourse(e.CourseID)
		if err != nil {
			return nil, err
		}
		out = append(out, EnrolledCourse{Enrollment: e, ProgressPercent: ProgressPercent(done, total)})
	}
	return out, nil
}
