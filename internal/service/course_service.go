package service

import (
	"context"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/logger"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseInput struct {
	Title            string           `json:"title" binding:"required,max=200"`
	Slug             string           `json:"slug" binding:"omitempty,slug,max=220"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"shortDescription" binding:"max=300"`
	CategoryID       uint             `json:"categoryId" binding:"required"`
	InstructorID     uint             `json:"instructorId"`
	Duration         string           `json:"duration" binding:"max=50"`
	Difficulty       model.Difficulty `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Language         string           `json:"language" binding:"max=50"`
	VideoIntro       string           `json:"videoIntro" binding:"max=255"`
	WhatYouWillLearn string           `json:"whatYouWillLearn"`
	Requirements     string           `json:"requirements"`
	TargetAudience   string           `json:"targetAudience"`
	Price            decimal.Decimal  `json:"price"`
	IsPublished      bool             `json:"isPublished"`
	IsFeatured       bool             `json:"isFeatured"`
}

type LessonInput struct {
	Title       string `json:"title" form:"title" binding:"required,max=200"`
	Description string `json:"description" form:"description"`
	VideoURL    string `json:"videoUrl" form:"videoUrl" binding:"max=255"`
	Duration    int    `json:"duration" form:"duration" binding:"min=0"`
	Order       int    `json:"order" form:"order" binding:"min=0"`
	IsFree      bool   `json:"isFree" form:"isFree"`
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

const (
	BulkPublish   = "publish"
	BulkUnpublish = "unpublish"
	BulkFeature   = "feature"
	BulkUnfeature = "unfeature"
)

var bulkActions = map[string]map[string]interface{}{
	BulkPublish:   {"is_published": true},
	BulkUnpublish: {"is_published": false},
	BulkFeature:   {"is_featured": true},
	BulkUnfeature: {"is_featured": false},
}

// CourseService 后台课程、课时、分类管理
type CourseService struct {
	CourseRepo   *repository.CourseRepository
	CategoryRepo *repository.CategoryRepository
	LessonRepo   *repository.LessonRepository
	Media        *MediaService
	Storage      *StorageService
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	categoryRepo *repository.CategoryRepository,
	lessonRepo *repository.LessonRepository,
	media *MediaService,
	storage *StorageService,
) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		CategoryRepo: categoryRepo,
		LessonRepo:   lessonRepo,
		Media:        media,
		Storage:      storage,
	}
}

// uniqueSlug 显式指定的 slug 冲突时报错，自动生成的追加序号
func (s *CourseService) uniqueSlug(requested, title string, excludeID uint) (string, error) {
	if requested != "" {
		taken, err := s.CourseRepo.SlugExists(requested, excludeID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", util.ErrSlugTaken
		}
		return requested, nil
	}

	base := util.Slugify(title)
	if base == "" {
		base = "course"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.CourseRepo.SlugExists(slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (in *CourseInput) apply(c *model.Course) {
	c.Title = in.Title
	c.Description = in.Description
	c.ShortDescription = in.ShortDescription
	c.CategoryID = in.CategoryID
	c.Duration = in.Duration
	c.Difficulty = in.Difficulty
	if c.Difficulty == "" {
		c.Difficulty = model.Beginner
	}
	c.Language = in.Language
	if c.Language == "" {
		c.Language = "English"
	}
	c.VideoIntro = in.VideoIntro
	c.WhatYouWillLearn = in.WhatYouWillLearn
	c.Requirements = in.Requirements
	c.TargetAudience = in.TargetAudience
	c.Price = in.Price.Round(2)
	c.IsPublished = in.IsPublished
	c.IsFeatured = in.IsFeatured
}

func (s *CourseService) validate(in *CourseInput) error {
	if in.Price.IsNegative() {
		return util.ErrInvalidPrice
	}
	if _, err := s.CategoryRepo.FindByID(in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *CourseService) Get(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

// AdminList 包含未发布课程
func (s *CourseService) AdminList(f repository.CourseFilter, page, limit int) ([]model.Course, int64, error) {
	f.PublishedOnly = false
	return s.CourseRepo.List(f, page, limit)
}

func (s *CourseService) Create(in *CourseInput, instructorID uint) (*model.Course, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(in.Slug, in.Title, 0)
	if err != nil {
		return nil, err
	}

	course := &model.Course{Slug: slug, InstructorID: instructorID}
	if in.InstructorID > 0 {
		course.InstructorID = in.InstructorID
	}
	in.apply(course)
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	logger.Log.Info("Course created", zap.Uint("id", course.ID), zap.String("slug", course.Slug))
	return course, nil
}

func (s *CourseService) Update(id uint, in *CourseInput) (*model.Course, error) {
	course, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}
	if in.Slug != "" && in.Slug != course.Slug {
		if course.Slug, err = s.uniqueSlug(in.Slug, in.Title, course.ID); err != nil {
			return nil, err
		}
	}
	if in.InstructorID > 0 {
		course.InstructorID = in.InstructorID
	}
	in.apply(course)
	// 原价下调后折扣价可能高于原价，此时折扣自动失效（见 HasActiveDiscount）
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *CourseService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.CourseRepo.Delete(id)
}

func (s *CourseService) Bulk(action string, ids []uint) (int64, error) {
	values, ok := bulkActions[action]
	if !ok {
		return 0, fmt.Errorf("unknown bulk action %q", action)
	}
	if action == BulkPublish {
		// 逐条保存以触发发布时间钩子
		var n int64
		for _, id := range ids {
			course, err := s.CourseRepo.FindByID(id)
			if err != nil {
				continue
			}
			course.IsPublished = true
			if err := s.CourseRepo.Update(course); err != nil {
				return n, err
			}
			n++
		}
		return n, nil
	}
	return s.CourseRepo.BulkUpdate(ids, values)
}

func (s *CourseService) UploadThumbnail(ctx context.Context, id uint, fh *multipart.FileHeader) (*model.Course, error) {
	course, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	url, err := s.Media.UploadThumbnail(ctx, fh)
	if err != nil {
		return nil, err
	}
	old := course.Thumbnail
	course.Thumbnail = url
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	if err := s.Storage.DeleteURL(ctx, old); err != nil {
		logger.Log.Warn("Failed to delete old thumbnail", zap.String("url", old), zap.Error(err))
	}
	return course, nil
}

func (s *CourseService) Lessons(courseID uint) ([]model.Lesson, error) {
	if _, err := s.Get(courseID); err != nil {
		return nil, err
	}
	return s.LessonRepo.FindByCourse(courseID)
}

// CreateLesson video 不为空时上传并以探测到的时长覆盖 duration
func (s *CourseService) CreateLesson(ctx context.Context, courseID uint, in *LessonInput, video *multipart.FileHeader) (*model.Lesson, error) {
	if _, err := s.Get(courseID); err != nil {
		return nil, err
	}
	lesson := &model.Lesson{CourseID: courseID}
	in.apply(lesson)
	if lesson.Order == 0 {
		next, err := s.LessonRepo.NextOrder(courseID)
		if err != nil {
			return nil, err
		}
		lesson.Order = next
	}
	if err := s.attachVideo(ctx, lesson, video); err != nil {
		return nil, err
	}
	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(ctx context.Context, courseID, lessonID uint, in *LessonInput, video *multipart.FileHeader) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindInCourse(courseID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	in.apply(lesson)
	if err := s.attachVideo(ctx, lesson, video); err != nil {
		return nil, err
	}
	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) DeleteLesson(courseID, lessonID uint) error {
	if _, err := s.LessonRepo.FindInCourse(courseID, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrLessonNotFound
		}
		return err
	}
	return s.LessonRepo.Delete(lessonID)
}

func (s *CourseService) attachVideo(ctx context.Context, lesson *model.Lesson, video *multipart.FileHeader) error {
	if video == nil {
		return nil
	}
	url, minutes, err := s.Media.UploadLessonVideo(ctx, video)
	if err != nil {
		return err
	}
	lesson.VideoURL = url
	if minutes > 0 {
		lesson.Duration = minutes
	}
	return nil
}

func (in *LessonInput) apply(l *model.Lesson) {
	l.Title = in.Title
	l.Description = in.Description
	if in.VideoURL != "" {
		l.VideoURL = in.VideoURL
	}
	l.Duration = in.Duration
	l.Order = in.Order
	l.IsFree = in.IsFree
}

func (s *CourseService) CreateCategory(in *CategoryInput) (*model.Category, error) {
	c := &model.Category{Name: in.Name, Description: in.Description}
	return c, s.CategoryRepo.Create(c)
}

func (s *CourseService) UpdateCategory(id uint, in *CategoryInput) (*model.Category, error) {
	c, err := s.CategoryRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Description = in.Description
	return c, s.CategoryRepo.Update(c)
}

// DeleteCategory 仍有课程的分类不能删除
func (s *CourseService) DeleteCategory(id uint) error {
	if _, err := s.CategoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCategoryNotFound
		}
		return err
	}
	n, err := s.CategoryRepo.CountCourses(id)
	if err != nil {
		return err
	}
	if n > 0 {
		return util.ErrCategoryInUse
	}
	return s.CategoryRepo.Delete(id)
}
