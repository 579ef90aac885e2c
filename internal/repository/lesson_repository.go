package repository

import (
	"coursemart_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

// FindInCourse 课时必须属于该课程
func (r *LessonRepository) FindInCourse(courseID, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error
	return &lesson, err
}

// FindByCourse 按 order 升序
func (r *LessonRepository) FindByCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).Order("sort_order ASC, id ASC").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *LessonRepository) NextOrder(courseID uint) (int, error) {
	var max int
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Select("COALESCE(MAX(sort_order), 0)").Scan(&max).Error
	return max + 1, err
}

func (r *LessonRepository) WithTx(tx *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: tx}
}
