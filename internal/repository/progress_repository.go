package repository

import (
	"coursemart_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) GetOrCreate(studentID uint, lesson *model.Lesson) (*model.CourseProgress, error) {
	p := model.CourseProgress{StudentID: studentID, LessonID: lesson.ID, CourseID: lesson.CourseID}
	err := r.DB.Where(model.CourseProgress{StudentID: studentID, LessonID: lesson.ID}).
		Attrs(model.CourseProgress{CourseID: lesson.CourseID}).
		FirstOrCreate(&p).Error
	return &p, err
}

// MarkComplete 已完成的不重复写入完成时间
func (r *ProgressRepository) MarkComplete(p *model.CourseProgress, now time.Time) error {
	if p.Completed {
		return nil
	}
	p.Completed = true
	p.CompletedAt = &now
	return r.DB.Model(p).Select("completed", "completed_at").Updates(p).Error
}

// ListByCourse 以 lesson_id 为键
func (r *ProgressRepository) ListByCourse(studentID, courseID uint) (map[uint]model.CourseProgress, error) {
	var rows []model.CourseProgress
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).Find(&rows).Error
	out := make(map[uint]model.CourseProgress, len(rows))
	for _, p := range rows {
		out[p.LessonID] = p
	}
	return out, err
}

// CountCompleted 只统计课程中仍存在的课时
func (r *ProgressRepository) CountCompleted(studentID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseProgress{}).
		Joins("JOIN lessons ON lessons.id = course_progress.lesson_id AND lessons.deleted_at IS NULL").
		Where("course_progress.student_id = ? AND course_progress.course_id = ? AND course_progress.completed = ?", studentID, courseID, true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CountCompletedByStudent(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseProgress{}).
		Where("student_id = ? AND completed = ?", studentID, true).
		Count(&count).Error
	return count, err
}
