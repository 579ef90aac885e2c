package repository

import (
	"coursemart_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

// Find 不区分是否有效
func (r *EnrollmentRepository) Find(studentID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) FindActive(studentID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ? AND is_active = ?", studentID, courseID, true).First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) IsEnrolled(studentID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ? AND is_active = ?", studentID, courseID, true).
		Count(&count).Error
	return count > 0, err
}

// Activate 获取或创建报名记录，已失效的重新激活。
// changed 为 true 表示新建或重新激活，调用方据此累加报名人数。
func (r *EnrollmentRepository) Activate(studentID, courseID uint, now time.Time) (e *model.Enrollment, changed bool, err error) {
	e, err = r.Find(studentID, courseID)
	if err == gorm.ErrRecordNotFound {
		e = &model.Enrollment{
			StudentID:  studentID,
			CourseID:   courseID,
			EnrolledAt: now,
			IsActive:   true,
		}
		return e, true, r.DB.Create(e).Error
	}
	if err != nil {
		return nil, false, err
	}
	if e.IsActive {
		return e, false, nil
	}
	e.IsActive = true
	e.EnrolledAt = now
	return e, true, r.DB.Model(e).Select("is_active", "enrolled_at").Updates(e).Error
}

func (r *EnrollmentRepository) MarkCompleted(id uint, at time.Time) error {
	return r.DB.Model(&model.Enrollment{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("completed_at", at).Error
}

// ListActiveByStudent 最近报名的在前
func (r *EnrollmentRepository) ListActiveByStudent(studentID uint, limit int) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	query := r.DB.Preload("Course").Preload("Course.Category").Preload("Course.Instructor").
		Where("student_id = ? AND is_active = ?", studentID, true).
		Order("enrolled_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) CountActiveByStudent(studentID uint) (total, completed int64, err error) {
	base := r.DB.Model(&model.Enrollment{}).Where("student_id = ? AND is_active = ?", studentID, true)
	if err = base.Count(&total).Error; err != nil {
		return
	}
	err = r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND is_active = ? AND completed_at IS NOT NULL", studentID, true).
		Count(&completed).Error
	return
}

// EnrolledCourseIDs 用于列表页批量标记已报名
func (r *EnrollmentRepository) EnrolledCourseIDs(studentID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND is_active = ?", studentID, true).
		Pluck("course_id", &ids).Error
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, err
}
