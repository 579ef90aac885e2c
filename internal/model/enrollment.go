package model

import "time"

// swagger:model Enrollment
type Enrollment struct {
	RecordBase
	StudentID   uint       `gorm:"uniqueIndex:idx_enrollment_student_course;not null" json:"studentId"`
	Student     User       `gorm:"foreignKey:StudentID" json:"-"`
	CourseID    uint       `gorm:"uniqueIndex:idx_enrollment_student_course;not null" json:"courseId"`
	Course      Course     `gorm:"foreignKey:CourseID" json:"course"`
	EnrolledAt  time.Time  `gorm:"not null" json:"enrolledAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	IsActive    bool       `gorm:"index" json:"isActive"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// swagger:model CourseProgress
type CourseProgress struct {
	RecordBase
	StudentID   uint       `gorm:"uniqueIndex:idx_progress_student_lesson;not null" json:"studentId"`
	LessonID    uint       `gorm:"uniqueIndex:idx_progress_student_lesson;not null" json:"lessonId"`
	CourseID    uint       `gorm:"index;not null" json:"courseId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}
