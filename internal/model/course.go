package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// swagger:model Category
type Category struct {
	BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Category) TableName() string {
	return "categories"
}

// swagger:model Course
type Course struct {
	BaseModel
	Title            string     `gorm:"size:200;not null" json:"title"`
	Slug             string     `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description      string     `gorm:"type:text" json:"description"`
	ShortDescription string     `gorm:"size:300" json:"shortDescription"`
	CategoryID       uint       `gorm:"index;not null" json:"categoryId"`
	Category         Category   `gorm:"foreignKey:CategoryID" json:"category"`
	InstructorID     uint       `gorm:"index;not null" json:"instructorId"`
	Instructor       User       `gorm:"foreignKey:InstructorID" json:"instructor"`
	Duration         string     `gorm:"size:50" json:"duration"`
	Difficulty       Difficulty `gorm:"size:20;not null;default:'beginner'" json:"difficulty"`
	Language         string     `gorm:"size:50;default:'English'" json:"language"`

	Thumbnail  string `gorm:"size:255" json:"thumbnail"`
	VideoIntro string `gorm:"size:255" json:"videoIntro"`

	WhatYouWillLearn string `gorm:"type:text" json:"whatYouWillLearn"`
	Requirements     string `gorm:"type:text" json:"requirements"`
	TargetAudience   string `gorm:"type:text" json:"targetAudience"`

	StudentsEnrolled int             `gorm:"not null;default:0" json:"studentsEnrolled"`
	Rating           decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	TotalRatings     int             `gorm:"not null;default:0" json:"totalRatings"`

	IsPublished bool       `gorm:"index" json:"isPublished"`
	IsFeatured  bool       `json:"isFeatured"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	Price             decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPrice     decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"discountPrice"`
	DiscountStartDate *time.Time          `json:"discountStartDate,omitempty"`
	DiscountEndDate   *time.Time          `json:"discountEndDate,omitempty"`
	IsDiscountActive  bool                `json:"isDiscountActive"`

	Lessons []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// BeforeSave 首次以发布状态保存时记录发布时间
func (c *Course) BeforeSave(tx *gorm.DB) error {
	if c.IsPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}
	return nil
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	VideoURL    string `gorm:"size:255" json:"videoUrl"`
	Duration    int    `gorm:"not null;default:0" json:"duration"` // 分钟
	Order       int    `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsFree      bool   `json:"isFree"`
}

func (Lesson) TableName() string {
	return "lessons"
}
