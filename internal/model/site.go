package model

import (
	"time"

	"gorm.io/datatypes"
)

// SiteSettings 站点展示信息，单例 ID=1
// swagger:model SiteSettings
type SiteSettings struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	SiteName        string            `gorm:"size:100" json:"siteName"`
	SiteTagline     string            `gorm:"size:200" json:"siteTagline"`
	FooterText      string            `gorm:"size:255" json:"footerText"`
	ContactEmail    string            `gorm:"size:100" json:"contactEmail"`
	ContactPhone    string            `gorm:"size:50" json:"contactPhone"`
	MetaDescription string            `gorm:"type:text" json:"metaDescription"`
	MetaKeywords    string            `gorm:"size:255" json:"metaKeywords"`
	SocialLinks     datatypes.JSONMap `json:"socialLinks"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func (SiteSettings) TableName() string {
	return "site_settings"
}

func DefaultSiteSettings() *SiteSettings {
	return &SiteSettings{
		ID:              1,
		SiteName:        "AI Course Platform",
		SiteTagline:     "Learn AI & Machine Learning",
		FooterText:      "© 2024 AI Course Platform. All rights reserved.",
		ContactEmail:    "contact@aicourseplatform.com",
		ContactPhone:    "+1 (555) 123-4567",
		MetaDescription: "Learn AI and Machine Learning with our comprehensive online courses. Expert-led tutorials, hands-on projects, and flexible learning paths.",
		MetaKeywords:    "AI, Machine Learning, Python, Data Science, Online Courses",
		SocialLinks:     datatypes.JSONMap{},
	}
}

// swagger:model Banner
type Banner struct {
	BaseModel
	Title        string     `gorm:"size:200;not null" json:"title"`
	Subtitle     string     `gorm:"size:300" json:"subtitle"`
	Image        string     `gorm:"size:255" json:"image"`
	Link         string     `gorm:"size:255" json:"link"`
	ButtonText   string     `gorm:"size:50" json:"buttonText"`
	IsActive     bool       `gorm:"index" json:"isActive"`
	DisplayOrder int        `gorm:"not null;default:0" json:"displayOrder"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

func (Banner) TableName() string {
	return "banners"
}

// IsVisible 启用且在展示窗口内，窗口两端可为空
func (b *Banner) IsVisible(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartDate != nil && now.Before(*b.StartDate) {
		return false
	}
	if b.EndDate != nil && now.After(*b.EndDate) {
		return false
	}
	return true
}
