package service

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SiteSettingsInput struct {
	SiteName        string                 `json:"siteName" binding:"required,max=100"`
	SiteTagline     string                 `json:"siteTagline" binding:"max=200"`
	FooterText      string                 `json:"footerText" binding:"max=255"`
	ContactEmail    string                 `json:"contactEmail" binding:"omitempty,email,max=100"`
	ContactPhone    string                 `json:"contactPhone" binding:"max=50"`
	MetaDescription string                 `json:"metaDescription"`
	MetaKeywords    string                 `json:"metaKeywords" binding:"max=255"`
	SocialLinks     map[string]interface{} `json:"socialLinks"`
}

type BannerInput struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Subtitle     string     `json:"subtitle" binding:"max=300"`
	Image        string     `json:"image" binding:"max=255"`
	Link         string     `json:"link" binding:"max=255"`
	ButtonText   string     `json:"buttonText" binding:"max=50"`
	IsActive     bool       `json:"isActive"`
	DisplayOrder int        `json:"displayOrder"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
}

func (in *BannerInput) apply(b *model.Banner) error {
	if in.StartDate != nil && in.EndDate != nil && !in.EndDate.After(*in.StartDate) {
		return util.ErrInvalidBannerWindow
	}
	b.Title = in.Title
	b.Subtitle = in.Subtitle
	b.Image = in.Image
	b.Link = in.Link
	b.ButtonText = in.ButtonText
	b.IsActive = in.IsActive
	b.DisplayOrder = in.DisplayOrder
	b.StartDate = in.StartDate
	b.EndDate = in.EndDate
	return nil
}

type SiteService struct {
	SettingsRepo *repository.SettingsRepository
	BannerRepo   *repository.BannerRepository
	Now          func() time.Time
}

func NewSiteService(settingsRepo *repository.SettingsRepository, bannerRepo *repository.BannerRepository) *SiteService {
	return &SiteService{SettingsRepo: settingsRepo, BannerRepo: bannerRepo, Now: time.Now}
}

func (s *SiteService) Settings() (*model.SiteSettings, error) {
	return s.SettingsRepo.SiteSettings()
}

func (s *SiteService) UpdateSettings(in *SiteSettingsInput) (*model.SiteSettings, error) {
	settings, err := s.SettingsRepo.SiteSettings()
	if err != nil {
		return nil, err
	}
	settings.SiteName = in.SiteName
	settings.SiteTagline = in.SiteTagline
	settings.FooterText = in.FooterText
	settings.ContactEmail = in.ContactEmail
	settings.ContactPhone = in.ContactPhone
	settings.MetaDescription = in.MetaDescription
	settings.MetaKeywords = in.MetaKeywords
	if in.SocialLinks != nil {
		settings.SocialLinks = datatypes.JSONMap(in.SocialLinks)
	}
	return settings, s.SettingsRepo.SaveSiteSettings(settings)
}

// ResetSettings 恢复默认站点信息
func (s *SiteService) ResetSettings() (*model.SiteSettings, error) {
	settings := model.DefaultSiteSettings()
	return settings, s.SettingsRepo.SaveSiteSettings(settings)
}

func (s *SiteService) VisibleBanners() ([]model.Banner, error) {
	return s.BannerRepo.ListVisible(s.Now())
}

func (s *SiteService) AllBanners() ([]model.Banner, error) {
	return s.BannerRepo.ListAll()
}

func (s *SiteService) CreateBanner(in *BannerInput) (*model.Banner, error) {
	b := &model.Banner{}
	if err := in.apply(b); err != nil {
		return nil, err
	}
	return b, s.BannerRepo.Create(b)
}

func (s *SiteService) UpdateBanner(id uint, in *BannerInput) (*model.Banner, error) {
	b, err := s.BannerRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrBannerNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := in.apply(b); err != nil {
		return nil, err
	}
	return b, s.BannerRepo.Save(b)
}

func (s *SiteService) DeleteBanner(id uint) error {
	if _, err := s.BannerRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrBannerNotFound
		}
		return err
	}
	return s.BannerRepo.Delete(id)
}
