package repository

import (
	"coursemart_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// SettingsRepository 支付设置和站点设置两个单例
type SettingsRepository struct {
	DB *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

func (r *SettingsRepository) PaymentSettings() (*model.PaymentSettings, error) {
	s := model.DefaultPaymentSettings()
	err := r.DB.Where(model.PaymentSettings{ID: 1}).FirstOrCreate(s).Error
	return s, err
}

func (r *SettingsRepository) SavePaymentSettings(s *model.PaymentSettings) error {
	s.ID = 1
	return r.DB.Save(s).Error
}

func (r *SettingsRepository) SiteSettings() (*model.SiteSettings, error) {
	s := model.DefaultSiteSettings()
	err := r.DB.Where(model.SiteSettings{ID: 1}).FirstOrCreate(s).Error
	return s, err
}

func (r *SettingsRepository) SaveSiteSettings(s *model.SiteSettings) error {
	s.ID = 1
	return r.DB.Save(s).Error
}

type BannerRepository struct {
	DB *gorm.DB
}

func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{DB: db}
}

func (r *BannerRepository) Create(b *model.Banner) error {
	return r.DB.Create(b).Error
}

func (r *BannerRepository) Save(b *model.Banner) error {
	return r.DB.Save(b).Error
}

func (r *BannerRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Banner{}, id).Error
}

func (r *BannerRepository) FindByID(id uint) (*model.Banner, error) {
	var b model.Banner
	err := r.DB.First(&b, id).Error
	return &b, err
}

// ListVisible 启用且在展示窗口内，按 display_order 排序
func (r *BannerRepository) ListVisible(now time.Time) ([]model.Banner, error) {
	var banners []model.Banner
	err := r.DB.Where("is_active = ?", true).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("display_order ASC, id ASC").
		Find(&banners).Error
	return banners, err
}

func (r *BannerRepository) ListAll() ([]model.Banner, error) {
	var banners []model.Banner
	err := r.DB.Order("display_order ASC, id ASC").Find(&banners).Error
	return banners, err
}
