package repository

import (
	"coursemart_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type DiscountRepository struct {
	DB *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{DB: db}
}

func (r *DiscountRepository) Create(d *model.GlobalDiscount) error {
	return r.DB.Create(d).Error
}

func (r *DiscountRepository) Update(d *model.GlobalDiscount) error {
	return r.DB.Save(d).Error
}

func (r *DiscountRepository) Delete(id uint) error {
	return r.DB.Delete(&model.GlobalDiscount{}, id).Error
}

func (r *DiscountRepository) FindByID(id uint) (*model.GlobalDiscount, error) {
	var d model.GlobalDiscount
	err := r.DB.First(&d, id).Error
	return &d, err
}

// FindCurrent 时间窗口包含 now 的最新一条全站折扣，不存在返回 nil
func (r *DiscountRepository) FindCurrent(now time.Time) (*model.GlobalDiscount, error) {
	var d model.GlobalDiscount
	err := r.DB.Where("start_date <= ? AND end_date >= ?", now, now).
		Order("created_at DESC, id DESC").
		First(&d).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DiscountRepository) List() ([]model.GlobalDiscount, error) {
	var list []model.GlobalDiscount
	err := r.DB.Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

// SetActive 只改标志位，不触发 BeforeSave
func (r *DiscountRepository) SetActive(id uint, active bool) error {
	return r.DB.Model(&model.GlobalDiscount{}).Where("id = ?", id).UpdateColumn("is_active", active).Error
}
