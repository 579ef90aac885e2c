package repository

import (
	"coursemart_backend/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) Create(category *model.Category) error {
	return r.DB.Create(category).Error
}

func (r *CategoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	err := r.DB.First(&category, id).Error
	return &category, err
}

// List limit<=0 不限制数量
func (r *CategoryRepository) List(limit int) ([]model.Category, error) {
	var categories []model.Category
	query := r.DB.Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) Update(category *model.Category) error {
	return r.DB.Save(category).Error
}

func (r *CategoryRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Category{}, id).Error
}

func (r *CategoryRepository) CountCourses(id uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
