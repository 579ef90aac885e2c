package repository

import (
	"coursemart_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create 用户和资料在同一事务中创建（资料由 AfterCreate 钩子生成）
func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Profile").First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastLogin(userID uint, at time.Time) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_login", at).Error
}

func (r *UserRepository) IsDisabled(userID uint) (bool, error) {
	var user model.User
	if err := r.DB.Select("id", "disabled").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.Disabled, nil
}

// FindProfile 历史账号可能没有资料，此时补建
func (r *UserRepository) FindProfile(userID uint) (*model.UserProfile, error) {
	profile := model.UserProfile{UserID: userID, EmailNotifications: true}
	err := r.DB.Where(model.UserProfile{UserID: userID}).FirstOrCreate(&profile).Error
	return &profile, err
}

func (r *UserRepository) SaveProfile(profile *model.UserProfile) error {
	return r.DB.Save(profile).Error
}

func (r *UserRepository) FindByRole(role model.UserRole) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("role = ?", role).Order("id").Find(&users).Error
	return users, err
}

// UserFilter 后台用户列表筛选，零值表示不过滤
type UserFilter struct {
	Role     model.UserRole
	Disabled *bool
	Search   string
}

func (r *UserRepository) List(f UserFilter, page, limit int) ([]model.User, int64, error) {
	query := r.DB.Model(&model.User{})
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	if f.Disabled != nil {
		query = query.Where("disabled = ?", *f.Disabled)
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}
