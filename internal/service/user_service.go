package service

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/logger"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const usersPerPage = 20

// UpdateUserInput 后台修改账号
type UpdateUserInput struct {
	Name     string         `json:"name" binding:"required,max=100"`
	Role     model.UserRole `json:"role" binding:"required,oneof=student instructor admin"`
	Disabled bool           `json:"disabled"`
}

// UserService 后台账号管理
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) List(f repository.UserFilter, page int) (*util.PageResponse, error) {
	users, total, err := s.UserRepo.List(f, page, usersPerPage)
	if err != nil {
		return nil, err
	}
	resp := util.NewPage(users, total, page, usersPerPage)
	return &resp, nil
}

func (s *UserService) Get(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// Update 管理员不能降级或禁用自己
func (s *UserService) Update(operatorID, id uint, in *UpdateUserInput) (*model.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if operatorID == id && (in.Role != model.Admin || in.Disabled) {
		return nil, util.ErrPermissionDenied
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Role = in.Role
	user.Disabled = in.Disabled
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	logger.Log.Info("User updated by admin",
		zap.Uint("userId", id),
		zap.Uint("operatorId", operatorID),
		zap.String("role", string(in.Role)),
		zap.Bool("disabled", in.Disabled))
	return user, nil
}

// SetDisabled 禁用后已签发的 token 也会被拒绝
func (s *UserService) SetDisabled(operatorID, id uint, disabled bool) (*model.User, error) {
	if operatorID == id && disabled {
		return nil, util.ErrPermissionDenied
	}
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.UserRepo.DB.Model(user).Update("disabled", disabled).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword 生成临时密码，只返回这一次
func (s *UserService) ResetPassword(id uint) (string, error) {
	user, err := s.Get(id)
	if err != nil {
		return "", err
	}

	temp := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	hashed, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.UserRepo.DB.Model(user).Update("password", string(hashed)).Error; err != nil {
		return "", err
	}
	return temp, nil
}
