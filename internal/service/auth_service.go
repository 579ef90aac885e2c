package service

import (
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type ProfileInput struct {
	Name               string `json:"name" binding:"omitempty,max=100"`
	PhoneNumber        string `json:"phoneNumber" binding:"max=20"`
	Address            string `json:"address"`
	Bio                string `json:"bio" binding:"max=2000"`
	ProfilePicture     string `json:"profilePicture" binding:"omitempty,url,max=255"`
	Website            string `json:"website" binding:"omitempty,url,max=255"`
	LinkedIn           string `json:"linkedin" binding:"omitempty,url,max=255"`
	Twitter            string `json:"twitter" binding:"omitempty,url,max=255"`
	GitHub             string `json:"github" binding:"omitempty,url,max=255"`
	EmailNotifications bool   `json:"emailNotifications"`
	SMSNotifications   bool   `json:"smsNotifications"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// Register 公开注册只能创建学员账号
func (s *AuthService) Register(in *RegisterInput) (*model.User, error) {
	return s.CreateUser(in, model.Student)
}

func (s *AuthService) CreateUser(in *RegisterInput, role model.UserRole) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.UserRepo.EmailExists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrEmailRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, util.ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredential
	}
	if user.Disabled {
		return "", nil, util.ErrAccountDisabled
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	now := time.Now()
	user.LastLogin = &now
	if err := s.UserRepo.UpdateLastLogin(user.ID, now); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Profile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		if user.Profile, err = s.UserRepo.FindProfile(userID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(userID uint, in *ProfileInput) (*model.User, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" && in.Name != user.Name {
		user.Name = in.Name
		if err := s.UserRepo.DB.Model(user).Update("name", in.Name).Error; err != nil {
			return nil, err
		}
	}

	p := user.Profile
	p.PhoneNumber = in.PhoneNumber
	p.Address = in.Address
	p.Bio = in.Bio
	p.ProfilePicture = in.ProfilePicture
	p.Website = in.Website
	p.LinkedIn = in.LinkedIn
	p.Twitter = in.Twitter
	p.GitHub = in.GitHub
	p.EmailNotifications = in.EmailNotifications
	p.SMSNotifications = in.SMSNotifications
	if err := s.UserRepo.SaveProfile(p); err != nil {
		return nil, err
	}
	return user, nil
}
