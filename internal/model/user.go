package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string       `gorm:"size:100;not null" json:"name"`
	Email     string       `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string       `gorm:"size:100;not null" json:"-"`
	Role      UserRole     `gorm:"size:20;not null;default:'student'" json:"role"`
	Disabled  bool         `json:"disabled"`
	LastLogin *time.Time   `json:"lastLogin,omitempty"`
	Profile   *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff 管理后台权限，目前只有管理员
func (u *User) IsStaff() bool {
	return u.Role == Admin
}

// AfterCreate 每个用户都有一份资料
func (u *User) AfterCreate(tx *gorm.DB) error {
	if u.Profile != nil {
		return nil
	}
	profile := &UserProfile{UserID: u.ID, EmailNotifications: true}
	if err := tx.Create(profile).Error; err != nil {
		return err
	}
	u.Profile = profile
	return nil
}

// swagger:model UserProfile
type UserProfile struct {
	RecordBase
	UserID             uint   `gorm:"uniqueIndex;not null" json:"userId"`
	PhoneNumber        string `gorm:"size:20" json:"phoneNumber"`
	Address            string `gorm:"type:text" json:"address"`
	Bio                string `gorm:"type:text" json:"bio"`
	ProfilePicture     string `gorm:"size:255" json:"profilePicture"`
	Website            string `gorm:"size:255" json:"website"`
	LinkedIn           string `gorm:"size:255" json:"linkedin"`
	Twitter            string `gorm:"size:255" json:"twitter"`
	GitHub             string `gorm:"size:255" json:"github"`
	EmailNotifications bool   `json:"emailNotifications"`
	SMSNotifications   bool   `json:"smsNotifications"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
