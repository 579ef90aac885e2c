package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// GlobalDiscount 全站限时折扣。IsActive 在每次保存时按时间窗口重新计算。
// swagger:model GlobalDiscount
type GlobalDiscount struct {
	BaseModel
	Title              string    `gorm:"size:200;not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	DiscountPercentage int       `gorm:"not null;check:chk_global_discount_pct,discount_percentage >= 0 AND discount_percentage <= 100" json:"discountPercentage"`
	StartDate          time.Time `gorm:"not null" json:"startDate"`
	EndDate            time.Time `gorm:"not null;index" json:"endDate"`
	IsActive           bool      `gorm:"index" json:"isActive"`
	ShowBanner         bool      `json:"showBanner"`
	BannerColor        string    `gorm:"size:20" json:"bannerColor"`
}

func (GlobalDiscount) TableName() string {
	return "global_discounts"
}

var (
	ErrInvalidPercentage = errors.New("discount percentage must be between 0 and 100")
	ErrInvalidWindow     = errors.New("discount end date must be after start date")
)

func (g *GlobalDiscount) BeforeSave(tx *gorm.DB) error {
	now := time.Now()
	if g.StartDate.IsZero() {
		g.StartDate = now
	}
	if g.DiscountPercentage < 0 || g.DiscountPercentage > 100 {
		return ErrInvalidPercentage
	}
	if !g.EndDate.After(g.StartDate) {
		return ErrInvalidWindow
	}
	if g.BannerColor == "" {
		g.BannerColor = "orange"
	}
	g.IsActive = g.IsCurrentlyActive(now)
	return nil
}

// IsCurrentlyActive 只看时间窗口 [StartDate, EndDate]
func (g *GlobalDiscount) IsCurrentlyActive(now time.Time) bool {
	return !now.Before(g.StartDate) && !now.After(g.EndDate)
}

// Multiplier (100 - pct) / 100，精确小数
func (g *GlobalDiscount) Multiplier() decimal.Decimal {
	return hundred.Sub(decimal.NewFromInt(int64(g.DiscountPercentage))).Div(hundred)
}

func (g *GlobalDiscount) ApplyToPrice(price decimal.Decimal) decimal.Decimal {
	return price.Mul(g.Multiplier()).Round(2)
}

// RemainingTime 距结束的秒数，已结束返回 0
func (g *GlobalDiscount) RemainingTime(now time.Time) int64 {
	return remainingSeconds(now, g.EndDate)
}

func remainingSeconds(now, end time.Time) int64 {
	if !end.After(now) {
		return 0
	}
	return int64(end.Sub(now) / time.Second)
}
