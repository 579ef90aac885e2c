package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountSource string

const (
	DiscountNone   DiscountSource = ""
	DiscountCourse DiscountSource = "course"
	DiscountGlobal DiscountSource = "global"
)

// PriceView 课程在某一时刻的价格展示
type PriceView struct {
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	HasDiscount        bool            `json:"hasDiscount"`
	DiscountSource     DiscountSource  `json:"discountSource,omitempty"`
	DiscountPercentage int             `json:"discountPercentage"`
	Savings            decimal.Decimal `json:"savings"`
	DiscountEndsAt     *time.Time      `json:"discountEndsAt,omitempty"`
	RemainingSeconds   int64           `json:"remainingSeconds"`
}

// HasActiveDiscount 课程单独折扣：设置了折扣价和结束时间，now 落在窗口内，且折扣价不高于原价。
// 开始时间为空视为立即生效。
func (c *Course) HasActiveDiscount(now time.Time) bool {
	if !c.DiscountPrice.Valid || c.DiscountEndDate == nil {
		return false
	}
	dp := c.DiscountPrice.Decimal
	if dp.IsNegative() || dp.GreaterThan(c.Price) {
		return false
	}
	if c.DiscountStartDate != nil && now.Before(*c.DiscountStartDate) {
		return false
	}
	return !now.After(*c.DiscountEndDate)
}

func (c *Course) resolve(now time.Time, global *GlobalDiscount) DiscountSource {
	if c.HasActiveDiscount(now) {
		return DiscountCourse
	}
	if global != nil && global.IsCurrentlyActive(now) {
		return DiscountGlobal
	}
	return DiscountNone
}

// HasAnyDiscount 单独折扣或全站折扣任一生效
func (c *Course) HasAnyDiscount(now time.Time, global *GlobalDiscount) bool {
	return c.resolve(now, global) != DiscountNone
}

// CurrentPrice 单独折扣优先于全站折扣
func (c *Course) CurrentPrice(now time.Time, global *GlobalDiscount) decimal.Decimal {
	switch c.resolve(now, global) {
	case DiscountCourse:
		return c.DiscountPrice.Decimal
	case DiscountGlobal:
		return global.ApplyToPrice(c.Price)
	}
	return c.Price
}

// DiscountPercentage 四舍五入到整数，免费课程为 0
func (c *Course) DiscountPercentage(now time.Time, global *GlobalDiscount) int {
	if !c.Price.IsPositive() {
		return 0
	}
	switch c.resolve(now, global) {
	case DiscountCourse:
		off := c.Price.Sub(c.DiscountPrice.Decimal).Div(c.Price).Mul(hundred)
		return int(off.Round(0).IntPart())
	case DiscountGlobal:
		return global.DiscountPercentage
	}
	return 0
}

// DiscountRemainingTime 单独折扣剩余秒数
func (c *Course) DiscountRemainingTime(now time.Time) int64 {
	if !c.HasActiveDiscount(now) {
		return 0
	}
	return remainingSeconds(now, *c.DiscountEndDate)
}

func (c *Course) Savings(now time.Time, global *GlobalDiscount) decimal.Decimal {
	return c.Price.Sub(c.CurrentPrice(now, global))
}

func (c *Course) PriceView(now time.Time, global *GlobalDiscount) PriceView {
	view := PriceView{
		OriginalPrice:      c.Price,
		CurrentPrice:       c.CurrentPrice(now, global),
		DiscountSource:     c.resolve(now, global),
		DiscountPercentage: c.DiscountPercentage(now, global),
	}
	view.HasDiscount = view.DiscountSource != DiscountNone
	view.Savings = c.Price.Sub(view.CurrentPrice)

	switch view.DiscountSource {
	case DiscountCourse:
		view.DiscountEndsAt = c.DiscountEndDate
		view.RemainingSeconds = c.DiscountRemainingTime(now)
	case DiscountGlobal:
		end := global.EndDate
		view.DiscountEndsAt = &end
		view.RemainingSeconds = global.RemainingTime(now)
	}
	return view
}
