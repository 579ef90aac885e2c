package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newCourse(price string) *Course {
	return &Course{Title: "Test Course", Slug: "test-course", Price: dec(price), IsPublished: true}
}

func withDiscount(c *Course, price string, start, end time.Time) *Course {
	c.DiscountPrice = decimal.NewNullDecimal(dec(price))
	c.DiscountStartDate = &start
	c.DiscountEndDate = &end
	c.IsDiscountActive = true
	return c
}

func activeGlobal(now time.Time, pct int) *GlobalDiscount {
	return &GlobalDiscount{
		Title:              "Global Sale",
		DiscountPercentage: pct,
		StartDate:          now.Add(-time.Hour),
		EndDate:            now.Add(7 * 24 * time.Hour),
		IsActive:           true,
	}
}

func TestCourseWithoutDiscount(t *testing.T) {
	now := time.Now()
	c := newCourse("100.00")

	assert.False(t, c.HasActiveDiscount(now))
	assert.True(t, c.CurrentPrice(now, nil).Equal(dec("100")))
	assert.Equal(t, 0, c.DiscountPercentage(now, nil))
}

func TestCourseActiveDiscount(t *testing.T) {
	now := time.Now()
	c := withDiscount(newCourse("100.00"), "80.00", now.Add(-24*time.Hour), now.Add(7*24*time.Hour))

	assert.True(t, c.HasActiveDiscount(now))
	assert.True(t, c.CurrentPrice(now, nil).Equal(dec("80")))
	assert.Equal(t, 20, c.DiscountPercentage(now, nil))
}

func TestCourseDiscountOutsideWindow(t *testing.T) {
	now := time.Now()

	expired := withDiscount(newCourse("100.00"), "80.00", now.Add(-10*24*time.Hour), now.Add(-24*time.Hour))
	assert.False(t, expired.HasActiveDiscount(now))
	assert.True(t, expired.CurrentPrice(now, nil).Equal(dec("100")))

	future := withDiscount(newCourse("100.00"), "80.00", now.Add(24*time.Hour), now.Add(8*24*time.Hour))
	assert.False(t, future.HasActiveDiscount(now))
	assert.True(t, future.CurrentPrice(now, nil).Equal(dec("100")))
}

func TestCourseDiscountWithoutStartIsImmediate(t *testing.T) {
	now := time.Now()
	c := newCourse("100.00")
	end := now.Add(time.Hour)
	c.DiscountPrice = decimal.NewNullDecimal(dec("75.00"))
	c.DiscountEndDate = &end

	assert.True(t, c.HasActiveDiscount(now))
	assert.Equal(t, 25, c.DiscountPercentage(now, nil))
}

func TestCourseDiscountAbovePriceIgnored(t *testing.T) {
	now := time.Now()
	c := withDiscount(newCourse("100.00"), "120.00", now.Add(-time.Hour), now.Add(time.Hour))

	assert.False(t, c.HasActiveDiscount(now))
	assert.True(t, c.CurrentPrice(now, nil).LessThanOrEqual(c.Price))
}

func TestDiscountPercentageRounding(t *testing.T) {
	now := time.Now()
	c := withDiscount(newCourse("30.00"), "20.00", now.Add(-time.Hour), now.Add(time.Hour))

	// 33.33% 四舍五入
	assert.Equal(t, 33, c.DiscountPercentage(now, nil))
}

func TestDiscountRemainingTime(t *testing.T) {
	now := time.Now()
	c := withDiscount(newCourse("100.00"), "80.00", now.Add(-24*time.Hour), now.Add(2*time.Hour))

	remaining := c.DiscountRemainingTime(now)
	assert.Greater(t, remaining, int64(0))
	assert.LessOrEqual(t, remaining, int64(7200))
}

func TestFreeCourseDiscount(t *testing.T) {
	now := time.Now()
	c := newCourse("0.00")
	c.DiscountPrice = decimal.NewNullDecimal(dec("0.00"))

	assert.Equal(t, 0, c.DiscountPercentage(now, nil))
	assert.True(t, c.CurrentPrice(now, nil).IsZero())
	assert.Equal(t, 0, c.DiscountPercentage(now, activeGlobal(now, 50)))
}

func TestGlobalDiscountAppliesToCourse(t *testing.T) {
	now := time.Now()
	c := newCourse("100.00")
	g := activeGlobal(now, 20)

	assert.True(t, c.HasAnyDiscount(now, g))
	assert.True(t, c.CurrentPrice(now, g).Equal(dec("80")))
	assert.Equal(t, 20, c.DiscountPercentage(now, g))
}

func TestIndividualDiscountOverridesGlobal(t *testing.T) {
	now := time.Now()
	g := activeGlobal(now, 20)
	c := withDiscount(newCourse("100.00"), "60.00", now.Add(-24*time.Hour), now.Add(7*24*time.Hour))

	view := c.PriceView(now, g)
	assert.Equal(t, DiscountCourse, view.DiscountSource)
	assert.True(t, view.CurrentPrice.Equal(dec("60")))
	assert.Equal(t, 40, view.DiscountPercentage)
	assert.True(t, view.Savings.Equal(dec("40")))
}

func TestExpiredGlobalDiscountIgnored(t *testing.T) {
	now := time.Now()
	g := activeGlobal(now, 20)
	g.EndDate = now.Add(-time.Minute)

	c := newCourse("100.00")
	assert.False(t, c.HasAnyDiscount(now, g))
	assert.True(t, c.CurrentPrice(now, g).Equal(dec("100")))
}

func TestCurrentPriceNeverExceedsPrice(t *testing.T) {
	now := time.Now()
	prices := []string{"0.00", "0.01", "9.99", "100.00", "1234.56"}
	discounts := []string{"0.00", "5.00", "99.99", "5000.00"}
	pcts := []int{0, 1, 33, 50, 99, 100}

	for _, p := range prices {
		for _, d := range discounts {
			for _, pct := range pcts {
				c := withDiscount(newCourse(p), d, now.Add(-time.Hour), now.Add(time.Hour))
				g := activeGlobal(now, pct)
				assert.True(t, c.CurrentPrice(now, g).LessThanOrEqual(c.Price), "price=%s discount=%s pct=%d", p, d, pct)
				assert.False(t, c.CurrentPrice(now, g).IsNegative())
			}
		}
	}
}

func TestGlobalDiscountMultiplier(t *testing.T) {
	g := &GlobalDiscount{DiscountPercentage: 30}
	assert.True(t, g.Multiplier().Equal(dec("0.7")))

	g.DiscountPercentage = 25
	assert.True(t, g.ApplyToPrice(dec("100.00")).Equal(dec("75.00")))

	g.DiscountPercentage = 15
	assert.Equal(t, "8.49", g.ApplyToPrice(dec("9.99")).StringFixed(2))
}

func TestGlobalDiscountIsCurrentlyActive(t *testing.T) {
	now := time.Now()

	active := &GlobalDiscount{StartDate: now.Add(-24 * time.Hour), EndDate: now.Add(7 * 24 * time.Hour)}
	assert.True(t, active.IsCurrentlyActive(now))

	expired := &GlobalDiscount{StartDate: now.Add(-10 * 24 * time.Hour), EndDate: now.Add(-24 * time.Hour)}
	assert.False(t, expired.IsCurrentlyActive(now))

	future := &GlobalDiscount{StartDate: now.Add(24 * time.Hour), EndDate: now.Add(8 * 24 * time.Hour)}
	assert.False(t, future.IsCurrentlyActive(now))

	assert.True(t, active.IsCurrentlyActive(active.StartDate))
	assert.True(t, active.IsCurrentlyActive(active.EndDate))
}

func TestGlobalDiscountRemainingTime(t *testing.T) {
	now := time.Now()
	g := &GlobalDiscount{StartDate: now.Add(-time.Hour), EndDate: now.Add(2 * time.Hour)}

	remaining := g.RemainingTime(now)
	assert.Greater(t, remaining, int64(0))
	assert.Less(t, remaining, int64(8000))
	assert.Equal(t, int64(0), g.RemainingTime(now.Add(3*time.Hour)))
}

func TestPaymentSettingsCanAutoApprove(t *testing.T) {
	s := DefaultPaymentSettings()
	assert.False(t, s.CanAutoApprove(dec("10")))

	s.AutoApprovePayments = true
	s.AutoApproveAmountLimit = dec("50.00")
	assert.True(t, s.CanAutoApprove(dec("50")))
	assert.False(t, s.CanAutoApprove(dec("50.01")))
}

func TestBannerIsVisible(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&Banner{}).IsVisible(now))
	assert.True(t, (&Banner{IsActive: true}).IsVisible(now))
	assert.True(t, (&Banner{IsActive: true, StartDate: &past, EndDate: &future}).IsVisible(now))
	assert.False(t, (&Banner{IsActive: true, StartDate: &future}).IsVisible(now))
	assert.False(t, (&Banner{IsActive: true, EndDate: &past}).IsVisible(now))
}
