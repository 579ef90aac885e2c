package service

import (
	"context"
	"coursemart_backend/internal/util"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseDiscountOverridesGlobal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Pricing", "100", 0)

	_, err := f.discounts.Create(ctx, &GlobalDiscountInput{
		Title:              "Sitewide",
		DiscountPercentage: 30,
		StartDate:          f.now.Add(-time.Hour),
		EndDate:            f.now.Add(time.Hour),
		ShowBanner:         true,
	})
	require.NoError(t, err)

	banner, err := f.discounts.Banner(ctx)
	require.NoError(t, err)
	require.NotNil(t, banner)
	assert.Equal(t, "orange", banner.BannerColor)

	detail, err := f.catalog.Detail(ctx, course.Slug, 0)
	require.NoError(t, err)
	assert.Equal(t, "70.00", detail.Pricing.CurrentPrice.StringFixed(2))
	assert.Equal(t, 30, detail.Pricing.DiscountPercentage)

	_, err = f.discounts.SetCourseDiscount(course.ID, &CourseDiscountInput{
		DiscountPrice: decimal.RequireFromString("85"),
		EndDate:       f.now.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	detail, err = f.catalog.Detail(ctx, course.Slug, 0)
	require.NoError(t, err)
	assert.Equal(t, "85.00", detail.Pricing.CurrentPrice.StringFixed(2))
	assert.Equal(t, 15, detail.Pricing.DiscountPercentage)
	assert.True(t, detail.IsDiscountActive)

	_, err = f.discounts.ClearCourseDiscount(course.ID)
	require.NoError(t, err)
	detail, err = f.catalog.Detail(ctx, course.Slug, 0)
	require.NoError(t, err)
	assert.Equal(t, "70.00", detail.Pricing.CurrentPrice.StringFixed(2))
}

func TestCourseDiscountValidation(t *testing.T) {
	f := newFixture(t)
	course := f.course(t, "Validation", "50", 0)

	_, err := f.discounts.SetCourseDiscount(course.ID, &CourseDiscountInput{DiscountPrice: decimal.RequireFromString("60"), EndDate: f.now.Add(time.Hour)})
	assert.ErrorIs(t, err, util.ErrInvalidDiscount)

	_, err = f.discounts.SetCourseDiscount(course.ID, &CourseDiscountInput{DiscountPrice: decimal.RequireFromString("-1"), EndDate: f.now.Add(time.Hour)})
	assert.ErrorIs(t, err, util.ErrInvalidDiscount)

	_, err = f.discounts.SetCourseDiscount(course.ID, &CourseDiscountInput{DiscountPrice: decimal.RequireFromString("40"), EndDate: f.now.Add(-time.Hour)})
	assert.ErrorIs(t, err, util.ErrInvalidDiscountWin)

	_, err = f.discounts.SetCourseDiscount(999, &CourseDiscountInput{DiscountPrice: decimal.Zero, EndDate: f.now.Add(time.Hour)})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestGlobalDiscountLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.discounts.Create(ctx, &GlobalDiscountInput{Title: "Bad", DiscountPercentage: 120, EndDate: f.now.Add(time.Hour)})
	assert.ErrorIs(t, err, util.ErrInvalidDiscount)

	_, err = f.discounts.Create(ctx, &GlobalDiscountInput{Title: "Bad window", DiscountPercentage: 10, StartDate: f.now, EndDate: f.now.Add(-time.Hour)})
	assert.ErrorIs(t, err, util.ErrInvalidDiscountWin)

	older, err := f.discounts.Create(ctx, &GlobalDiscountInput{Title: "Older", DiscountPercentage: 10, StartDate: f.now.Add(-48 * time.Hour), EndDate: f.now.Add(time.Hour)})
	require.NoError(t, err)
	newer, err := f.discounts.Create(ctx, &GlobalDiscountInput{Title: "Newer", DiscountPercentage: 20, StartDate: f.now.Add(-time.Hour), EndDate: f.now.Add(time.Hour)})
	require.NoError(t, err)
	assert.True(t, newer.IsActive)

	current, err := f.discounts.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, newer.ID, current.ID)

	ended, err := f.discounts.EndNow(ctx, newer.ID)
	require.NoError(t, err)
	assert.False(t, ended.IsCurrentlyActive(f.now))

	current, err = f.discounts.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, older.ID, current.ID)

	require.NoError(t, f.discounts.Delete(ctx, older.ID))
	current, err = f.discounts.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	assert.ErrorIs(t, f.discounts.Delete(ctx, older.ID), util.ErrDiscountNotFound)
}

func TestDiscountSyncFlipsFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Sync", "100", 0)

	_, err := f.discounts.SetCourseDiscount(course.ID, &CourseDiscountInput{
		DiscountPrice: decimal.RequireFromString("80"),
		EndDate:       f.now.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = f.discounts.Create(ctx, &GlobalDiscountInput{Title: "Short", DiscountPercentage: 5, StartDate: f.now.Add(-time.Minute), EndDate: f.now.Add(time.Hour)})
	require.NoError(t, err)

	result, err := f.discounts.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CoursesUpdated)
	assert.Equal(t, 0, result.GlobalUpdated)

	f.now = f.now.Add(2 * time.Hour)
	result, err = f.discounts.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CoursesUpdated)
	assert.Equal(t, 1, result.GlobalUpdated)
	assert.False(t, f.courseRow(t, course.ID).IsDiscountActive)

	result, err = f.discounts.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CoursesUpdated+result.GlobalUpdated)
}

func TestSampleDiscounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	paid := f.course(t, "Paid", "100", 0)
	f.course(t, "Free", "0", 0)

	d, created, err := f.discounts.AddSampleGlobalDiscount(ctx, 7, 40)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 40, d.DiscountPercentage)

	again, created, err := f.discounts.AddSampleGlobalDiscount(ctx, 7, 10)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, d.ID, again.ID)

	updated, err := f.discounts.AddSampleCourseDiscounts(3)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, paid.ID, updated[0].ID)
	assert.Equal(t, "80.00", updated[0].DiscountPrice.Decimal.StringFixed(2))
}
