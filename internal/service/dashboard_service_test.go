package service

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/repository"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	free := f.course(t, "Free Basics", "0", 2)
	paid := f.course(t, "Paid Deep Dive", "75", 1)
	other := f.course(t, "Pending Course", "25", 1)

	_, err := f.enrollments.EnrollFree(ctx, f.student.ID, free.Slug)
	require.NoError(t, err)
	p, err := f.payments.Submit(ctx, f.student.ID, paid.Slug, &PaymentInput{PaymentMethodID: f.method.ID}, nil)
	require.NoError(t, err)
	_, err = f.payments.Approve(ctx, f.admin.ID, p.ID, "")
	require.NoError(t, err)
	_, err = f.payments.Submit(ctx, f.student.ID, other.Slug, &PaymentInput{PaymentMethodID: f.method.ID}, nil)
	require.NoError(t, err)

	lessons, err := f.courses.Lessons(paid.ID)
	require.NoError(t, err)
	_, err = f.enrollments.CompleteLesson(f.student.ID, lessons[0].ID)
	require.NoError(t, err)

	s := NewDashboardService(
		f.enrollments.EnrollmentRepo,
		f.enrollments.ProgressRepo,
		f.payments.PaymentRepo,
		repository.NewDashboardRepository(f.db),
		f.enrollments,
	)

	d, err := s.Student(f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.EnrolledCourses)
	assert.Equal(t, int64(1), d.CompletedCourses)
	assert.Equal(t, int64(1), d.CompletedLessons)
	require.Len(t, d.PendingPayments, 1)
	assert.Equal(t, other.ID, d.PendingPayments[0].CourseID)
	assert.Len(t, d.RecentCourses, 2)

	o, err := s.Admin()
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.Students)
	assert.Equal(t, int64(3), o.PublishedCourses)
	assert.Equal(t, int64(2), o.Enrollments)
	assert.Equal(t, int64(1), o.PendingPayments)
	assert.True(t, o.Revenue.Equal(decimal.NewFromInt(75)))
}

func TestSchedulerSyncDiscounts(t *testing.T) {
	f := newFixture(t)
	c := f.course(t, "Scheduled", "100", 0)
	_, err := f.discounts.SetCourseDiscount(c.ID, &CourseDiscountInput{DiscountPrice: decimal.NewFromInt(50), EndDate: f.now.Add(time.Minute)})
	require.NoError(t, err)

	s, err := NewSchedulerService(&config.SchedulerConfig{DiscountSync: "@every 1h"}, f.discounts)
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	s.SyncDiscounts()
	assert.False(t, f.courseRow(t, c.ID).IsDiscountActive)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	_, err = NewSchedulerService(&config.SchedulerConfig{DiscountSync: "not a cron spec"}, f.discounts)
	assert.Error(t, err)
}
