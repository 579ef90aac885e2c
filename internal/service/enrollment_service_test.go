package service

import (
	"context"
	"coursemart_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, ProgressPercent(0, 0))
	assert.Equal(t, 33, ProgressPercent(1, 3))
	assert.Equal(t, 66, ProgressPercent(2, 3))
	assert.Equal(t, 100, ProgressPercent(3, 3))
	assert.Equal(t, 100, ProgressPercent(5, 3))
}

func TestEnrollFreeOnlyForZeroPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	free := f.course(t, "Intro to Python", "0", 2)
	paid := f.course(t, "Advanced Python", "49.99", 2)

	_, err := f.enrollments.EnrollFree(ctx, f.student.ID, paid.Slug)
	assert.ErrorIs(t, err, util.ErrPaidCourse)

	e, err := f.enrollments.EnrollFree(ctx, f.student.ID, free.Slug)
	require.NoError(t, err)
	assert.True(t, e.IsActive)
	assert.Equal(t, 1, f.courseRow(t, free.ID).StudentsEnrolled)

	_, err = f.enrollments.EnrollFree(ctx, f.student.ID, free.Slug)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
	assert.Equal(t, 1, f.courseRow(t, free.ID).StudentsEnrolled)
}

func TestEnrollFreeDuringFullDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Giveaway", "10", 1)

	_, err := f.discounts.Create(ctx, &GlobalDiscountInput{
		Title:              "Free week",
		DiscountPercentage: 100,
		StartDate:          f.now.Add(-time.Hour),
		EndDate:            f.now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = f.enrollments.EnrollFree(ctx, f.student.ID, course.Slug)
	require.NoError(t, err)
}

func TestLearnAndCompleteLessons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Neural Networks", "0", 3)

	_, err := f.enrollments.Learn(f.student.ID, course.Slug)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	_, err = f.enrollments.EnrollFree(ctx, f.student.ID, course.Slug)
	require.NoError(t, err)

	page, err := f.enrollments.Learn(f.student.ID, course.Slug)
	require.NoError(t, err)
	require.Len(t, page.Lessons, 3)
	assert.Equal(t, 0, page.ProgressPercent)

	first, last := page.Lessons[0].ID, page.Lessons[2].ID

	lesson, err := f.enrollments.Lesson(f.student.ID, course.Slug, first)
	require.NoError(t, err)
	assert.Nil(t, lesson.Previous)
	require.NotNil(t, lesson.Next)
	assert.Equal(t, page.Lessons[1].ID, lesson.Next.ID)

	lesson, err = f.enrollments.Lesson(f.student.ID, course.Slug, last)
	require.NoError(t, err)
	assert.Nil(t, lesson.Next)
	require.NotNil(t, lesson.Previous)

	_, err = f.enrollments.Lesson(f.student.ID, course.Slug, 999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	_, err = f.enrollments.CompleteLesson(f.instructor.ID, first)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	res, err := f.enrollments.CompleteLesson(f.student.ID, first)
	require.NoError(t, err)
	assert.Equal(t, 33, res.ProgressPercent)
	assert.False(t, res.CourseCompleted)

	// 重复完成不改变进度
	res, err = f.enrollments.CompleteLesson(f.student.ID, first)
	require.NoError(t, err)
	assert.Equal(t, 33, res.ProgressPercent)

	for _, l := range page.Lessons[1:] {
		res, err = f.enrollments.CompleteLesson(f.student.ID, l.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, res.ProgressPercent)
	assert.True(t, res.CourseCompleted)

	e, err := f.enrollments.EnrollmentRepo.FindActive(f.student.ID, course.ID)
	require.NoError(t, err)
	assert.NotNil(t, e.CompletedAt)

	mine, err := f.enrollments.MyCourses(f.student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 100, mine[0].ProgressPercent)
}
