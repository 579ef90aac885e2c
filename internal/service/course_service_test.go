package service

import (
	"context"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/util"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseSlugGeneration(t *testing.T) {
	f := newFixture(t)
	in := &CourseInput{Title: "Machine Learning 101", CategoryID: f.category.ID, Price: decimal.NewFromInt(10)}

	c1, err := f.courses.Create(in, f.instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, "machine-learning-101", c1.Slug)

	c2, err := f.courses.Create(in, f.instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, "machine-learning-101-2", c2.Slug)

	// 软删除的课程仍占用 slug
	require.NoError(t, f.courses.Delete(c1.ID))
	c3, err := f.courses.Create(in, f.instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, "machine-learning-101-3", c3.Slug)

	accented, err := f.courses.Create(&CourseInput{Title: "Café Basics", CategoryID: f.category.ID}, f.instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, "cafe-basics", accented.Slug)

	untitled, err := f.courses.Create(&CourseInput{Title: "数据结构", CategoryID: f.category.ID}, f.instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, "course", untitled.Slug)

	_, err = f.courses.Create(&CourseInput{Title: "Other", Slug: "machine-learning-101-2", CategoryID: f.category.ID}, f.instructor.ID)
	assert.ErrorIs(t, err, util.ErrSlugTaken)

	_, err = f.courses.Create(&CourseInput{Title: "Negative", CategoryID: f.category.ID, Price: decimal.NewFromInt(-1)}, f.instructor.ID)
	assert.ErrorIs(t, err, util.ErrInvalidPrice)

	_, err = f.courses.Create(&CourseInput{Title: "Orphan", CategoryID: 999}, f.instructor.ID)
	assert.ErrorIs(t, err, util.ErrCategoryNotFound)
}

func TestCourseUpdateKeepsSlugUnlessChanged(t *testing.T) {
	f := newFixture(t)
	c := f.course(t, "Data Engineering", "30", 0)

	updated, err := f.courses.Update(c.ID, &CourseInput{Title: "Data Engineering Pro", CategoryID: f.category.ID, Price: decimal.NewFromInt(35), IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, c.Slug, updated.Slug)
	assert.Equal(t, "Data Engineering Pro", updated.Title)

	updated, err = f.courses.Update(c.ID, &CourseInput{Title: "Data Engineering Pro", Slug: "data-eng", CategoryID: f.category.ID, IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, "data-eng", updated.Slug)
}

func TestBulkActions(t *testing.T) {
	f := newFixture(t)
	c, err := f.courses.Create(&CourseInput{Title: "Draft", CategoryID: f.category.ID}, f.instructor.ID)
	require.NoError(t, err)
	assert.Nil(t, c.PublishedAt)

	n, err := f.courses.Bulk(BulkPublish, []uint{c.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	row := f.courseRow(t, c.ID)
	assert.True(t, row.IsPublished)
	assert.NotNil(t, row.PublishedAt)

	n, err = f.courses.Bulk(BulkFeature, []uint{c.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, f.courseRow(t, c.ID).IsFeatured)

	_, err = f.courses.Bulk("archive", []uint{c.ID})
	assert.Error(t, err)
}

func TestCategoryDeleteInUse(t *testing.T) {
	f := newFixture(t)
	f.course(t, "Occupied", "10", 0)

	assert.ErrorIs(t, f.courses.DeleteCategory(f.category.ID), util.ErrCategoryInUse)

	empty, err := f.courses.CreateCategory(&CategoryInput{Name: "Empty"})
	require.NoError(t, err)
	require.NoError(t, f.courses.DeleteCategory(empty.ID))
	assert.ErrorIs(t, f.courses.DeleteCategory(empty.ID), util.ErrCategoryNotFound)
}

func TestLessonVideoDurationFromProbe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.course(t, "Video", "10", 0)

	f.courses.Media.ProbeVideo = func(path string) (*util.VideoInfo, error) {
		return &util.VideoInfo{Duration: 125}, nil
	}
	video := fileHeader(t, "intro.mp4", []byte{0x00, 0x01, 0x02, 0x03, 0xfe, 0xff})

	lesson, err := f.courses.CreateLesson(ctx, c.ID, &LessonInput{Title: "Intro", Duration: 1}, video)
	require.NoError(t, err)
	assert.Equal(t, 3, lesson.Duration)
	assert.Equal(t, 1, lesson.Order)
	assert.Contains(t, lesson.VideoURL, "/uploads/lesson_videos/")

	_, err = f.courses.CreateLesson(ctx, c.ID, &LessonInput{Title: "Bad"}, fileHeader(t, "notes.pdf", []byte("%PDF")))
	assert.ErrorIs(t, err, util.ErrInvalidVideo)

	f.courses.Media.ProbeVideo = func(path string) (*util.VideoInfo, error) {
		return nil, errors.New("moov atom not found")
	}
	_, err = f.courses.CreateLesson(ctx, c.ID, &LessonInput{Title: "Broken"}, fileHeader(t, "broken.mp4", []byte{0x00, 0x01}))
	assert.ErrorIs(t, err, util.ErrInvalidVideo)

	second, err := f.courses.CreateLesson(ctx, c.ID, &LessonInput{Title: "Second"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)

	assert.ErrorIs(t, f.courses.DeleteLesson(c.ID, 999), util.ErrLessonNotFound)
	require.NoError(t, f.courses.DeleteLesson(c.ID, second.ID))
	lessons, err := f.courses.Lessons(c.ID)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}

func TestThumbnailUpload(t *testing.T) {
	f := newFixture(t)
	c := f.course(t, "Thumb", "10", 0)

	updated, err := f.courses.UploadThumbnail(context.Background(), c.ID, fileHeader(t, "cover.png", pngBytes(t, 1200, 900)))
	require.NoError(t, err)
	assert.Contains(t, updated.Thumbnail, "/uploads/course_thumbnails/")
	assert.Equal(t, model.Beginner, updated.Difficulty)
}
