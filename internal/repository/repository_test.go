package repository

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/pkg/database"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	u := &model.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, NewUserRepository(db).Create(u))
	return u
}

func seedCourse(t *testing.T, db *gorm.DB, cat *model.Category, instr *model.User, title string, price string, published bool) *model.Course {
	c := &model.Course{
		Title:        title,
		Slug:         fmt.Sprintf("%s-%d", title, time.Now().UnixNano()),
		Description:  title + " description",
		CategoryID:   cat.ID,
		InstructorID: instr.ID,
		Difficulty:   model.Beginner,
		Price:        decimal.RequireFromString(price),
		IsPublished:  published,
	}
	require.NoError(t, NewCourseRepository(db).Create(c))
	return c
}

func TestUserProfileCreatedWithUser(t *testing.T) {
	db := newDB(t)
	u := seedUser(t, db, "alice", model.Student)

	found, err := NewUserRepository(db).FindByID(u.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Profile)
	assert.True(t, found.Profile.EmailNotifications)

	disabled, err := NewUserRepository(db).IsDisabled(u.ID)
	require.NoError(t, err)
	assert.False(t, disabled)
}

func TestCourseListFiltersAndSorts(t *testing.T) {
	db := newDB(t)
	instr := seedUser(t, db, "tutor", model.Instructor)
	ml := &model.Category{Name: "Machine Learning"}
	web := &model.Category{Name: "Web"}
	require.NoError(t, NewCategoryRepository(db).Create(ml))
	require.NoError(t, NewCategoryRepository(db).Create(web))

	seedCourse(t, db, ml, instr, "Deep Learning", "99.00", true)
	seedCourse(t, db, ml, instr, "Intro Python", "19.50", true)
	seedCourse(t, db, web, instr, "React", "49.00", true)
	seedCourse(t, db, web, instr, "Draft", "10.00", false)

	repo := NewCourseRepository(db)

	all, total, err := repo.List(CourseFilter{PublishedOnly: true, Sort: SortPriceLow}, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "Intro Python", all[0].Title)
	assert.Equal(t, "Deep Learning", all[2].Title)
	assert.Equal(t, "Machine Learning", all[0].Category.Name)

	byCat, total, err := repo.List(CourseFilter{PublishedOnly: true, Query: "machine"}, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byCat, 2)

	byInstr, total, err := repo.List(CourseFilter{PublishedOnly: true, Query: "TEACHER"}, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, byInstr, 3)

	ranged, _, err := repo.List(CourseFilter{
		PublishedOnly: true,
		PriceMin:      decimal.NewNullDecimal(decimal.NewFromInt(20)),
		PriceMax:      decimal.NewNullDecimal(decimal.NewFromInt(60)),
	}, 1, 12)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "React", ranged[0].Title)

	page2, total, err := repo.List(CourseFilter{PublishedOnly: true, Sort: SortPriceHigh}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page2, 1)
	assert.Equal(t, "Intro Python", page2[0].Title)
}

func TestSlugExistsIncludesDeleted(t *testing.T) {
	db := newDB(t)
	instr := seedUser(t, db, "tutor", model.Instructor)
	cat := &model.Category{Name: "Data"}
	require.NoError(t, NewCategoryRepository(db).Create(cat))
	c := seedCourse(t, db, cat, instr, "SQL", "5", true)

	repo := NewCourseRepository(db)
	exists, err := repo.SlugExists(c.Slug, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SlugExists(c.Slug, c.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Delete(c.ID))
	exists, err = repo.SlugExists(c.Slug, 0)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEnrollmentActivate(t *testing.T) {
	db := newDB(t)
	instr := seedUser(t, db, "tutor", model.Instructor)
	student := seedUser(t, db, "bob", model.Student)
	cat := &model.Category{Name: "Data"}
	require.NoError(t, NewCategoryRepository(db).Create(cat))
	c := seedCourse(t, db, cat, instr, "SQL", "5", true)

	repo := NewEnrollmentRepository(db)
	now := time.Now()

	e, changed, err := repo.Activate(student.ID, c.ID, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, e.IsActive)

	_, changed, err = repo.Activate(student.ID, c.ID, now)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, db.Model(e).Update("is_active", false).Error)
	enrolled, err := repo.IsEnrolled(student.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	_, changed, err = repo.Activate(student.ID, c.ID, now)
	require.NoError(t, err)
	assert.True(t, changed)

	var count int64
	db.Model(&model.Enrollment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestReviewAggregateAndStats(t *testing.T) {
	db := newDB(t)
	instr := seedUser(t, db, "tutor", model.Instructor)
	cat := &model.Category{Name: "Data"}
	require.NoError(t, NewCategoryRepository(db).Create(cat))
	c := seedCourse(t, db, cat, instr, "SQL", "5", true)

	repo := NewReviewRepository(db)
	ratings := []struct {
		rating    int
		moderated bool
		verified  bool
	}{
		{5, true, true},
		{4, true, false},
		{4, true, false},
		{1, false, false},
	}
	for i, r := range ratings {
		u := seedUser(t, db, fmt.Sprintf("s%d", i), model.Student)
		require.NoError(t, repo.Save(&model.Review{
			StudentID:          u.ID,
			CourseID:           c.ID,
			Rating:             r.rating,
			Comment:            "a long enough comment",
			IsModerated:        r.moderated,
			IsVerifiedPurchase: r.verified,
		}))
	}

	avg, total, err := repo.Aggregate(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "4.33", avg.StringFixed(2))

	stats, err := repo.Stats(c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, "4.33", stats.Average.StringFixed(2))
	assert.Equal(t, int64(2), stats.Distribution[4])
	assert.Equal(t, int64(0), stats.Distribution[1])
	assert.Equal(t, int64(1), stats.Verified)

	list, listTotal, err := repo.ListPublic(c.ID, ReviewFilter{Sort: ReviewSortHighest}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), listTotal)
	assert.Equal(t, 5, list[0].Rating)

	list, _, err = repo.ListPublic(c.ID, ReviewFilter{Rating: 4}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestReviewAggregateEmpty(t *testing.T) {
	db := newDB(t)
	avg, total, err := NewReviewRepository(db).Aggregate(42)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.True(t, avg.IsZero())
}

func TestDiscountFindCurrentNewestFirst(t *testing.T) {
	db := newDB(t)
	repo := NewDiscountRepository(db)
	now := time.Now()

	old := &model.GlobalDiscount{Title: "old", DiscountPercentage: 10, StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(48 * time.Hour)}
	require.NoError(t, repo.Create(old))
	expired := &model.GlobalDiscount{Title: "expired", DiscountPercentage: 50, StartDate: now.Add(-72 * time.Hour), EndDate: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(expired))
	newer := &model.GlobalDiscount{Title: "newer", DiscountPercentage: 20, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)}
	require.NoError(t, repo.Create(newer))

	current, err := repo.FindCurrent(now)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "newer", current.Title)
	assert.True(t, current.IsActive)

	none, err := repo.FindCurrent(now.Add(100 * time.Hour))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestBannerListVisible(t *testing.T) {
	db := newDB(t)
	repo := NewBannerRepository(db)
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.NoError(t, repo.Create(&model.Banner{Title: "second", IsActive: true, DisplayOrder: 2}))
	require.NoError(t, repo.Create(&model.Banner{Title: "first", IsActive: true, DisplayOrder: 1, StartDate: &past, EndDate: &future}))
	require.NoError(t, repo.Create(&model.Banner{Title: "ended", IsActive: true, EndDate: &past}))
	require.NoError(t, repo.Create(&model.Banner{Title: "off", IsActive: false}))

	banners, err := repo.ListVisible(now)
	require.NoError(t, err)
	require.Len(t, banners, 2)
	assert.Equal(t, "first", banners[0].Title)
	assert.Equal(t, "second", banners[1].Title)
}
