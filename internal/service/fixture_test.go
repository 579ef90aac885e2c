package service

import (
	"bytes"
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/pkg/database"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	now time.Time

	admin      *model.User
	student    *model.User
	instructor *model.User
	category   *model.Category
	method     *model.PaymentMethod

	storage     *StorageService
	discounts   *DiscountService
	catalog     *CatalogService
	courses     *CourseService
	enrollments *EnrollmentService
	reviews     *ReviewService
	payments    *PaymentService
	site        *SiteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	f := &fixture{db: db, now: time.Now()}
	clock := func() time.Time { return f.now }

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	f.storage = &StorageService{Provider: &LocalStorageProvider{Root: t.TempDir()}}
	media := NewMediaService(f.storage)

	f.discounts = NewDiscountService(repository.NewDiscountRepository(db), courseRepo, nil)
	f.discounts.Now = clock
	f.catalog = NewCatalogService(courseRepo, categoryRepo, lessonRepo, reviewRepo, enrollmentRepo, paymentRepo, methodRepo, f.discounts)
	f.catalog.Now = clock
	f.courses = NewCourseService(courseRepo, categoryRepo, lessonRepo, media, f.storage)
	f.enrollments = NewEnrollmentService(db, f.catalog, enrollmentRepo, progressRepo, lessonRepo, courseRepo)
	f.enrollments.Now = clock
	f.reviews = NewReviewService(db, f.catalog, reviewRepo, courseRepo, paymentRepo, config.ReviewConfig{AutoApprove: true, HelpfulThreshold: 2})
	f.payments = NewPaymentService(db, f.catalog, paymentRepo, methodRepo, enrollmentRepo, courseRepo, settingsRepo,
		media, f.storage, &NotificationService{Mailer: LogMailer{}})
	f.payments.Now = clock
	f.site = NewSiteService(settingsRepo, repository.NewBannerRepository(db))
	f.site.Now = clock

	f.admin = f.user(t, userRepo, "admin", model.Admin)
	f.student = f.user(t, userRepo, "student", model.Student)
	f.instructor = f.user(t, userRepo, "instructor", model.Instructor)

	f.category = &model.Category{Name: "Machine Learning"}
	require.NoError(t, categoryRepo.Create(f.category))

	f.method = &model.PaymentMethod{Name: model.EasyPaisa, AccountNumber: "0300-1234567", AccountTitle: "Course Mart", IsActive: true}
	require.NoError(t, methodRepo.Create(f.method))
	return f
}

func (f *fixture) user(t *testing.T, repo *repository.UserRepository, name string, role model.UserRole) *model.User {
	u := &model.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, repo.Create(u))
	return u
}

// course 创建已发布课程并附带指定数量的课时
func (f *fixture) course(t *testing.T, title, price string, lessons int) *model.Course {
	t.Helper()
	c, err := f.courses.Create(&CourseInput{
		Title:       title,
		CategoryID:  f.category.ID,
		Difficulty:  model.Beginner,
		Price:       decimal.RequireFromString(price),
		IsPublished: true,
	}, f.instructor.ID)
	require.NoError(t, err)
	for i := 1; i <= lessons; i++ {
		_, err := f.courses.CreateLesson(context.Background(), c.ID, &LessonInput{Title: title + " lesson", Order: i}, nil)
		require.NoError(t, err)
	}
	return c
}

func (f *fixture) courseRow(t *testing.T, id uint) *model.Course {
	c, err := f.catalog.CourseRepo.FindByID(id)
	require.NoError(t, err)
	return c
}

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fileHeader 通过 multipart 编解码得到真实的 FileHeader
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}
