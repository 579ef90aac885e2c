package controller

import (
	"bytes"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/middleware"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/database"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret-controller-test"

type server struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine

	users    *repository.UserRepository
	courses  *service.CourseService
	payments *service.PaymentService
	category *model.Category
	method   *model.PaymentMethod
}

// envelope 统一响应，data 延迟解析
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, util.RegisterValidators())

	db, err := database.OpenMemory()
	require.NoError(t, err)

	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
		Review: config.ReviewConfig{AutoApprove: true, HelpfulThreshold: 3},
	}

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

	storage := &service.StorageService{Provider: &service.LocalStorageProvider{Root: t.TempDir()}}
	media := service.NewMediaService(storage)
	discounts := service.NewDiscountService(repository.NewDiscountRepository(db), courseRepo, nil)
	catalog := service.NewCatalogService(courseRepo, categoryRepo, lessonRepo, reviewRepo, enrollmentRepo, paymentRepo, methodRepo, discounts)
	courses := service.NewCourseService(courseRepo, categoryRepo, lessonRepo, media, storage)
	enrollments := service.NewEnrollmentService(db, catalog, enrollmentRepo, progressRepo, lessonRepo, courseRepo)
	reviews := service.NewReviewService(db, catalog, reviewRepo, courseRepo, paymentRepo, cfg.Review)
	payments := service.NewPaymentService(db, catalog, paymentRepo, methodRepo, enrollmentRepo, courseRepo, settingsRepo,
		media, storage, &service.NotificationService{Mailer: service.LogMailer{}})
	site := service.NewSiteService(settingsRepo, repository.NewBannerRepository(db))
	dashboard := service.NewDashboardService(enrollmentRepo, progressRepo, paymentRepo, repository.NewDashboardRepository(db), enrollments)

	authC := NewAuthController(service.NewAuthService(userRepo, cfg))
	catalogC := NewCatalogController(catalog)
	enrollmentC := NewEnrollmentController(enrollments)
	reviewC := NewReviewController(reviews)
	paymentC := NewPaymentController(payments)
	discountC := NewDiscountController(discounts)
	courseC := NewCourseAdminController(courses)
	siteC := NewSiteController(site)
	dashboardC := NewDashboardController(dashboard)
	userC := NewUserController(service.NewUserService(userRepo))

	r := gin.New()
	r.GET("/health", NewHealthController(db, nil).HealthCheck)

	public := r.Group("/api", middleware.TryAuthMiddleware(testSecret))
	public.POST("/register", authC.Register)
	public.POST("/login", authC.Login)
	public.GET("/courses", catalogC.ListCourses)
	public.GET("/courses/:slug", catalogC.CourseDetail)
	public.GET("/courses/:slug/reviews", reviewC.ListReviews)
	public.GET("/site/settings", siteC.GetSettings)
	public.GET("/site/global-discount", discountC.Banner)

	auth := r.Group("/api", middleware.AuthMiddleware(testSecret), middleware.ActiveAccountMiddleware(userRepo))
	auth.GET("/profile", authC.GetProfile)
	auth.GET("/dashboard", dashboardC.GetDashboard)
	auth.POST("/courses/:slug/enroll", enrollmentC.Enroll)
	auth.GET("/courses/:slug/learn", enrollmentC.Learn)
	auth.POST("/courses/:slug/reviews", reviewC.SaveReview)
	auth.POST("/reviews/:id/helpful", reviewC.MarkHelpful)
	auth.POST("/courses/:slug/payments", paymentC.SubmitPayment)
	auth.GET("/payments/:id", paymentC.GetPayment)
	auth.POST("/payments/:id/cancel", paymentC.CancelPayment)

	admin := r.Group("/api/admin",
		middleware.AuthMiddleware(testSecret),
		middleware.ActiveAccountMiddleware(userRepo),
		middleware.RoleMiddleware(model.Admin))
	admin.POST("/courses", courseC.CreateCourse)
	admin.POST("/users/:id/disable", userC.DisableUser)
	admin.POST("/courses/bulk", courseC.BulkAction)
	admin.DELETE("/categories/:id", courseC.DeleteCategory)
	admin.PUT("/courses/:id/discount", discountC.SetCourseDiscount)
	admin.POST("/discounts", discountC.CreateGlobal)
	admin.POST("/payments/:id/approve", paymentC.ApprovePayment)
	admin.POST("/payments/:id/reject", paymentC.RejectPayment)

	s := &server{t: t, db: db, router: r, users: userRepo, courses: courses, payments: payments}

	s.category = &model.Category{Name: "Data Science"}
	require.NoError(t, categoryRepo.Create(s.category))
	s.method = &model.PaymentMethod{Name: model.JazzCash, AccountNumber: "0300-7654321", AccountTitle: "Course Mart", IsActive: true}
	require.NoError(t, methodRepo.Create(s.method))
	return s
}

// user 直接落库并返回登录 token
func (s *server) user(email string, role model.UserRole) (*model.User, string) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(s.t, err)
	u := &model.User{Name: email, Email: email, Password: string(hash), Role: role}
	require.NoError(s.t, s.users.Create(u))
	tok, err := util.GenerateJWT(u, testSecret, time.Hour)
	require.NoError(s.t, err)
	return u, tok
}

func (s *server) do(method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *server) json(method, path, token string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(b)
	}
	return s.do(method, path, token, body, "application/json")
}

func (s *server) form(path, token string, fields map[string]string) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(s.t, w.WriteField(k, v))
	}
	require.NoError(s.t, w.Close())
	return s.do(http.MethodPost, path, token, &body, w.FormDataContentType())
}

// decode 解析 data 字段
func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v), string(env.Data))
}
