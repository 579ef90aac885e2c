package app

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/controller"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/configwatcher"
	"coursemart_backend/pkg/database"
	"coursemart_backend/pkg/logger"
	"coursemart_backend/pkg/monitoring"
	"coursemart_backend/pkg/security"
	"coursemart_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 请求体上限，覆盖视频上传
const maxBodyBytes = 512 << 20

type App struct {
	Config          *config.Config
	ConfigPath      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user          *repository.UserRepository
	category      *repository.CategoryRepository
	course        *repository.CourseRepository
	lesson        *repository.LessonRepository
	enrollment    *repository.EnrollmentRepository
	progress      *repository.ProgressRepository
	review        *repository.ReviewRepository
	discount      *repository.DiscountRepository
	payment       *repository.PaymentRepository
	paymentMethod *repository.PaymentMethodRepository
	settings      *repository.SettingsRepository
	banner        *repository.BannerRepository
	dashboard     *repository.DashboardRepository
}

type services struct {
	auth         *service.AuthService
	user         *service.UserService
	storage      *service.StorageService
	media        *service.MediaService
	notification *service.NotificationService
	discount     *service.DiscountService
	catalog      *service.CatalogService
	course       *service.CourseService
	enrollment   *service.EnrollmentService
	review       *service.ReviewService
	payment      *service.PaymentService
	site         *service.SiteService
	dashboard    *service.DashboardService
	scheduler    *service.SchedulerService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	catalog     *controller.CatalogController
	enrollment  *controller.EnrollmentController
	review      *controller.ReviewController
	payment     *controller.PaymentController
	discount    *controller.DiscountController
	courseAdmin *controller.CourseAdminController
	site        *controller.SiteController
	dashboard   *controller.DashboardController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		category:      repository.NewCategoryRepository(db),
		course:        repository.NewCourseRepository(db),
		lesson:        repository.NewLessonRepository(db),
		enrollment:    repository.NewEnrollmentRepository(db),
		progress:      repository.NewProgressRepository(db),
		review:        repository.NewReviewRepository(db),
		discount:      repository.NewDiscountRepository(db),
		payment:       repository.NewPaymentRepository(db),
		paymentMethod: repository.NewPaymentMethodRepository(db),
		settings:      repository.NewSettingsRepository(db),
		banner:        repository.NewBannerRepository(db),
		dashboard:     repository.NewDashboardRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.media = service.NewMediaService(s.storage)
	s.notification = service.NewNotificationService(&cfg.Mail)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.discount = service.NewDiscountService(repos.discount, repos.course, rdb)

	s.catalog = service.NewCatalogService(
		repos.course,
		repos.category,
		repos.lesson,
		repos.review,
		repos.enrollment,
		repos.payment,
		repos.paymentMethod,
		s.discount,
	)

	s.course = service.NewCourseService(repos.course, repos.category, repos.lesson, s.media, s.storage)
	s.enrollment = service.NewEnrollmentService(db, s.catalog, repos.enrollment, repos.progress, repos.lesson, repos.course)
	s.review = service.NewReviewService(db, s.catalog, repos.review, repos.course, repos.payment, cfg.Review)

	s.payment = service.NewPaymentService(
		db,
		s.catalog,
		repos.payment,
		repos.paymentMethod,
		repos.enrollment,
		repos.course,
		repos.settings,
		s.media,
		s.storage,
		s.notification,
	)

	s.site = service.NewSiteService(repos.settings, repos.banner)
	s.dashboard = service.NewDashboardService(repos.enrollment, repos.progress, repos.payment, repos.dashboard, s.enrollment)

	if cfg.Scheduler.Enabled {
		scheduler, err := service.NewSchedulerService(&cfg.Scheduler, s.discount)
		if err != nil {
			return nil, err
		}
		s.scheduler = scheduler
	}

	return s, nil
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user),
		catalog:     controller.NewCatalogController(s.catalog),
		enrollment:  controller.NewEnrollmentController(s.enrollment),
		review:      controller.NewReviewController(s.review),
		payment:     controller.NewPaymentController(s.payment),
		discount:    controller.NewDiscountController(s.discount),
		courseAdmin: controller.NewCourseAdminController(s.course),
		site:        controller.NewSiteController(s.site),
		dashboard:   controller.NewDashboardController(s.dashboard),
		health:      controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.BodyLimit(maxBodyBytes))
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchConfig 配置文件变更时回调已注册的处理函数
func (a *App) watchConfig(ctx context.Context) {
	if a.ConfigPath == "" {
		return
	}
	file := filepath.Join(a.ConfigPath, "config.yaml")
	if _, err := os.Stat(file); err != nil {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, file, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

// NewApp 初始化全部组件；MigrateOnly 时迁移完成即返回，Router 为空
func NewApp(cfg *config.Config, configPath string) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if err := util.RegisterValidators(); err != nil {
		return nil, err
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}

	if cfg.Server.Mode == "debug" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:     cfg,
		ConfigPath: configPath,
		DB:         db,
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存只用于折扣查询，连接失败时降级为直接查库
		logger.Log.Warn("Redis unavailable, discount cache disabled", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.review.SetPolicy(newCfg.Review)
	})

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("coursemart", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	a.watchConfig(watchCtx)

	if a.services.scheduler != nil {
		a.services.scheduler.Start()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.services.scheduler != nil {
		a.services.scheduler.Stop(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
