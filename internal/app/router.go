package app

import (
	"coursemart_backend/docs"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/middleware"
	"coursemart_backend/internal/model"
	"coursemart_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(可选登录，登录后课程卡片带报名状态)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要登录的学员接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.ActiveAccountMiddleware(repos.user))
	a.registerStudentRoutes(authGroup, c)

	// 3. 管理员接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	public.Use(middleware.TryAuthMiddleware(cfg.JWT.Secret))
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/home", c.catalog.Home)
		public.GET("/courses", c.catalog.ListCourses)
		public.GET("/courses/lazy-load", c.catalog.LazyLoad)
		public.GET("/courses/:slug", c.catalog.CourseDetail)
		public.GET("/categories", c.catalog.Categories)
		public.GET("/categories/:id/courses", c.catalog.CategoryCourses)

		public.GET("/courses/:slug/reviews", c.review.ListReviews)
		public.GET("/courses/:slug/reviews/stats", c.review.ReviewStats)

		public.GET("/site/settings", c.site.GetSettings)
		public.GET("/site/banners", c.site.Banners)
		public.GET("/site/global-discount", c.discount.Banner)

		public.GET("/payments/instructions", c.payment.Instructions)
		public.GET("/payment-methods", c.payment.ActiveMethods)
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)
	group.PUT("/profile", c.auth.UpdateProfile)
	group.GET("/dashboard", c.dashboard.GetDashboard)

	// 报名与学习
	group.POST("/courses/:slug/enroll", c.enrollment.Enroll)
	group.GET("/courses/:slug/learn", c.enrollment.Learn)
	group.GET("/courses/:slug/lessons/:lessonId", c.enrollment.Lesson)
	group.POST("/lessons/:lessonId/complete", c.enrollment.CompleteLesson)
	group.GET("/my-courses", c.enrollment.MyCourses)

	// 评价
	group.POST("/courses/:slug/reviews", c.review.SaveReview)
	group.DELETE("/reviews/:id", c.review.DeleteReview)
	group.POST("/reviews/:id/helpful", c.review.MarkHelpful)

	// 支付
	group.POST("/courses/:slug/payments", c.payment.SubmitPayment)
	group.GET("/payments/:id", c.payment.GetPayment)
	group.POST("/payments/:id/screenshot", c.payment.UploadScreenshot)
	group.POST("/payments/:id/cancel", c.payment.CancelPayment)
	group.GET("/my-payments", c.payment.MyPayments)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.ActiveAccountMiddleware(repos.user),
		middleware.RoleMiddleware(model.Admin),
	)
	{
		admin.GET("/dashboard", c.dashboard.GetAdminDashboard)

		admin.GET("/users", c.user.GetUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.POST("/users/:id/disable", c.user.DisableUser)
		admin.POST("/users/:id/reset-password", c.user.ResetPassword)

		admin.POST("/categories", c.courseAdmin.CreateCategory)
		admin.PUT("/categories/:id", c.courseAdmin.UpdateCategory)
		admin.DELETE("/categories/:id", c.courseAdmin.DeleteCategory)

		admin.GET("/courses", c.courseAdmin.ListCourses)
		admin.POST("/courses", c.courseAdmin.CreateCourse)
		admin.POST("/courses/bulk", c.courseAdmin.BulkAction)
		admin.GET("/courses/:id", c.courseAdmin.GetCourse)
		admin.PUT("/courses/:id", c.courseAdmin.UpdateCourse)
		admin.DELETE("/courses/:id", c.courseAdmin.DeleteCourse)
		admin.POST("/courses/:id/thumbnail", c.courseAdmin.UploadThumbnail)
		admin.PUT("/courses/:id/discount", c.discount.SetCourseDiscount)
		admin.DELETE("/courses/:id/discount", c.discount.ClearCourseDiscount)

		admin.GET("/courses/:id/lessons", c.courseAdmin.ListLessons)
		admin.POST("/courses/:id/lessons", c.courseAdmin.CreateLesson)
		admin.PUT("/courses/:id/lessons/:lessonId", c.courseAdmin.UpdateLesson)
		admin.DELETE("/courses/:id/lessons/:lessonId", c.courseAdmin.DeleteLesson)

		admin.GET("/discounts", c.discount.ListGlobal)
		admin.POST("/discounts", c.discount.CreateGlobal)
		admin.POST("/discounts/sync", c.discount.Sync)
		admin.GET("/discounts/:id", c.discount.GetGlobal)
		admin.PUT("/discounts/:id", c.discount.UpdateGlobal)
		admin.DELETE("/discounts/:id", c.discount.DeleteGlobal)
		admin.POST("/discounts/:id/end", c.discount.EndNow)

		admin.GET("/reviews", c.review.AdminListReviews)
		admin.PUT("/reviews/:id/moderate", c.review.ModerateReview)

		admin.GET("/payments", c.payment.AdminListPayments)
		admin.POST("/payments/:id/approve", c.payment.ApprovePayment)
		admin.POST("/payments/:id/reject", c.payment.RejectPayment)

		admin.GET("/payment-methods", c.payment.AdminListMethods)
		admin.POST("/payment-methods", c.payment.CreateMethod)
		admin.PUT("/payment-methods/:id", c.payment.UpdateMethod)
		admin.POST("/payment-methods/:id/toggle", c.payment.ToggleMethod)
		admin.GET("/payment-settings", c.payment.GetSettings)
		admin.PUT("/payment-settings", c.payment.UpdateSettings)

		admin.PUT("/site/settings", c.site.UpdateSettings)
		admin.POST("/site/settings/reset", c.site.ResetSettings)
		admin.GET("/banners", c.site.AdminBanners)
		admin.POST("/banners", c.site.CreateBanner)
		admin.PUT("/banners/:id", c.site.UpdateBanner)
		admin.DELETE("/banners/:id", c.site.DeleteBanner)
	}
}
