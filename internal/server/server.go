package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/config"
	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/jobs"
	"github.com/prajaktamali15/e-learning-platform/internal/middleware"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
	"github.com/prajaktamali15/e-learning-platform/pkg/storage"
	"github.com/prajaktamali15/e-learning-platform/pkg/token"

	adminHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/admin/delivery/http"
	adminService "github.com/prajaktamali15/e-learning-platform/internal/modules/admin/service"

	analyticsHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/analytics/delivery/http"
	analyticsRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/analytics/repository"
	analyticsService "github.com/prajaktamali15/e-learning-platform/internal/modules/analytics/service"

	attachmentHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/attachment/delivery/http"
	attachmentRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/attachment/repository"
	attachmentService "github.com/prajaktamali15/e-learning-platform/internal/modules/attachment/service"

	categoryHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/category/delivery/http"
	categoryRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/category/repository"
	categoryService "github.com/prajaktamali15/e-learning-platform/internal/modules/category/service"

	certificateService "github.com/prajaktamali15/e-learning-platform/internal/modules/certificate/service"

	courseHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/course/delivery/http"
	courseRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	courseService "github.com/prajaktamali15/e-learning-platform/internal/modules/course/service"

	enrollmentHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/delivery/http"
	enrollmentRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/repository"
	enrollmentService "github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/service"

	notiHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/notification/delivery/http"
	notifRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/notification/repository"
	notifService "github.com/prajaktamali15/e-learning-platform/internal/modules/notification/service"

	progressHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/progress/delivery/http"
	progressRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/progress/repository"
	progressService "github.com/prajaktamali15/e-learning-platform/internal/modules/progress/service"

	searchService "github.com/prajaktamali15/e-learning-platform/internal/modules/search/service"

	userHttp "github.com/prajaktamali15/e-learning-platform/internal/modules/user/delivery/http"
	userRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/user/repository"
	userService "github.com/prajaktamali15/e-learning-platform/internal/modules/user/service"
)

const certificateURLPrefix = "/certificates"

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *jobs.Scheduler
	log         *logger.Logger
}

// NewServer wires every module. redisClient may be nil; the features that
// depend on it degrade instead of failing.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logger.Logger) (*Server, error) {
	files, err := newFileStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageDriver, err)
	}

	// Certificates are always rendered to local disk and served statically.
	certificateFiles, err := storage.NewLocalStorage(cfg.CertificateDir, certificateURLPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize certificate storage: %w", err)
	}

	var indexer searchService.CourseIndexer
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(meiliHost(cfg.MeiliSearchHost), meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		indexer = searchService.NewMeiliSearchService(meiliClient, log)
	} else {
		log.Warn("MEILISEARCH_HOST not set, course search falls back to the database")
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, tokens, redisClient, userService.LoginThrottle{
		MaxAttempts: cfg.LoginMaxAttempts,
		Window:      cfg.LoginLockout,
	})
	authHandler := userHttp.NewAuthHandler(authSvc)
	profileSvc := userService.NewProfileService(userRepository, files, cfg.MaxPhotoBytes, log)
	profileHandler := userHttp.NewProfileHandler(profileSvc)

	categorySvc := categoryService.NewCategoryService(categoryRepo.NewCategoryRepository(db))
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepo.NewAttachmentRepository(db), files, cfg.MaxLessonFileBytes, log)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	// Notification Module
	notificationSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), redisClient, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins, log)

	// Course Module
	courseRepository := courseRepo.NewCourseRepository(db)
	lessonRepository := courseRepo.NewLessonRepository(db)
	courseSvc := courseService.NewCourseService(courseRepository, lessonRepository, categorySvc, attachmentSvc, notificationSvc, indexer, log)
	courseHandler := courseHttp.NewCourseHandler(courseSvc)

	// Enrollment Module
	certificateSvc := certificateService.NewCertificateService(certificateFiles)
	enrollmentSvc := enrollmentService.NewEnrollmentService(
		enrollmentRepo.NewEnrollmentRepository(db),
		courseRepository,
		lessonRepository,
		certificateSvc,
		notificationSvc,
		redisClient,
		cfg.CertificateLockTTL,
		log,
	)
	enrollmentHandler := enrollmentHttp.NewEnrollmentHandler(enrollmentSvc)

	progressSvc := progressService.NewProgressService(progressRepo.NewProgressRepository(db), courseRepository)
	progressHandler := progressHttp.NewProgressHandler(progressSvc)

	analyticsSvc := analyticsService.NewAnalyticsService(analyticsRepo.NewAnalyticsRepository(db), redisClient, cfg.AnalyticsCacheTTL, log)
	analyticsHandler := analyticsHttp.NewAnalyticsHandler(analyticsSvc)

	adminSvc := adminService.NewAdminService(courseRepository, userRepository)
	adminHandler := adminHttp.NewAdminHandler(adminSvc, courseSvc)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	if indexer != nil {
		if err := scheduler.Register(jobs.NewReindexJob(cfg.ReindexSchedule, courseRepository, indexer, log)); err != nil {
			return nil, err
		}
	}
	if err := scheduler.Register(jobs.NewMediaCleanupJob(cfg.MediaCleanupSchedule, attachmentSvc, log)); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz"},
	}))

	s := &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
		log:         log,
	}

	authMiddleware := middleware.NewAuthMiddleware(tokens)
	requireAuth := authMiddleware.RequireAuth()
	adminOnly := middleware.RequireRoles(entity.RoleAdmin)
	instructorOnly := middleware.RequireRoles(entity.RoleInstructor)
	studentOnly := middleware.RequireRoles(entity.RoleStudent)
	staffOnly := middleware.RequireRoles(entity.RoleAdmin, entity.RoleInstructor)

	// Public routes (no auth required)
	router.GET("/healthz", s.healthz)
	if cfg.StorageDriver == "local" {
		router.Static("/uploads", cfg.UploadDir)
	}
	router.Static(certificateURLPrefix, cfg.CertificateDir)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	router.GET("/categories", categoryHandler.GetAllCategories)

	courses := router.Group("/courses")
	{
		courses.GET("/public", authMiddleware.OptionalAuth(), courseHandler.ListPublic)
		courses.GET("/search", courseHandler.PublicSearch)
		courses.GET("/:id", courseHandler.GetCourse)

		authed := courses.Group("", requireAuth)
		authed.GET("/auth/me", profileHandler.GetMe)
		authed.GET("/student", studentOnly, courseHandler.ListForStudent)

		instructor := authed.Group("", instructorOnly)
		instructor.POST("", courseHandler.CreateCourse)
		instructor.PATCH("/:id/status", courseHandler.UpdateStatus)
		instructor.DELETE("/:id", courseHandler.DeleteCourse)
		instructor.GET("/analytics", analyticsHandler.InstructorCourses)
		instructor.POST("/:id/lessons", courseHandler.AddLesson)
		instructor.POST("/:id/prerequisites", courseHandler.AddPrerequisite)
		instructor.POST("/:id/request-publish", courseHandler.RequestPublish)
		instructor.GET("/instructor/me", courseHandler.MyCourses)
	}

	// Protected routes
	protected := router.Group("")
	protected.Use(requireAuth)
	{
		instructorCourses := protected.Group("/instructor/courses", instructorOnly)
		{
			instructorCourses.GET("/me", profileHandler.GetMe)
			instructorCourses.PATCH("/me", profileHandler.UpdateMe)
			instructorCourses.GET("/me/pending", courseHandler.MyPendingCourses)
			instructorCourses.GET("/me/courses", courseHandler.MyCourses)
			instructorCourses.POST("", courseHandler.CreateCourse)
			instructorCourses.PATCH("/:id", courseHandler.UpdateCourse)
			instructorCourses.GET("/search", courseHandler.SearchOwn)
			instructorCourses.POST("/:id/lessons", courseHandler.AddLesson)
			instructorCourses.PATCH("/lessons/:lessonId", courseHandler.UpdateLesson)
			instructorCourses.DELETE("/lessons/:lessonId", courseHandler.DeleteLesson)
			instructorCourses.PATCH("/:id/cancel-request", courseHandler.CancelPublishRequest)
			instructorCourses.PATCH("/:id/status", courseHandler.UpdateStatus)
			instructorCourses.DELETE("/:id", courseHandler.DeleteCourse)
			instructorCourses.POST("/uploads", attachmentHandler.UploadAttachment)
		}

		enrollments := protected.Group("/enrollments")
		{
			enrollments.POST("/course/:id", studentOnly, enrollmentHandler.Enroll)
			enrollments.GET("/my-courses", studentOnly, enrollmentHandler.MyCourses)
			enrollments.GET("/course-details/:id", studentOnly, enrollmentHandler.CourseDetails)
			enrollments.PATCH("/course/:id/complete-lesson", studentOnly, enrollmentHandler.CompleteLesson)
			enrollments.PATCH("/course/:id/generate-certificate", studentOnly, enrollmentHandler.GenerateCertificate)
			enrollments.GET("/course/:id/students", staffOnly, enrollmentHandler.EnrolledStudents)
		}

		progress := protected.Group("/progress")
		{
			progress.POST("/course/:id", studentOnly, progressHandler.Upsert)
			progress.GET("/my-courses", studentOnly, progressHandler.MyProgress)
			progress.GET("/course/:id", staffOnly, progressHandler.CourseProgress)
		}

		analytics := protected.Group("/analytics")
		{
			analytics.GET("/instructor/courses", instructorOnly, analyticsHandler.InstructorCourses)
			analytics.GET("/course/:id/students", staffOnly, analyticsHandler.TotalStudents)
			analytics.GET("/course/:id/completion", staffOnly, analyticsHandler.CompletionRate)
			analytics.GET("/courses", staffOnly, analyticsHandler.CoursesProgress)
		}

		adminGroup := protected.Group("/admin", adminOnly)
		{
			adminGroup.GET("/courses", adminHandler.GetAllCourses)
			adminGroup.GET("/courses/:id", adminHandler.GetCourse)
			adminGroup.PATCH("/courses/:id/approve", adminHandler.ApproveCourse)
			adminGroup.PATCH("/courses/:id/reject", adminHandler.RejectCourse)
			adminGroup.DELETE("/courses/:id", adminHandler.DeleteCourse)
			adminGroup.GET("/users", profileHandler.ListUsers)
			adminGroup.GET("/users/:id", profileHandler.GetUser)
			adminGroup.DELETE("/users/:id", profileHandler.DeleteUser)
			adminGroup.GET("/search", adminHandler.Search)
			adminGroup.GET("/analytics", analyticsHandler.AdminDashboard)
			adminGroup.GET("/profile", profileHandler.GetMe)
			adminGroup.PATCH("/profile", profileHandler.UpdateMe)
			adminGroup.GET("/categories", categoryHandler.GetAllCategories)
			adminGroup.POST("/categories", categoryHandler.CreateCategory)
			adminGroup.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		}

		users := protected.Group("/users")
		{
			users.GET("", adminOnly, profileHandler.ListUsers)
			users.GET("/me", profileHandler.GetMe)
			users.PATCH("/me", profileHandler.UpdateMe)
			users.PATCH("/me/password", profileHandler.ChangePassword)
			users.GET("/me/enrollments", studentOnly, enrollmentHandler.MyCourses)
		}

		protected.PUT("/students/profile/photo", profileHandler.UpdatePhoto)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return s, nil
}

// Run serves addr and starts the job scheduler until ctx is cancelled, then
// drains in-flight requests and running jobs.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		s.log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return serveErr
}

// Scheduler exposes the background jobs, e.g. for one-off runs at startup.
func (s *Server) Scheduler() *jobs.Scheduler {
	return s.scheduler
}

func (s *Server) healthz(c *gin.Context) {
	ctx := c.Request.Context()

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "unreachable"})
		return
	}

	status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	}
	c.JSON(http.StatusOK, status)
}

func newFileStorage(cfg *config.Config) (storage.FileStorage, error) {
	if cfg.StorageDriver == "cloudinary" {
		return storage.NewCloudinaryStorage(cfg.CloudinaryUploadFolder)
	}
	return storage.NewLocalStorage(cfg.UploadDir, "/uploads")
}

func meiliHost(host string) string {
	if !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
