package main

import (
	"log"

	"github.com/Baaaki/course-hub/internal/cache"
	"github.com/Baaaki/course-hub/internal/config"
	"github.com/Baaaki/course-hub/internal/database"
	"github.com/Baaaki/course-hub/internal/handler"
	"github.com/Baaaki/course-hub/internal/middleware"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/repository"
	"github.com/Baaaki/course-hub/internal/service"
	"github.com/Baaaki/course-hub/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Redis backs the rate limiter and the course catalog cache
	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	catalogCache := cache.NewRedisCatalogCacheWithClient(redisClient, cfg.CatalogCacheTTL)

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)
	courseRepo := repository.NewCourseRepository(database.DB)
	enrollmentRepo := repository.NewEnrollmentRepository(database.DB)
	profileRepo := repository.NewProfileRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	userService := service.NewUserService(database.DB, userRepo, profileRepo, enrollmentRepo)
	categoryService := service.NewCategoryService(database.DB, categoryRepo, courseRepo)
	courseService := service.NewCourseService(database.DB, courseRepo, categoryRepo, userRepo, catalogCache)
	enrollmentService := service.NewEnrollmentService(database.DB, enrollmentRepo, userRepo, courseRepo)
	profileService := service.NewProfileService(database.DB, profileRepo, userRepo)

	// Bootstrap an administrator if the system has none
	userService.EnsureDefaultAdmin(cfg.AdminLogin, cfg.AdminPassword, cfg.AdminAutoCreate)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	courseHandler := handler.NewCourseHandler(courseService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	profileHandler := handler.NewProfileHandler(profileService)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))
	router.Use(rateLimiter.Middleware())

	registerRoutes(router, cfg, userRepo,
		authHandler, userHandler, categoryHandler, courseHandler, enrollmentHandler, profileHandler)

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	userRepo *repository.UserRepository,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	categoryHandler *handler.CategoryHandler,
	courseHandler *handler.CourseHandler,
	enrollmentHandler *handler.EnrollmentHandler,
	profileHandler *handler.ProfileHandler,
) {
	auth := middleware.AuthMiddleware(cfg.JWTSecret, userRepo)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	teacherOnly := middleware.RequireRoles(models.RoleTeacher)
	teacherOrAdmin := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	api := router.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)

	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.GetAll)
		categories.GET("/:id", categoryHandler.GetByID)
		categories.POST("", auth, adminOnly, categoryHandler.Create)
		categories.PUT("/:id", auth, adminOnly, categoryHandler.Update)
		categories.DELETE("/:id", auth, adminOnly, categoryHandler.Delete)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", courseHandler.GetAll)
		courses.GET("/:id", courseHandler.GetByID)
		courses.GET("/teacher/:teacherId", courseHandler.GetByTeacher)
		courses.GET("/category/:categoryId", courseHandler.GetByCategory)
		courses.GET("/my", auth, teacherOnly, courseHandler.GetMine)
		// Coarse role gate here; the service re-checks ownership
		courses.POST("", auth, teacherOrAdmin, courseHandler.Create)
		courses.PUT("/:id", auth, teacherOrAdmin, courseHandler.Update)
		courses.DELETE("/:id", auth, teacherOrAdmin, courseHandler.Delete)
	}

	enrollments := api.Group("/enrollments", auth)
	{
		enrollments.GET("", enrollmentHandler.GetAll)
		enrollments.GET("/:id", enrollmentHandler.GetByID)
		enrollments.GET("/user/:userId", enrollmentHandler.GetByUser)
		enrollments.GET("/course/:courseId", enrollmentHandler.GetByCourse)
		enrollments.GET("/course/:courseId/active-count", enrollmentHandler.GetActiveCount)
		enrollments.POST("", enrollmentHandler.Create)
		enrollments.PATCH("/:id/status", enrollmentHandler.UpdateStatus)
		enrollments.DELETE("/:id", enrollmentHandler.Delete)
	}

	profiles := api.Group("/profiles", auth)
	{
		profiles.GET("/me", profileHandler.GetMine)
		profiles.GET("/user/:userId", profileHandler.GetByUser)
		profiles.PUT("/me", profileHandler.UpdateMine)
		profiles.PUT("/user/:userId", adminOnly, profileHandler.UpdateByUser)
	}

	users := api.Group("/users", auth)
	{
		users.GET("", adminOnly, userHandler.GetAll)
		users.POST("", adminOnly, userHandler.Create)
		users.DELETE("/:id", adminOnly, userHandler.Delete)
		users.PUT("/:id/role", adminOnly, userHandler.UpdateRole)
		users.POST("/:id/change-password", userHandler.ChangePassword)
	}
}
