package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"admin-service/internal/cache"
	"admin-service/internal/config"
	"admin-service/internal/handlers"
	"admin-service/internal/middleware"
	"admin-service/internal/repository"
	"admin-service/internal/services"
)

// @title Admin Service API
// @version 1.0.0
// @description Back-office administration service: admin accounts, user management and RBAC

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Check if running health check
	if len(os.Args) > 1 && os.Args[1] == "health" {
		resp, err := http.Get("http://localhost:8080/health")
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}
	baseLog := logger.WithField("service", "admin-service")

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// Production deployments run external migrations; auto-migrate is opt-in.
	if os.Getenv("DB_AUTO_MIGRATE") == "true" {
		if err := config.AutoMigrate(db); err != nil {
			log.Fatal("Failed to migrate database schema:", err)
		}
		baseLog.Info("database schema migrated")
	}

	// Set database for health checks
	handlers.SetDB(db)

	// Sessions cannot degrade gracefully: without Redis nobody can log in.
	sessions, err := cache.NewSessionStore(
		cfg.RedisHost,
		cfg.RedisPort,
		cfg.RedisPassword,
		cfg.RedisDB,
		cfg.SessionTTL,
	)
	if err != nil {
		log.Fatal("Failed to initialize session store:", err)
	}
	defer sessions.Close()

	permCache, err := cache.NewPermissionCache(
		cfg.RedisHost,
		cfg.RedisPort,
		cfg.RedisPassword,
		cfg.RedisDB,
		cfg.CacheTTL,
	)
	if err != nil {
		baseLog.WithError(err).Warn("failed to initialize permission cache, continuing without caching")
	} else if permCache.IsAvailable() {
		baseLog.Info("permission cache initialized")
		defer permCache.Close()
	} else {
		baseLog.Warn("permission cache unavailable, continuing without caching")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	rbacRepo := repository.NewRBACRepository(db)

	// Services
	userService := services.NewUserService(userRepo, cfg.BcryptCost, baseLog.WithField("component", "user_service"))
	adminService := services.NewAdminService(adminRepo, cfg.BcryptCost, cfg.JWTSecret, baseLog.WithField("component", "admin_service"))
	rbacService := services.NewRBACService(rbacRepo, userRepo, adminRepo, baseLog.WithField("component", "rbac_service"))

	// Handlers
	cookieSecure := cfg.Environment == "production"
	authHandler := handlers.NewAuthHandler(adminService, sessions, cookieSecure, cfg.SessionTTL, baseLog.WithField("component", "auth_handler"))
	userHandler := handlers.NewUserHandler(userService, rbacService, cfg.DefaultPageSize, cfg.MaxPageSize, baseLog.WithField("component", "user_handler"))
	adminHandler := handlers.NewAdminHandler(adminService, rbacService, permCache, cfg.DefaultPageSize, cfg.MaxPageSize, baseLog.WithField("component", "admin_handler"))
	roleHandler := handlers.NewRoleHandler(rbacService, permCache, cfg.DefaultPageSize, cfg.MaxPageSize, baseLog.WithField("component", "role_handler"))

	authMiddleware := middleware.NewAuthMiddleware(sessions, adminService, rbacService, permCache, baseLog.WithField("component", "auth_middleware"))

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ErrorHandler(baseLog.WithField("component", "error_handler")))

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")

	// Public auth routes
	api.POST("/admin/login", authHandler.Login)
	api.POST("/admin/password/reset-request", authHandler.RequestPasswordReset)
	api.POST("/admin/password/reset", authHandler.ResetPassword)

	// Everything below requires a live session.
	protected := api.Group("")
	protected.Use(authMiddleware.RequireSession())

	protected.POST("/admin/logout", authHandler.Logout)
	protected.GET("/admin/profile", authHandler.GetProfile)
	protected.PUT("/admin/profile", authHandler.UpdateProfile)
	protected.PUT("/admin/password", authHandler.ChangePassword)

	users := protected.Group("/admin/users")
	{
		users.GET("", authMiddleware.RequirePermission("users.view"), userHandler.List)
		users.POST("", authMiddleware.RequirePermission("users.create"), userHandler.Create)
		users.DELETE("", authMiddleware.RequirePermission("users.delete"), userHandler.BulkDelete)
		users.POST("/action", authMiddleware.RequirePermission("users.update"), userHandler.BulkAction)
		users.GET("/export", authMiddleware.RequirePermission("users.export"), userHandler.Export)
		users.GET("/:id", authMiddleware.RequirePermission("users.view"), userHandler.Get)
		users.PUT("/:id", authMiddleware.RequirePermission("users.update"), userHandler.Update)
		users.GET("/:id/permissions", authMiddleware.RequirePermission("users.view"), userHandler.Permissions)
		users.POST("/:id/roles", authMiddleware.RequirePermission("roles.assign"), userHandler.AssignRole)
		users.DELETE("/:id/roles/:roleId", authMiddleware.RequirePermission("roles.assign"), userHandler.UnassignRole)
	}

	admins := protected.Group("/admin/admins")
	{
		admins.GET("", authMiddleware.RequirePermission("admins.view"), adminHandler.List)
		admins.POST("", authMiddleware.RequirePermission("admins.create"), adminHandler.Create)
		admins.DELETE("", authMiddleware.RequirePermission("admins.delete"), adminHandler.BulkDelete)
		admins.POST("/action", authMiddleware.RequirePermission("admins.update"), adminHandler.BulkAction)
		admins.GET("/:id", authMiddleware.RequirePermission("admins.view"), adminHandler.Get)
		admins.PUT("/:id", authMiddleware.RequirePermission("admins.update"), adminHandler.Update)
		admins.GET("/:id/permissions", authMiddleware.RequirePermission("admins.view"), adminHandler.Permissions)
		admins.POST("/:id/roles", authMiddleware.RequirePermission("roles.assign"), adminHandler.AssignRole)
		admins.DELETE("/:id/roles/:roleId", authMiddleware.RequirePermission("roles.assign"), adminHandler.UnassignRole)
	}

	roles := protected.Group("/roles")
	{
		roles.GET("", authMiddleware.RequirePermission("roles.view"), roleHandler.List)
		roles.GET("/permissions", authMiddleware.RequirePermission("roles.view"), roleHandler.PermissionMatrix)
		roles.POST("", authMiddleware.RequirePermission("roles.manage"), roleHandler.Create)
		roles.DELETE("", authMiddleware.RequirePermission("roles.manage"), roleHandler.BulkDelete)
		roles.POST("/action", authMiddleware.RequirePermission("roles.manage"), roleHandler.BulkAction)
		roles.GET("/:id", authMiddleware.RequirePermission("roles.view"), roleHandler.Get)
		roles.PUT("/:id", authMiddleware.RequirePermission("roles.manage"), roleHandler.Update)
		roles.PUT("/:id/permissions", authMiddleware.RequirePermission("roles.manage"), roleHandler.SetPermissions)
	}

	protected.GET("/permissions", authMiddleware.RequirePermission("roles.view"), roleHandler.ListPermissions)
	protected.POST("/permissions", authMiddleware.RequirePermission("roles.manage"), roleHandler.CreatePermission)

	baseLog.WithField("port", cfg.Port).Info("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
