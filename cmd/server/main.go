package main

import (
	"context"
	"log"
	"os"

	"github.com/florapedia/api/internal/cache"
	"github.com/florapedia/api/internal/config"
	"github.com/florapedia/api/internal/database"
	"github.com/florapedia/api/internal/handler"
	"github.com/florapedia/api/internal/middleware"
	"github.com/florapedia/api/internal/model"
	"github.com/florapedia/api/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		// Continue without Redis cache (fail-open)
	}

	// Google OAuth is only usable when credentials are configured
	var googleConfig *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		googleConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	} else {
		log.Println("Warning: Google OAuth credentials not set, /auth/google is disabled")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret, googleConfig, cfg.FrontendURL)
	plantHandler := handler.NewPlantHandler(db, redisCache)
	familyHandler := handler.NewFamilyHandler(db, redisCache)
	userHandler := handler.NewUserHandler(db)
	contributionHandler := handler.NewContributionHandler(db, redisCache)
	historyHandler := handler.NewHistoryHandler(db, redisCache)
	adminHandler := handler.NewAdminHandler(db)
	exportHandler := handler.NewExportHandler(db)

	// Initialize and start background maintenance scheduler if enabled
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.MaintenanceEnabled {
		maintenance = scheduler.NewMaintenanceScheduler(db, scheduler.SchedulerConfig{
			Interval: cfg.MaintenanceEvery,
		})
		go maintenance.Start(context.Background())
		log.Println("Background maintenance scheduler started")
	}

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(middleware.MetricsMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Scheduler status
	r.GET("/scheduler/status", func(c *gin.Context) {
		if maintenance != nil {
			c.JSON(200, maintenance.GetStatus())
		} else {
			c.JSON(200, gin.H{"enabled": false, "message": "Maintenance scheduler is disabled"})
		}
	})

	// Auth routes
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/google", authHandler.GoogleAuth)
		authGroup.GET("/google/callback", authHandler.GoogleCallback)
		authGroup.POST("/refresh", authHandler.RefreshToken)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", middleware.AuthMiddleware(cfg.JWTSecret), authHandler.Me)
	}

	// API routes
	api := r.Group("/api")
	{
		staff := middleware.RoleMiddleware(cfg.JWTSecret, model.RoleAdmin, model.RoleSuperAdmin)
		superAdmin := middleware.RoleMiddleware(cfg.JWTSecret, model.RoleSuperAdmin)

		// Plants
		api.GET("/plants/list", plantHandler.List)
		api.GET("/plants/detail/:id", plantHandler.Detail)
		api.POST("/plants/create", staff, plantHandler.Create)
		api.PUT("/plants/update/:id", staff, plantHandler.Update)
		api.DELETE("/plants/delete/:id", staff, plantHandler.Delete)

		// Families and attributes
		api.GET("/plants/families/list", familyHandler.List)
		api.GET("/plants/families/map", familyHandler.FamilyMap)
		api.POST("/plants/families/create", staff, familyHandler.Create)
		api.DELETE("/plants/families/delete/:id", staff, familyHandler.Delete)
		api.GET("/plants/attributes/list", familyHandler.ListAttributes)

		// Contributions
		api.POST("/contributes/submit", middleware.AuthMiddleware(cfg.JWTSecret), contributionHandler.Submit)
		api.GET("/contributes/list", staff, contributionHandler.List)
		api.GET("/contributes/detail/:id", staff, contributionHandler.Detail)
		api.GET("/contributes/compare/:id", staff, contributionHandler.Compare)
		api.PATCH("/contributes/moderate/:id", staff, contributionHandler.Moderate)

		// History
		api.GET("/history/list", staff, historyHandler.List)
		api.POST("/history/rollback/:id", staff, historyHandler.Rollback)

		// Users
		api.GET("/users/list", staff, userHandler.List)
		api.PATCH("/users/role/:id", superAdmin, userHandler.UpdateRole)
		api.PATCH("/users/ban/:id", staff, userHandler.Ban)
		api.DELETE("/users/delete/:id", superAdmin, userHandler.Delete)

		// Admin dashboard
		api.GET("/admin/stats", staff, adminHandler.GetStats)
		api.GET("/admin/analytics/moderation", staff, adminHandler.GetModerationAnalytics)
		api.GET("/admin/export", staff, exportHandler.Export)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("API server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
