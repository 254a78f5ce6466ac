package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/omomfi/district-reports-api/api/swagger"
	"github.com/omomfi/district-reports-api/internal/handler"
	"github.com/omomfi/district-reports-api/internal/middleware"
	"github.com/omomfi/district-reports-api/internal/models"
	"github.com/omomfi/district-reports-api/internal/repository"
	"github.com/omomfi/district-reports-api/internal/service"
	"github.com/omomfi/district-reports-api/pkg/cache"
	"github.com/omomfi/district-reports-api/pkg/config"
	"github.com/omomfi/district-reports-api/pkg/database"
	"github.com/omomfi/district-reports-api/pkg/logger"
	corsmiddleware "github.com/omomfi/district-reports-api/pkg/middleware/cors"
	reqidmiddleware "github.com/omomfi/district-reports-api/pkg/middleware/requestid"
)

// @title District Reports API
// @version 1.0.0
// @description Report submission and approval workflow for district offices
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, merge caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "district-reports-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	reportSvc := service.NewReportService(reportRepo, userRepo, cacheRepo, validate, logr)
	mergeSvc := service.NewMergeService(reportRepo, cacheRepo, cfg.Merge.CacheTTL, logr)
	metricsSvc := service.NewMetricsService()

	if cfg.Bootstrap.SeedUsers {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := userSvc.Bootstrap(ctx, cfg.Bootstrap.DefaultPassword); err != nil {
			logr.Error("failed to seed bootstrap users", zap.Error(err))
		}
		cancel()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler()
	reportHandler := handler.NewReportHandler(reportSvc, mergeSvc, metricsSvc, cfg.Uploads.MaxFileSizeBytes)
	userHandler := handler.NewUserHandler(userSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	protected := api.Group("", middleware.JWT(authSvc))
	{
		protected.GET("/enums", catalogHandler.Enums)

		reports := protected.Group("/reports")
		{
			reports.POST("", reportHandler.Upload)
			reports.GET("", reportHandler.List)
			reports.GET("/:code", reportHandler.Get)
			reports.PUT("/:code", reportHandler.Update)
			reports.DELETE("/:code", reportHandler.Delete)
			reports.POST("/:code/status", reportHandler.UpdateStatus)
			reports.PATCH("/:code/status", reportHandler.UpdateStatus)
			reports.GET("/:code/download", reportHandler.Download)
		}

		protected.GET("/merged-reports",
			middleware.RequireRoles(models.RoleMainOffice),
			reportHandler.Merged)

		users := protected.Group("/users", middleware.RequireRoles(models.RoleMainOffice))
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
