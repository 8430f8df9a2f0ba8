package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tutortrack/scheduling-analytics-api/api/swagger"
	"github.com/tutortrack/scheduling-analytics-api/internal/handler"
	"github.com/tutortrack/scheduling-analytics-api/internal/middleware"
	"github.com/tutortrack/scheduling-analytics-api/internal/models"
	"github.com/tutortrack/scheduling-analytics-api/internal/repository"
	"github.com/tutortrack/scheduling-analytics-api/internal/service"
	"github.com/tutortrack/scheduling-analytics-api/pkg/cache"
	"github.com/tutortrack/scheduling-analytics-api/pkg/config"
	"github.com/tutortrack/scheduling-analytics-api/pkg/database"
	"github.com/tutortrack/scheduling-analytics-api/pkg/logger"
	corsmiddleware "github.com/tutortrack/scheduling-analytics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutortrack/scheduling-analytics-api/pkg/middleware/requestid"
	"github.com/tutortrack/scheduling-analytics-api/pkg/storage"
)

// @title Scheduling Analytics API
// @version 1.0.0
// @description Filtering and aggregation service behind the tutoring-center scheduling dashboard
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Analytics.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, true)
	} else {
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Analytics.CacheTTL, logr, false)
	}

	source, err := buildDatasetSource(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("dataset source init failed", "error", err)
	}

	datasetSvc := service.NewDatasetService(source, metrics, logr)
	if err := datasetSvc.Reload(ctx); err != nil {
		// Serve 503s until an operator reloads successfully.
		logr.Warn("initial dataset load failed", zap.Error(err))
	}

	analyticsSvc := service.NewAnalyticsService(service.AnalyticsServiceParams{
		Dataset:  datasetSvc,
		Cache:    cacheSvc,
		Metrics:  metrics,
		Logger:   logr,
		CacheTTL: cfg.Analytics.CacheTTL,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Dataset:    datasetSvc,
		Cache:      cacheSvc,
		Logger:     logr,
		CacheTTL:   cfg.Dashboard.CacheTTL,
		TopTutors:  cfg.Dashboard.TopTutorsMax,
		TopCourses: cfg.Dashboard.TopCoursesMax,
	})
	authSvc := service.NewAuthService(nil, logr, service.AuthConfig{
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		Secret:            cfg.JWT.Secret,
		Expiry:            cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		archive, err := storage.NewArchive(cfg.Exports.ArchiveDir)
		if err != nil {
			logr.Sugar().Fatalw("export archive init failed", "error", err)
		}
		exportSvc = service.NewExportService(service.ExportServiceParams{
			Analytics: analyticsSvc,
			Archive:   archive,
			Signer:    storage.NewTokenSigner(cfg.JWT.Secret, cfg.Exports.ArchiveTTL),
			Logger:    logr,
			Config:    service.ExportConfig{ArchiveTTL: cfg.Exports.ArchiveTTL},
		})
		// Archive workers outlive the signal context so deferred Stop
		// can drain pending writes during shutdown.
		exportSvc.Start(context.Background())
		defer exportSvc.Stop()
	}

	r := buildRouter(cfg, logr, routerDeps{
		metrics:   metrics,
		dataset:   datasetSvc,
		analytics: analyticsSvc,
		dashboard: dashboardSvc,
		auth:      authSvc,
		exports:   exportSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "dataset_source", cfg.Dataset.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

type routerDeps struct {
	metrics   *service.MetricsService
	dataset   *service.DatasetService
	analytics *service.AnalyticsService
	dashboard *service.DashboardService
	auth      *service.AuthService
	exports   *service.ExportService
}

func buildDatasetSource(cfg *config.Config, logr *zap.Logger) (service.DatasetSource, error) {
	switch cfg.Dataset.Source {
	case config.DatasetSourcePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return repository.NewPostgresDatasetRepository(db), nil
	case config.DatasetSourceCSV, "":
		return repository.NewCSVDatasetRepository(cfg.Dataset.DataDir, logr), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(deps.metrics, deps.dataset)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authHandler := handler.NewAuthHandler(deps.auth)
	api.POST("/auth/login", authHandler.Login)

	analyticsHandler := handler.NewAnalyticsHandler(deps.analytics)
	analytics := api.Group("/analytics", middleware.JWT(deps.auth))
	analytics.GET("/aggregations", analyticsHandler.Names)
	analytics.GET("/aggregations/:name", analyticsHandler.Aggregate)
	analytics.GET("/summary", analyticsHandler.Summary)
	analytics.GET("/system", analyticsHandler.System)

	api.POST("/datasets/reload",
		middleware.JWT(deps.auth),
		middleware.RequireRoles(models.RoleAdmin),
		analyticsHandler.Reload,
	)

	dashboardHandler := handler.NewDashboardHandler(deps.dashboard)
	api.GET("/dashboard/overview", middleware.JWT(deps.auth), dashboardHandler.Overview)

	if deps.exports != nil {
		exportHandler := handler.NewExportHandler(deps.exports)
		exports := api.Group("/exports", middleware.JWT(deps.auth))
		exports.GET("/aggregations/:name", exportHandler.Aggregation)
		exports.GET("/archive/:token", exportHandler.Download)
	}

	return r
}
