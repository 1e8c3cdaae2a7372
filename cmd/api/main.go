package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mbayefall/palmares-api/internal/handler"
	"github.com/mbayefall/palmares-api/internal/middleware"
	"github.com/mbayefall/palmares-api/internal/repository"
	"github.com/mbayefall/palmares-api/internal/service"
	"github.com/mbayefall/palmares-api/pkg/cache"
	"github.com/mbayefall/palmares-api/pkg/config"
	"github.com/mbayefall/palmares-api/pkg/database"
	"github.com/mbayefall/palmares-api/pkg/export"
	"github.com/mbayefall/palmares-api/pkg/logger"
	corsmiddleware "github.com/mbayefall/palmares-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mbayefall/palmares-api/pkg/middleware/requestid"
	"github.com/mbayefall/palmares-api/pkg/storage"
)

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API degrades gracefully without Redis; only the filter-option
		// cache is lost.
		logr.Sugar().Warnw("redis unavailable, filter caching disabled", "error", err)
		redisClient = nil
	}

	errorLogStore, err := storage.NewLocalStore(cfg.Import.ErrorLogDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init error log storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	yearRepo := repository.NewSchoolYearRepository(db)
	classRepo := repository.NewClassRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	})
	reportSvc := service.NewErrorReportService(errorLogStore, export.NewCSVExporter(), logr)
	importSvc := service.NewImportService(yearRepo, classRepo, sectionRepo, studentRepo, resultRepo, reportSvc, cacheRepo, metricsSvc, logr, service.ImportServiceConfig{
		TempDir: cfg.Import.TempDir,
	})
	resultSvc := service.NewResultService(resultRepo, classRepo, sectionRepo, yearRepo, cacheRepo, logr, service.ResultServiceConfig{
		PageSize:       cfg.Results.PageSize,
		FilterCacheTTL: cfg.Results.FilterCacheTTL,
	})
	exportSvc := service.NewExportService(resultRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr, cfg.Results.ExportTitle)
	importLogSvc := service.NewImportLogService(errorLogStore, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	importHandler := handler.NewImportHandler(importSvc, cfg.Import.MaxFileSizeBytes)
	resultHandler := handler.NewResultHandler(resultSvc, exportSvc)
	importLogHandler := handler.NewImportLogHandler(importLogSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/results", resultHandler.List)
	protected.GET("/results/filters", resultHandler.FilterOptions)
	protected.GET("/results/export", resultHandler.Export)
	protected.POST("/results/import", importHandler.Upload)
	protected.GET("/import-logs", importLogHandler.List)
	protected.GET("/import-logs/:filename", importLogHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
