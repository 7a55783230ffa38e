package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/inventario-ufc/patrimonio-api/api/swagger"
	"github.com/inventario-ufc/patrimonio-api/internal/handler"
	"github.com/inventario-ufc/patrimonio-api/internal/middleware"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
	"github.com/inventario-ufc/patrimonio-api/internal/repository"
	"github.com/inventario-ufc/patrimonio-api/internal/service"
	rediscache "github.com/inventario-ufc/patrimonio-api/pkg/cache"
	"github.com/inventario-ufc/patrimonio-api/pkg/config"
	"github.com/inventario-ufc/patrimonio-api/pkg/database"
	"github.com/inventario-ufc/patrimonio-api/pkg/jobs"
	"github.com/inventario-ufc/patrimonio-api/pkg/logger"
	corsmiddleware "github.com/inventario-ufc/patrimonio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/inventario-ufc/patrimonio-api/pkg/middleware/requestid"
	"github.com/inventario-ufc/patrimonio-api/pkg/storage"
)

// @title Patrimonio API
// @version 1.0.0
// @description Backend for the asset inventory audit app
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := rediscache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Inventory.StatsCacheTTL, logr, true)
	}

	photoStore, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo storage", "error", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	exportRepo := repository.NewExportRepository(db)

	validate := validator.New()
	reconciler := service.NewReconciler(cfg.Inventory.DefaultCampus)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "patrimonio-api",
	})
	lookupSvc := service.NewLookupService(assetRepo, reconciler, logr)
	recordSvc := service.NewRecordService(recordRepo, assetRepo, photoStore, reconciler, cacheSvc, cfg.Photos.MaxFileSizeBytes, logr)
	statsSvc := service.NewStatsService(recordRepo, assetRepo, userRepo, cacheSvc, cfg.Inventory.StatsCacheTTL, logr)
	searchSvc := service.NewSearchService(assetRepo, cfg.Search.DefaultLimit, cfg.Search.MaxLimit, logr)
	prefSvc := service.NewPreferenceService(cacheSvc, cfg.Inventory.DefaultCampus, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)

	exportSvc := service.NewExportService(recordRepo, userRepo, statsSvc, exportStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil, nil)
	worker := service.NewExportWorker(exportRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportJobsSvc := service.NewExportJobService(exportRepo, queue, exportSvc, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue.Start(rootCtx)
	exportJobsSvc.RecoverPendingJobs(rootCtx)
	exportJobsSvc.StartCleanup(rootCtx)

	authHandler := handler.NewAuthHandler(authSvc)
	lookupHandler := handler.NewLookupHandler(lookupSvc, prefSvc)
	recordHandler := handler.NewRecordHandler(recordSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	searchHandler := handler.NewSearchHandler(searchSvc)
	prefHandler := handler.NewPreferenceHandler(prefSvc)
	exportHandler := handler.NewExportHandler(exportJobsSvc)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/photos", cfg.Photos.StorageDir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	// the signed token in the path is the only credential for downloads
	api.GET("/exports/download/:token", exportHandler.Download)

	protected := api.Group("", middleware.JWT(authSvc), middleware.WithResponseMeta())

	protected.GET("/assets/:tag/lookup", lookupHandler.Lookup)

	records := protected.Group("/records")
	records.POST("", recordHandler.Create)
	records.GET("", recordHandler.List)
	records.GET("/:id", recordHandler.Get)
	records.PUT("/:id", recordHandler.Update)
	records.GET("/tag/:tag/latest", recordHandler.LatestByTag)

	stats := protected.Group("/stats", middleware.RBAC(string(models.RoleAdmin)))
	stats.GET("/divergences", statsHandler.Divergences)
	stats.GET("/campuses", statsHandler.Campuses)
	stats.GET("/ranking", statsHandler.Ranking)
	stats.GET("/summary", statsHandler.Summary)

	search := protected.Group("/search")
	search.GET("/rooms", searchHandler.Rooms)
	search.GET("/responsibles", searchHandler.Responsibles)
	search.GET("/assets", searchHandler.Assets)

	protected.GET("/preferences/campus", prefHandler.GetCampus)
	protected.PUT("/preferences/campus", prefHandler.SetCampus)

	protected.POST("/exports", middleware.RBAC(string(models.RoleAdmin)), exportHandler.Create)
	protected.GET("/exports/:id", exportHandler.Status)

	protected.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
	users := protected.Group("/users", middleware.RBAC(string(models.RoleAdmin)))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Deactivate)

	protected.GET("/metrics/summary", middleware.RBAC(string(models.RoleAdmin)), metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}

	cancel()
	queue.Stop()
	if redisClient != nil {
		redisClient.Close() //nolint:errcheck
	}
	logr.Sugar().Infow("server stopped")
}
