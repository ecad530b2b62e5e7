package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-registry-api/api/swagger"
	"github.com/noah-isme/course-registry-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-registry-api/internal/middleware"
	"github.com/noah-isme/course-registry-api/internal/models"
	"github.com/noah-isme/course-registry-api/internal/registry"
	"github.com/noah-isme/course-registry-api/internal/repository"
	"github.com/noah-isme/course-registry-api/internal/service"
	"github.com/noah-isme/course-registry-api/pkg/cache"
	"github.com/noah-isme/course-registry-api/pkg/config"
	"github.com/noah-isme/course-registry-api/pkg/database"
	"github.com/noah-isme/course-registry-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-registry-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-registry-api/pkg/storage"
)

// @title Course Registry API
// @version 1.0.0
// @description In-memory course enrollment engine with waitlists, bulk loads and an audit trail.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	cacheSvc := buildCache(ctx, cfg, metrics, logr)

	var archiveRepo *repository.ActivityRepository
	var archiver *service.ActivityArchiver
	var onAppend func(models.ActivityLogEntry)
	if cfg.Archive.Enabled {
		db, dbErr := database.NewPostgres(ctx, cfg.Database)
		if dbErr != nil {
			logr.Fatal("activity archive enabled but postgres unavailable", zap.Error(dbErr))
		}
		defer db.Close() //nolint:errcheck

		archiveRepo = repository.NewActivityRepository(db)
		if err := archiveRepo.EnsureSchema(ctx); err != nil {
			logr.Fatal("failed to prepare activity archive schema", zap.Error(err))
		}
		archiver = service.NewActivityArchiver(archiveRepo, service.ArchiverConfig{
			Workers:    cfg.Archive.Workers,
			Retries:    cfg.Archive.Retries,
			BufferSize: cfg.Archive.BufferSize,
		}, metrics, logr)
		archiver.Start(ctx)
		defer archiver.Stop()
		onAppend = archiver.Observe
		logr.Info("activity archive enabled", zap.String("instance_id", archiver.InstanceID()))
	}

	reg := registry.New(registry.Options{
		LegacyConsistency: cfg.Registry.LegacyConsistency,
		Logger:            logr.Named("registry"),
		OnAppend:          onAppend,
	})
	metrics.RegisterRegistryGauges(reg.Statistics)

	validate := validator.New()
	studentSvc := service.NewStudentService(reg, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(reg, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(reg, cacheSvc, metrics, validate, logr, cfg.Cache.TTL)
	statisticsSvc := service.NewStatisticsService(reg, cacheSvc, metrics, cfg.Cache.TTL)
	importSvc := service.NewImportService(reg, cacheSvc, metrics, logr)

	var activitySvc *service.ActivityService
	if archiveRepo != nil {
		activitySvc = service.NewActivityService(reg, archiveRepo)
	} else {
		activitySvc = service.NewActivityService(reg, nil)
	}

	var exportHandler *handler.ExportHandler
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Warn("export storage unavailable, exports disabled", zap.Error(err))
	} else {
		exportSvc := service.NewExportService(reg, exportStore,
			storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
			metrics, logr, nil, nil)
		go exportSvc.RunCleanup(ctx, cfg.Exports.CleanupInterval)
		exportHandler = handler.NewExportHandler(exportSvc)
	}

	var ready atomic.Bool
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Students:    handler.NewStudentHandler(studentSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Statistics:  handler.NewStatisticsHandler(statisticsSvc),
		Activity:    handler.NewActivityHandler(activitySvc),
		Imports:     handler.NewImportHandler(importSvc),
		Exports:     exportHandler,
		Metrics:     handler.NewMetricsHandler(metrics, ready.Load),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Registry.SeedFile != "" {
		summary, err := importSvc.LoadFile(ctx, cfg.Registry.SeedFile)
		if err != nil {
			logr.Warn("seed load failed", zap.String("file", cfg.Registry.SeedFile), zap.Error(err))
		} else {
			logr.Info("seed loaded",
				zap.Int("students", summary.StudentsLoaded),
				zap.Int("courses", summary.CoursesLoaded),
				zap.Int("enrollments", summary.EnrollmentsLoaded))
		}
	}
	ready.Store(true)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "legacy", reg.LegacyConsistency())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func buildCache(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *service.CacheService {
	if !cfg.Cache.Enabled {
		return service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false)
	}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err == nil {
			logr.Info("cache backend: redis", zap.String("host", cfg.Redis.Host))
			return service.NewCacheService(repository.NewCacheRepository(client, logr), metrics, cfg.Cache.TTL, logr, true)
		}
		logr.Warn("redis unavailable, falling back to in-process cache", zap.Error(err))
	}
	logr.Info("cache backend: memory")
	return service.NewCacheService(repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Cache.TTL)), metrics, cfg.Cache.TTL, logr, true)
}
