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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/plusiam/sisu/api/swagger"
	"github.com/plusiam/sisu/internal/handler"
	"github.com/plusiam/sisu/internal/middleware"
	"github.com/plusiam/sisu/internal/models"
	"github.com/plusiam/sisu/internal/repository"
	"github.com/plusiam/sisu/internal/service"
	rediscache "github.com/plusiam/sisu/pkg/cache"
	"github.com/plusiam/sisu/pkg/config"
	"github.com/plusiam/sisu/pkg/database"
	"github.com/plusiam/sisu/pkg/jobs"
	"github.com/plusiam/sisu/pkg/logger"
	corsmiddleware "github.com/plusiam/sisu/pkg/middleware/cors"
	reqidmiddleware "github.com/plusiam/sisu/pkg/middleware/requestid"
	"github.com/plusiam/sisu/pkg/sheets"
	"github.com/plusiam/sisu/pkg/storage"
)

// @title Sisu API
// @version 1.0.0
// @description Weekly timetable manager for specialist teachers
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := rediscache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}

	// Repositories.
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	})
	teacherSvc := service.NewTeacherService(teacherRepo, slotRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, logr)
	schoolSvc := service.NewSchoolService(schoolRepo, nil, logr)
	timetableSvc := service.NewTimetableService(slotRepo, teacherRepo, cacheSvc, nil, logr)
	scheduleSvc := service.NewAutoScheduleService(slotRepo, teacherRepo, subjectRepo, schoolSvc, cacheSvc, metricsSvc, nil, logr)
	dashboardSvc := service.NewDashboardService(slotRepo, teacherRepo, schoolSvc, cacheSvc, logr)
	workloadSvc := service.NewWorkloadService(nil, logr)
	importSvc := service.NewImportService(teacherRepo, subjectRepo, logr)
	exportSvc := service.NewExportService(slotRepo, store, nil, logr)

	var sheetClient service.SheetClient
	if cfg.Sheets.Enabled && cfg.Sheets.BaseURL != "" {
		sheetClient = sheets.NewClient(cfg.Sheets.BaseURL, cfg.Sheets.Timeout)
	}
	syncSvc := service.NewSyncService(sheetClient, teacherRepo, logr)

	// Background export queue.
	exportQueue := jobs.NewQueue("exports", exportSvc.Process, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportSvc.SetQueue(exportQueue)

	queueCtx, queueCancel := context.WithCancel(context.Background())
	exportQueue.Start(queueCtx)
	defer func() {
		queueCancel()
		exportQueue.Stop()
	}()

	// Stale export files are reaped hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-queueCtx.Done():
				return
			case <-ticker.C:
				removed, err := store.CleanupOlderThan(cfg.Exports.FileTTL)
				if err != nil {
					logr.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					logr.Info("removed expired export files", zap.Int("count", len(removed)))
				}
			}
		}
	}()

	// Scheduler limits from config apply when a run omits its own.
	scheduleSvc.SetDefaultLimits(cfg.Scheduler.MaxConsecutive, cfg.Scheduler.MaxPerDay)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	schoolHandler := handler.NewSchoolHandler(schoolSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	workloadHandler := handler.NewWorkloadHandler(workloadSvc)
	importHandler := handler.NewImportHandler(importSvc, cfg.Imports.MaxFileSizeBytes)
	exportHandler := handler.NewExportHandler(exportSvc)
	syncHandler := handler.NewSyncHandler(syncSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/auth/me", authHandler.Me)

	protected.GET("/teachers", teacherHandler.List)
	protected.GET("/teachers/:id", teacherHandler.Get)
	protected.POST("/teachers", teacherHandler.Create)
	protected.PUT("/teachers/:id", teacherHandler.Update)
	protected.DELETE("/teachers/:id", middleware.RequireRoles(models.RoleAdmin), teacherHandler.Delete)

	protected.GET("/subjects", subjectHandler.List)
	protected.GET("/subjects/:id", subjectHandler.Get)
	protected.POST("/subjects", subjectHandler.Create)
	protected.PUT("/subjects/:id", subjectHandler.Update)
	protected.DELETE("/subjects/:id", middleware.RequireRoles(models.RoleAdmin), subjectHandler.Delete)

	protected.GET("/school", schoolHandler.Get)
	protected.PUT("/school", middleware.RequireRoles(models.RoleAdmin), schoolHandler.Save)

	protected.GET("/timetable/slots", timetableHandler.List)
	protected.GET("/timetable/slots/:id", timetableHandler.Get)
	protected.POST("/timetable/slots", timetableHandler.Create)
	protected.PUT("/timetable/slots/:id", timetableHandler.Update)
	protected.DELETE("/timetable/slots/:id", timetableHandler.Delete)
	protected.DELETE("/timetable/slots", middleware.RequireRoles(models.RoleAdmin), timetableHandler.Clear)
	protected.POST("/timetable/check-conflicts", timetableHandler.CheckConflicts)
	protected.GET("/timetable/validate", timetableHandler.Validate)
	protected.GET("/timetable/stats", timetableHandler.Stats)
	protected.GET("/timetable/summary", timetableHandler.Summary)

	protected.POST("/schedule/run", scheduleHandler.Run)

	protected.GET("/dashboard", dashboardHandler.Stats)
	protected.POST("/workload/calculate", workloadHandler.Calculate)

	protected.POST("/exports", exportHandler.Create)
	protected.GET("/exports/:id", exportHandler.Get)
	protected.GET("/exports/:id/download", exportHandler.Download)

	protected.POST("/imports/roster", middleware.RequireRoles(models.RoleAdmin), importHandler.Roster)
	protected.POST("/imports/demands", middleware.RequireRoles(models.RoleAdmin), importHandler.Demands)

	protected.POST("/sync/pull", middleware.RequireRoles(models.RoleAdmin), syncHandler.Pull)
	protected.POST("/sync/push", middleware.RequireRoles(models.RoleAdmin), syncHandler.Push)

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

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
