package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/foyerhq/foyer-api/api/swagger"
	"github.com/foyerhq/foyer-api/internal/handler"
	"github.com/foyerhq/foyer-api/internal/middleware"
	"github.com/foyerhq/foyer-api/internal/models"
	"github.com/foyerhq/foyer-api/internal/repository"
	"github.com/foyerhq/foyer-api/internal/service"
	"github.com/foyerhq/foyer-api/pkg/cache"
	"github.com/foyerhq/foyer-api/pkg/config"
	"github.com/foyerhq/foyer-api/pkg/database"
	"github.com/foyerhq/foyer-api/pkg/logger"
	corsmiddleware "github.com/foyerhq/foyer-api/pkg/middleware/cors"
	reqidmiddleware "github.com/foyerhq/foyer-api/pkg/middleware/requestid"
)

// @title Foyer API
// @version 1.0.0
// @description Household work-schedule and task coordination API
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
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewRedisCacheRepository(redisClient)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Schedule.CacheTTL, logr, cfg.Schedule.CacheEnabled)
	}

	householdRepo := repository.NewHouseholdRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authSvc := service.NewAuthService(userRepo, householdRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	householdSvc := service.NewHouseholdService(householdRepo, userRepo, cacheSvc, logr)
	scheduleSvc := service.NewScheduleService(householdRepo, cacheSvc, metrics, validate, logr, service.ScheduleServiceConfig{
		PlannerDays: cfg.Schedule.PlannerDays,
		CacheTTL:    cfg.Schedule.CacheTTL,
	})
	taskSvc := service.NewTaskService(taskRepo, householdRepo, logr)
	importSvc := service.NewImportService(taskRepo, householdRepo, logr, service.ImportServiceConfig{
		MaxRows: cfg.Imports.MaxRows,
	})
	exportSvc := service.NewExportService(scheduleSvc, householdRepo, logr, service.ExportServiceConfig{
		ICSHorizonDays: cfg.Exports.ICSHorizon,
		CompanyName:    cfg.Exports.CompanyName,
	})

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditSvc := service.NewAuditService(userRepo, cfg.Imports.Workers, logr)
	auditSvc.Start(rootCtx)
	defer auditSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	householdHandler := handler.NewHouseholdHandler(householdSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	taskHandler := handler.NewTaskHandler(taskSvc, importSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	parentOnly := middleware.RequireRoles(models.RoleParent)

	secured.GET("/household", householdHandler.Get)
	secured.PUT("/household", parentOnly,
		middleware.Audit(auditSvc, "update", "household"), householdHandler.UpdateSettings)
	secured.GET("/household/members", householdHandler.Members)

	secured.GET("/schedule", scheduleHandler.Get)
	secured.PUT("/schedule/weekly", parentOnly,
		middleware.Audit(auditSvc, "update", "schedule_weekly"), scheduleHandler.UpdateWeekly)
	secured.GET("/schedule/exceptions", scheduleHandler.ListExceptions)
	secured.POST("/schedule/exceptions", parentOnly,
		middleware.Audit(auditSvc, "create", "schedule_exception"), scheduleHandler.AddException)
	secured.PATCH("/schedule/exceptions/:id", parentOnly,
		middleware.Audit(auditSvc, "update", "schedule_exception"), scheduleHandler.UpdateException)
	secured.DELETE("/schedule/exceptions/:id", parentOnly,
		middleware.Audit(auditSvc, "delete", "schedule_exception"), scheduleHandler.DeleteException)
	secured.GET("/schedule/day", scheduleHandler.Day)
	secured.GET("/schedule/planner", scheduleHandler.Planner)

	secured.GET("/tasks", taskHandler.List)
	secured.POST("/tasks", middleware.Audit(auditSvc, "create", "task"), taskHandler.Create)
	secured.GET("/tasks/today", taskHandler.Today)
	secured.POST("/tasks/import", parentOnly,
		middleware.Audit(auditSvc, "import", "task"), taskHandler.Import)
	secured.GET("/tasks/:id", taskHandler.Get)
	secured.PUT("/tasks/:id", middleware.Audit(auditSvc, "update", "task"), taskHandler.Update)
	secured.DELETE("/tasks/:id", middleware.Audit(auditSvc, "delete", "task"), taskHandler.Delete)

	if cfg.Exports.Enabled {
		exports := api.Group("/exports")
		exports.GET("/planner.csv", middleware.JWT(authSvc), exportHandler.PlannerCSV)
		exports.GET("/planner.pdf", middleware.JWT(authSvc), exportHandler.PlannerPDF)
		exports.GET("/feed.ics", middleware.FeedAuth(authSvc), exportHandler.ICSFeed)
	}

	if cfg.Maintenance.Enabled {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Maintenance.TokenPurgeCron, func() {
			cutoff := time.Now().UTC().Add(-cfg.Maintenance.TokenRetention)
			purged, err := userRepo.PurgeRefreshTokens(rootCtx, cutoff)
			if err != nil {
				logr.Warn("refresh token purge failed", zap.Error(err))
				return
			}
			logr.Info("refresh tokens purged", zap.Int64("count", purged))
		})
		if err != nil {
			logr.Sugar().Fatalw("invalid maintenance cron spec", "spec", cfg.Maintenance.TokenPurgeCron, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
