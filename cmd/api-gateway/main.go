package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-units-api/api/swagger"
	"github.com/noah-isme/school-units-api/internal/handler"
	"github.com/noah-isme/school-units-api/internal/repository"
	"github.com/noah-isme/school-units-api/internal/router"
	"github.com/noah-isme/school-units-api/internal/service"
	"github.com/noah-isme/school-units-api/migrations"
	"github.com/noah-isme/school-units-api/pkg/cache"
	"github.com/noah-isme/school-units-api/pkg/config"
	"github.com/noah-isme/school-units-api/pkg/database"
	"github.com/noah-isme/school-units-api/pkg/logger"
)

// @title School Units API
// @version 1.0.0
// @description Administration of school units, their homologation history and lookup lists
// @BasePath /api
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

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient := cache.NewOptionalRedis(cfg.Cache, cfg.Redis, logr)
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	unitRepo := repository.NewSchoolUnitRepository(db)
	homologationRepo := repository.NewHomologationRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)
	lookupSvc := service.NewLookupService(lookupRepo, cacheSvc, logr)
	unitSvc := service.NewSchoolUnitService(unitRepo, lookupRepo, homologationRepo, validate, logr)
	homologationSvc := service.NewHomologationService(homologationRepo, unitRepo, metrics, validate, logr, service.HomologationConfig{
		StrictSequence: cfg.Homologation.StrictSequence,
	})
	exportSvc := service.NewExportService(unitSvc, homologationSvc, metrics, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.Session.Secret,
		Expiration: cfg.Session.Expiration,
		Issuer:     cfg.Session.Issuer,
	})

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.NewMigrator(db, migrations.FS, cfg.Database.MigrationTable, logr).Up(ctx)
		if err == nil {
			lookupSvc.InvalidateCache(ctx)
		}
		cancel()
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	engine := router.New(router.Dependencies{
		Config:   cfg,
		Logger:   logr,
		Metrics:  metrics,
		Sessions: authSvc,
		Audit:    userRepo,
		Handlers: router.Handlers{
			SchoolUnits:   handler.NewSchoolUnitHandler(unitSvc),
			Homologations: handler.NewHomologationHandler(homologationSvc),
			Lookups:       handler.NewLookupHandler(lookupSvc),
			Exports:       handler.NewExportHandler(exportSvc),
			Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
				Name:   cfg.Session.CookieName,
				Secure: cfg.Session.CookieSecure,
			}),
			Health: handler.NewHealthHandler(metrics.Handler(), db),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
