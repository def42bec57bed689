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
	"go.uber.org/zap"

	_ "github.com/mhizterkeyz/resultify-api/api/swagger"
	"github.com/mhizterkeyz/resultify-api/internal/handler"
	"github.com/mhizterkeyz/resultify-api/internal/messaging"
	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/internal/repository"
	"github.com/mhizterkeyz/resultify-api/internal/service"
	"github.com/mhizterkeyz/resultify-api/pkg/cache"
	"github.com/mhizterkeyz/resultify-api/pkg/config"
	"github.com/mhizterkeyz/resultify-api/pkg/database"
	"github.com/mhizterkeyz/resultify-api/pkg/jobs"
	"github.com/mhizterkeyz/resultify-api/pkg/logger"
)

// @title Resultify API
// @version 1.0.0
// @description Cohort result aggregation and approval workflow
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "resultify")
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled && redisClient != nil)

	students := repository.NewStudentRepository(db)
	groups := repository.NewGroupRepository(db)
	courses := repository.NewCourseRepository(db)
	registrations := repository.NewRegistrationRepository(db)
	results := repository.NewResultRepository(db)
	options := repository.NewOptionsRepository(db)
	users := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var publisher *messaging.Publisher
	if cfg.Notifications.Enabled && cfg.Notifications.NATSURL != "" {
		publisher, err = messaging.NewPublisher(cfg.Notifications.NATSURL, cfg.Notifications.Subject, logr)
		if err != nil {
			return err
		}
		defer publisher.Close()
	}
	notifications := service.NewNotificationService(notificationRepo, publisherOrNil(publisher), metrics, logr)
	queue := jobs.New[models.Notification]("notifications", notifications.Deliver, jobs.Options{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	notifications.AttachQueue(queue)

	groupOptions := service.NewGroupOptionsService(options, nil, logr, cfg.Reports.AcademicYear)
	resolver := service.NewRegistrationResolver(registrations, results)
	termAgg := service.NewTermAggregator(resolver, groupOptions)
	historyAgg := service.NewHistoryAggregator(courses, resolver, groupOptions)
	reports := service.NewReportService(students, courses, resolver, termAgg, historyAgg, groupOptions, cacheSvc, metrics, logr, service.ReportServiceConfig{
		StudentConcurrency: cfg.Reports.StudentConcurrency,
		CacheTTL:           cfg.Reports.CacheTTL,
	})
	lifecycle := service.NewResultLifecycleService(registrations, results, courses, groups, users, notifications, reports, metrics, logr)
	exports := service.NewExportService(reports, groups)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	probes := []handler.HealthProbe{{Name: "postgres", Check: db.PingContext}}
	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	router := newRouter(cfg, logr, routerDeps{
		tokens:       tokens,
		groups:       groups,
		metrics:      metrics,
		reports:      reports,
		lifecycle:    lifecycle,
		exports:      exports,
		groupOptions: groupOptions,
		probes:       probes,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// publisherOrNil keeps a nil *Publisher from becoming a non-nil interface.
func publisherOrNil(p *messaging.Publisher) service.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
