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
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-registration-api/api/swagger"
	"github.com/noah-isme/uni-registration-api/internal/handler"
	"github.com/noah-isme/uni-registration-api/internal/repository"
	"github.com/noah-isme/uni-registration-api/internal/router"
	"github.com/noah-isme/uni-registration-api/internal/service"
	"github.com/noah-isme/uni-registration-api/pkg/cache"
	"github.com/noah-isme/uni-registration-api/pkg/config"
	"github.com/noah-isme/uni-registration-api/pkg/database"
	"github.com/noah-isme/uni-registration-api/pkg/jobs"
	"github.com/noah-isme/uni-registration-api/pkg/logger"
	"github.com/noah-isme/uni-registration-api/pkg/response"
)

// @title University Registration API
// @version 1.0.0
// @description Semester registration, enrollment and rollover service
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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	response.SetExposeDetail(!cfg.IsProduction())

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrations, err := database.Migrations()
		if err != nil {
			logr.Fatal("failed to load schema migrations", zap.Error(err))
		}
		if _, err := database.NewMigrator(db, migrations, logr).Migrate(context.Background()); err != nil {
			logr.Fatal("failed to migrate schema", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, course cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, retryQueue := buildEngine(cfg, logr, db, redisClient)
	retryQueue.Start(ctx)
	defer retryQueue.Stop()

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

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func buildEngine(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) (*gin.Engine, *jobs.Queue) {
	validate := validator.New()
	tx := database.NewTransactor(db, cfg.Database.TxTimeout)

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	windowRepo := repository.NewSemesterRegistrationRepository(db)
	semesterRepo := repository.NewAcademicSemesterRepository(db)
	offeredRepo := repository.NewOfferedCourseRepository(db)
	sectionRepo := repository.NewOfferedCourseSectionRepository(db)
	scheduleRepo := repository.NewClassScheduleRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	studentRegRepo := repository.NewStudentRegistrationRepository(db)
	regCourseRepo := repository.NewRegistrationCourseRepository(db)
	enrolledRepo := repository.NewEnrolledCourseRepository(db)

	var cacheRepo service.CacheRepository
	var cachePinger handler.Pinger
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "uni-registration", logr)
		cachePinger = cache.Pinger{Client: redisClient}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.AvailableCoursesTTL, logr, cfg.Cache.Enabled)

	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	windowSvc := service.NewSemesterRegistrationService(windowRepo, semesterRepo, tx, validate, logr)
	availableSvc := service.NewAvailableCourseService(studentRepo, windowRepo, regCourseRepo, offeredRepo, sectionRepo, scheduleRepo,
		cacheSvc, cfg.Cache.AvailableCoursesTTL, logr)
	scheduleSvc := service.NewClassScheduleService(scheduleRepo, sectionRepo, tx, validate, logr)
	sectionSvc := service.NewOfferedCourseSectionService(offeredRepo, sectionRepo, scheduleRepo, scheduleSvc, availableSvc, tx, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentServiceDeps{
		Students:       studentRepo,
		Registrations:  windowRepo,
		OfferedCourses: offeredRepo,
		Sections:       sectionRepo,
		Enrollments:    regCourseRepo,
		Credits:        studentRegRepo,
		CourseCache:    availableSvc,
		Metrics:        metrics,
		Tx:             tx,
		Validator:      validate,
		Logger:         logr,
	})
	registrationSvc := service.NewRegistrationService(studentRepo, windowRepo, studentRegRepo, logr)
	rolloverSvc := service.NewRolloverService(windowRepo, semesterRepo, studentRegRepo, regCourseRepo, enrolledRepo, metrics, tx,
		service.RolloverConfig{
			PerCreditFee:        cfg.Registration.PerCreditFee,
			PartialPaymentRatio: cfg.Registration.PartialPaymentRatio,
			Workers:             cfg.Registration.RolloverWorkers,
		}, logr)
	retryQueue := jobs.NewQueue("rollover-retry", rolloverSvc.HandleRetryJob, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: cfg.Registration.RolloverRetries,
		RetryDelay: cfg.Registration.RolloverRetryDelay,
		Logger:     logr,
	})
	rolloverSvc.UseRetryQueue(retryQueue)
	rosterSvc := service.NewRosterService(sectionRepo, regCourseRepo, logr)

	opts := router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     !cfg.IsProduction(),
		Logger:         logr,
		Auth:           authSvc,
	}
	var metricsHandler http.Handler
	if metrics != nil {
		opts.Observer = metrics
		opts.MetricsPath = cfg.Metrics.Path
		metricsHandler = metrics.Handler()
	}

	engine := router.New(opts, router.Handlers{
		Health:               handler.NewHealthHandler(db, cachePinger, metricsHandler),
		SemesterRegistration: handler.NewSemesterRegistrationHandler(windowSvc, rolloverSvc),
		StudentRegistration:  handler.NewStudentRegistrationHandler(registrationSvc, enrollmentSvc, availableSvc),
		OfferedCourseSection: handler.NewOfferedCourseSectionHandler(sectionSvc, scheduleSvc, rosterSvc),
	})
	return engine, retryQueue
}
