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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-virtual-api/api/swagger"
	"github.com/noah-isme/campus-virtual-api/internal/handler"
	"github.com/noah-isme/campus-virtual-api/internal/middleware"
	"github.com/noah-isme/campus-virtual-api/internal/repository"
	"github.com/noah-isme/campus-virtual-api/internal/service"
	"github.com/noah-isme/campus-virtual-api/pkg/cache"
	"github.com/noah-isme/campus-virtual-api/pkg/config"
	"github.com/noah-isme/campus-virtual-api/pkg/database"
	"github.com/noah-isme/campus-virtual-api/pkg/logger"
	"github.com/noah-isme/campus-virtual-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/campus-virtual-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-virtual-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-virtual-api/pkg/storage"
)

// @title Campus Virtual API
// @version 1.0.0
// @description Courses, coursework, exams and grades for the campus virtual portal
// @BasePath /api/v1
// @schemes http https

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

	dbCtx, dbCancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := database.NewPostgres(dbCtx, cfg.Database)
	dbCancel()
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("database migration failed", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, grade cache disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
			checks["redis"] = redisRepo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Grades.CacheTTL, logr)

	sender := mail.Sender{Name: cfg.Email.FromName, Address: cfg.Email.FromAddress}
	var mailer mail.Mailer = mail.NewConsoleMailer(sender, logr)
	if cfg.Email.Provider == "sendgrid" {
		mailer = mail.NewSendgridMailer(cfg.Email.SendgridAPIKey, sender, "", 10*time.Second)
	}
	notifier := service.NewNotificationService(mailer, metrics, cfg.Email.Workers, logr)
	notifier.Start(ctx)
	defer notifier.Stop()

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("upload storage unavailable", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	examRepo := repository.NewExamRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	logRepo := repository.NewSystemLogRepository(db)

	validate := service.NewValidator()
	activity := service.NewSystemLogService(logRepo, logr)
	sessions := service.NewSessionService(service.SessionConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Session.Issuer,
	})
	access := service.NewCourseAccess(courseRepo, enrollmentRepo)
	grades := service.NewGradeService(gradeRepo, enrollmentRepo, cacheSvc, cfg.Grades.TrendThreshold, logr)

	authSvc := service.NewAuthService(userRepo, sessions, activity, validate, logr)
	googleSvc := service.NewGoogleAuthService(service.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Domain:       cfg.Google.Domain,
		AuthURL:      cfg.Google.AuthURL,
		TokenURL:     cfg.Google.TokenURL,
		UserInfoURL:  cfg.Google.UserInfoURL,
		Timeout:      cfg.Google.HTTPTimeout,
	}, userRepo, logr)
	courseSvc := service.NewCourseService(service.CourseServiceDeps{
		Courses:     courseRepo,
		Users:       userRepo,
		Materials:   materialRepo,
		Assignments: assignmentRepo,
		Exams:       examRepo,
		Access:      access,
		Grades:      grades,
		Activity:    activity,
	}, validate, logr)
	uploadSvc := service.NewUploadService(store, signer, service.UploadConfig{
		MaxBytes:     cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		FilesURL:     cfg.PublicURL + cfg.APIPrefix + "/files",
	}, metrics, logr)

	cookies := handler.CookieConfig{SessionName: cfg.Session.CookieName, Secure: cfg.Session.Secure}
	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc, cookies),
		Google:      handler.NewGoogleHandler(googleSvc, authSvc, cookies, logr),
		Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(courseRepo, enrollmentRepo, userRepo, grades, activity, logr)),
		Users:       handler.NewUserHandler(service.NewUserService(userRepo, activity, validate, logr)),
		Courses:     handler.NewCourseHandler(courseSvc),
		Enrollments: handler.NewEnrollmentHandler(service.NewEnrollmentService(enrollmentRepo, userRepo, access, notifier, activity, validate, logr)),
		Logs:        handler.NewSystemLogHandler(activity),
		Assignments: handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo, access, grades, activity, validate, logr)),
		Exams:       handler.NewExamHandler(service.NewExamService(examRepo, access, activity, metrics, validate, logr)),
		Grading:     handler.NewGradingHandler(service.NewGradingService(assignmentRepo, examRepo, access, grades, notifier, activity, metrics, validate, logr)),
		Grades:      handler.NewGradeHandler(grades),
		Uploads:     handler.NewUploadHandler(uploadSvc, cfg.Uploads.MaxFileSizeBytes),
		Gradebook:   handler.NewGradebookHandler(service.NewGradebookService(access, enrollmentRepo, gradeRepo, cfg.Grades.TrendThreshold, logr)),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.Register(r, cfg.APIPrefix, handlers, sessions, cfg.Session.CookieName)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
