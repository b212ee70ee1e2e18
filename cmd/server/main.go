package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wanderwise/wanderwise-backend/config"
	"github.com/wanderwise/wanderwise-backend/internal/app/controller"
	"github.com/wanderwise/wanderwise-backend/internal/app/repository"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
	"github.com/wanderwise/wanderwise-backend/internal/db"
	apperrors "github.com/wanderwise/wanderwise-backend/internal/errors"
	"github.com/wanderwise/wanderwise-backend/internal/metrics"
	"github.com/wanderwise/wanderwise-backend/internal/middleware"
	"github.com/wanderwise/wanderwise-backend/internal/router"
	"github.com/wanderwise/wanderwise-backend/internal/scheduler"
	"github.com/wanderwise/wanderwise-backend/internal/storage"
	"github.com/wanderwise/wanderwise-backend/internal/websocket"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
	"github.com/wanderwise/wanderwise-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel, logFormat := "debug", "console"
	if cfg.Server.IsProduction() {
		logLevel, logFormat = "info", "json"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: !cfg.Server.IsProduction(),
	})
	apperrors.SetDebug(!cfg.Server.IsProduction())

	logger.Info("Starting WanderWise backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, rate limiting and logout blacklist disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := db.GetDB()
	userRepo := repository.NewUserRepository(conn)
	reviewRepo := repository.NewReviewRepository(conn)
	voteRepo := repository.NewVoteRepository(conn)
	replyRepo := repository.NewReplyRepository(conn)
	auditRepo := repository.NewAuditLogRepository(conn)

	metrics.Init(prometheus.DefaultRegisterer, reviewRepo)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	if err := metrics.ObserveSessions(prometheus.DefaultRegisterer, hub.SessionCount); err != nil {
		logger.Warn("Failed to register websocket session gauge", map[string]interface{}{
			"error": err.Error(),
		})
	}

	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	reviewService := service.NewReviewService(reviewRepo, voteRepo, replyRepo, service.NewVoteAggregator(voteRepo))
	moderationService := service.NewModerationService(conn, reviewRepo, userRepo, auditRepo, hub)
	auditService := service.NewAuditService(auditRepo)

	archive := startArchive(ctx, cfg, auditService)
	if archive != nil {
		defer archive.Stop()
	}

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewReviewController(reviewService),
		controller.NewAdminReviewController(moderationService),
		controller.NewAdminAuditController(auditService),
		controller.NewWSController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewAuthMiddleware(cfg.JWT.Secret),
		authService,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

// startArchive wires the nightly audit upload when enabled. Failures are
// logged and leave the server running without an archive.
func startArchive(ctx context.Context, cfg *config.Config, audit service.AuditService) *scheduler.AuditArchiveScheduler {
	if !cfg.Archive.Enabled {
		return nil
	}

	store, err := storage.NewS3Storage(ctx, &cfg.Archive)
	if err != nil {
		logger.Error("Failed to initialize S3 storage, audit archive disabled", err)
		return nil
	}

	s := scheduler.NewAuditArchiveScheduler(cfg.Archive.Schedule, cfg.Archive.Prefix, audit, store)
	if err := s.Start(); err != nil {
		return nil
	}
	return s
}
