package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/formcsrf/internal/app"
	"github.com/odyssey-erp/formcsrf/internal/csrf"
	"github.com/odyssey-erp/formcsrf/internal/feedback"
	"github.com/odyssey-erp/formcsrf/internal/observability"
	"github.com/odyssey-erp/formcsrf/internal/platform/cache"
	"github.com/odyssey-erp/formcsrf/internal/platform/db"
	"github.com/odyssey-erp/formcsrf/internal/view"
	"github.com/odyssey-erp/formcsrf/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	var repo feedback.Repository
	switch cfg.StoreDriver {
	case app.StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		pgRepo := feedback.NewPostgresRepository(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		repo = pgRepo
	default:
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		repo = feedback.NewRedisRepository(redisClient)
	}

	var (
		notifier   feedback.Notifier
		jobHandler *jobs.Handler
	)
	if cfg.NotifyEnabled {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		jobClient := jobs.NewClient(redisOpts)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		inspector := asynq.NewInspector(redisOpts)
		defer inspector.Close()
		notifier = jobClient
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	templates, err := view.NewEngine()
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	service := feedback.NewService(repo, notifier, logger)
	handler := feedback.NewHandler(feedback.HandlerConfig{
		Logger:     logger,
		Service:    service,
		Templates:  templates,
		CSRFSecret: cfg.CSRFSecret,
		Limit:      cfg.FeedbackLimit,
		Metrics:    metrics,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Authenticator:   csrf.NewAuthenticator(cfg.CSRFSecret),
		FeedbackHandler: handler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
		AccessLog:       true,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server starting", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
