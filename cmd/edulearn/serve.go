package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edulearn/learner-gateway/internal/api"
	"github.com/edulearn/learner-gateway/internal/core/service"
	"github.com/edulearn/learner-gateway/internal/infrastructure/backend"
	"github.com/edulearn/learner-gateway/internal/infrastructure/certificate"
	"github.com/edulearn/learner-gateway/internal/infrastructure/config"
	mongodb "github.com/edulearn/learner-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/edulearn/learner-gateway/internal/infrastructure/db/redis"
	"github.com/edulearn/learner-gateway/internal/infrastructure/http/handlers"
	"github.com/edulearn/learner-gateway/internal/infrastructure/queue"
	"github.com/edulearn/learner-gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveEnvFile string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "optional dotenv file loaded before the environment")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(serveEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", serveEnvFile, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		File:   logger.FileOptions{Path: cfg.Log.File},
	})
	defer func() { _ = logger.Close() }()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	notices := mongodb.NewNoticeRepository(db)
	if err := notices.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("notice indexes not created")
	}
	audit := mongodb.NewCertificateAuditRepository(db)
	activityStore := redisdb.NewActivityStore(rdb)

	// --- Services ---
	backendClient := backend.NewClient(backend.Config{BaseURL: cfg.Backend.URL, Timeout: cfg.Backend.Timeout}, log)
	dispatcher := queue.NewNoticeDispatcher(cfg.Streak.NoticeWorkers, notices, log)

	notifier := service.NewNotifier(dispatcher, log)
	streaks := service.NewStreakService(redisdb.NewStreakRepository(rdb, log), notices, notifier, cfg.Location(), log)
	authService := service.NewAuthService(backendClient, cfg.JWTSecret, cfg.SessionTTL, log)
	catalog := service.NewCatalogService(backendClient, redisdb.NewViewCache(rdb), cfg.Cache.ViewTTL, log)
	certificates := service.NewCertificateService(catalog, certificate.NewPDFRenderer(""), audit, cfg.Location(), log)
	sink := service.NewActivitySink(activityStore, cfg.Activity.Interval, log)
	liveness := service.NewLivenessChecker(activityStore, streaks, cfg.Activity.Window, cfg.Activity.CheckInterval, log)

	e := api.NewRouter(api.Dependencies{
		Log:          log,
		JWTSecret:    cfg.JWTSecret,
		LoginPath:    cfg.LoginPath,
		Auth:         authService,
		Streaks:      streaks,
		Activity:     sink,
		Catalog:      catalog,
		Certificates: certificates,
		Probes: map[string]handlers.Probe{
			"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, mongoClient, 0) },
			"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, rdb, 0) },
			"backend": backendClient.Ping,
		},
	})

	// --- Background workers ---
	dispatcher.Start(ctx)
	go liveness.Run(ctx)

	if err := backendClient.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("backend", cfg.Backend.URL).Msg("backend not reachable at startup")
	}
	authService.MarkInitialized()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	dispatcher.Wait()
	return nil
}
