package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/depotlabs/filedepot/pkg/api"
	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/authz"
	"github.com/depotlabs/filedepot/pkg/config"
	"github.com/depotlabs/filedepot/pkg/middleware"
	"github.com/depotlabs/filedepot/pkg/observability"
	"github.com/depotlabs/filedepot/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(parseLogLevel(cfg.LogLevel), os.Stdout)

	docStore, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		logger.WithError(err).Error("failed to open document store")
		os.Exit(1)
	}
	defer docStore.Close()

	blobStore, err := store.NewFileSystemBlobStore(cfg.Storage.BlobRoot)
	if err != nil {
		logger.WithError(err).Error("failed to open blob store")
		os.Exit(1)
	}

	redisClient, err := store.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.WithError(err).Error("failed to connect to redis")
		os.Exit(1)
	}
	defer redisClient.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	health := observability.NewHealthChecker(docStore.DB(), redisClient)

	verifier := auth.NewCredentialVerifier(docStore)
	sessions := auth.NewSessionManager(
		verifier,
		auth.NewSessionStore(redisClient),
		auth.NewRandomTokenGenerator(),
		cfg.Session.TTL,
	)
	gate := middleware.NewAccessGate(sessions, verifier, metrics)

	server := api.NewServer(api.ServerDeps{
		Logger:     logger,
		Metrics:    metrics,
		Health:     health,
		Gate:       gate,
		Sessions:   sessions,
		Users:      docStore,
		Files:      docStore,
		Blobs:      blobStore,
		Authorizer: authz.NewFileAuthorizer(),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return redisClient.Close()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return docStore.Close()
	})

	var group errgroup.Group
	group.Go(func() error {
		logger.Infof("Server running on %s", cfg.Server.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(shutdown.WaitForShutdown)

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}
