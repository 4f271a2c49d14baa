package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/koji-portfolio/portfolio-backend/config"
	authservice "github.com/koji-portfolio/portfolio-backend/internal/auth/service"
	"github.com/koji-portfolio/portfolio-backend/internal/bootstrap"
	"github.com/koji-portfolio/portfolio-backend/internal/logging"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.Setup(cfg.App.LogLevel, cfg.App.Environment)
	if !cfg.App.DotEnvLoaded {
		logger.Debug().Msg("no .env file found, using environment variables")
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := logger.WithContext(context.Background())

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to open project store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error().Err(err).Msg("failed to close project store")
		}
	}()

	authSetup, err := bootstrap.BuildGate(ctx, &cfg.Auth)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure admin auth")
	}

	login, err := authservice.NewLoginService(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, authSetup.Token, bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure admin login")
	}

	if cfg.Snapshot.Schedule != "" {
		snapshots := snapshot.NewScheduler(store, cfg.Snapshot.Dir, cfg.Snapshot.Keep)
		if err := snapshots.Start(ctx, cfg.Snapshot.Schedule); err != nil {
			logger.Fatal().Err(err).Msg("failed to start snapshot scheduler")
		}
		defer snapshots.Stop()
	}

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Auth:   authSetup,
		Login:  login,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build router")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", server.Addr).
			Str("env", cfg.App.Environment).
			Str("storage", store.Backend()).
			Str("auth_mode", string(authSetup.Gate.Mode())).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
	}
}
