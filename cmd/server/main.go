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

	"golang.org/x/sync/errgroup"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/api"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/api/middleware"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/config"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/logger"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/repositories"
)

// @title                       Users API
// @version                     1.0
// @description                 List, fetch and create users.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.Load(config.EnvFile())
	if err != nil {
		return err
	}

	l, err := logger.New(logger.Config{Level: settings.LogLevel, Debug: settings.Debug, Dir: settings.LogDir})
	if err != nil {
		return err
	}
	defer l.Close()
	log := l.App()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repositories.ConnectDatabase(ctx, settings, log)
	if err != nil {
		log.WithError(err).Error("database setup failed")
		return err
	}
	defer func() {
		if err := repositories.CloseDatabase(db); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}()

	provider := repositories.NewProvider(db)
	gate := middleware.NewGate(settings.JWTSecret)
	if _, open := gate.(middleware.AllowAll); open {
		log.Warn("JWT_SECRET not set, API routes are open")
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%s", settings.Port),
		Handler: api.SetupRouter(api.Deps{
			Settings: settings,
			Log:      log,
			Gate:     gate,
			Sessions: provider,
			Store:    repositories.NewUserStore(),
			DB:       provider,
		}),
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on port: %s", settings.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", settings.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
