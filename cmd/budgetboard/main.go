package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetboard/internal/app"
	"budgetboard/internal/cli"
	apphttp "budgetboard/internal/http"
	applog "budgetboard/internal/log"
)

func main() {
	// Load .env file for local development
	if err := cli.LoadEnvFile(); err != nil {
		applog.Default(applog.ComponentApp).Error("Failed to load env file", applog.FieldError, err.Error())
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.Default(applog.ComponentApp).ErrorType(context.Background(), "Configuration validation failed",
			applog.ErrorTypeConfiguration, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)

	ctx, stop := cli.GracefulShutdown(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Logger: logger})
	if err != nil {
		logger.ErrorType(ctx, "Failed to start application", applog.ErrorTypeInternal, err)
		os.Exit(1)
	}
	defer a.Close()

	srv, err := apphttp.NewServer(":"+cfg.Port, a, logger.WithComponent(applog.ComponentHTTP))
	if err != nil {
		logger.ErrorType(ctx, "Failed to build HTTP server", applog.ErrorTypeInternal, err)
		os.Exit(1)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "Starting budgetboard server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", a.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.RunPublisher(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.ErrorType(context.Background(), "Server error", applog.ErrorTypeInternal, err, "port", cfg.Port)
		a.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
