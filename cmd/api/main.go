package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/app"
	"github.com/cmlabs-hris/attendance-reconciler/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-reconciler/internal/handler/http"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/metrics"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	app.SetupLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer storage.Close()

	recorder := metrics.NewRecorder()
	absenceService := app.NewAbsenceService(cfg, storage, recorder)

	scheduler := cron.NewScheduler()
	scheduler.SetObserver(recorder)
	if cfg.Redis.Addr != "" {
		redisClient, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("error connecting to redis: %w", err)
		}
		defer redisClient.Close()

		hostname, _ := os.Hostname()
		scheduler.SetLocker(lock.NewRedisLocker(redisClient, fmt.Sprintf("%s:%d", hostname, os.Getpid())))
	}
	cron.NewAttendanceJobs(absenceService, cfg.Attendance.JobInterval).RegisterJobs(scheduler)

	slog.Info("Attendance cutoff configured",
		"cutoff", cfg.Attendance.Cutoff.String(),
		"timezone", cfg.Attendance.Location.String(),
		"interval", cfg.Attendance.JobInterval,
	)

	absenceHandler := appHTTP.NewAbsenceHandler(absenceService)
	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Env:            cfg.App.Env,
		Production:     cfg.IsProduction(),
		Version:        version,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, absenceHandler, recorder.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler.Start()
	defer scheduler.Stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
