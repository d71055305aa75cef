package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teacher_registry/internal/app"
	"teacher_registry/internal/domain/teacher"
	"teacher_registry/internal/infra/config"
	idb "teacher_registry/internal/infra/database"
	"teacher_registry/internal/infra/httpapi"
	"teacher_registry/internal/infra/logger"
	"teacher_registry/internal/infra/memory"
	"teacher_registry/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Log.WithField("component", "main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageBackend,
		"addr":        cfg.HTTPAddr,
	}).Info("Teacher registry starting...")

	teacherRepo, db, err := openRepository(cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not initialize teacher repository")
	}
	if db != nil {
		defer db.Close()
	}
	mainLogger.Info("Teacher repository initialized.")

	baseLogger := logrus.NewEntry(logger.Get())
	registry := app.NewRegistryService(teacherRepo, baseLogger)
	handlers := httpapi.NewTeacherHandlers(registry, baseLogger)
	router := httpapi.NewRouter(handlers, httpapi.RouterOptions{AllowedOrigins: cfg.CORSAllowedOrigins}, baseLogger)

	var reporter *scheduler.RegistryReporter
	if cfg.CronSpecRegistryReport != "" {
		reporter = scheduler.NewRegistryReporter(registry, baseLogger, cfg.CronSpecRegistryReport)
		if err := reporter.Start(); err != nil {
			mainLogger.WithError(err).Fatal("Could not start registry reporter")
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		mainLogger.WithError(err).Error("HTTP server shutdown did not complete cleanly")
	}
	if reporter != nil {
		reporter.Stop()
	}
	mainLogger.Info("Application shut down gracefully.")
}

// openRepository returns the configured store. db is non-nil only for Postgres.
func openRepository(cfg *config.AppConfig) (teacher.Repository, *sql.DB, error) {
	if cfg.StorageBackend != config.StoragePostgres {
		return memory.NewTeacherRepository(), nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := idb.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return idb.NewPostgresTeacherRepository(db), db, nil
}
