package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/marchal/fieldplanner/api"
	dbfs "github.com/marchal/fieldplanner/db"
	"github.com/marchal/fieldplanner/internal/config"
	"github.com/marchal/fieldplanner/internal/db"
	"github.com/marchal/fieldplanner/internal/events"
	"github.com/marchal/fieldplanner/internal/gcal"
	"github.com/marchal/fieldplanner/internal/repository/sqlite"
	"github.com/marchal/fieldplanner/internal/schedule"
	"github.com/marchal/fieldplanner/internal/uploads"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	files, err := uploads.NewStore(cfg.UploadsDir, logger)
	if err != nil {
		return fmt.Errorf("open uploads store: %w", err)
	}

	syncer, err := buildSyncer(cfg, logger)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	repo := sqlite.New(database)

	// Nightly sweep removes uploaded files whose database row is gone.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepCron, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := files.SweepOrphans(sweepCtx, repo.ListPhotoFilenames); err != nil {
			logger.Error("orphan sweep failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule orphan sweep %q: %w", cfg.SweepCron, err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	router := api.SetupRoutes(ctx, cfg, version, buildTime, database, files, bus, syncer, loc)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "version", version, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildSyncer returns the external calendar client when credentials are
// configured, otherwise the no-op syncer.
func buildSyncer(cfg *config.Config, logger *slog.Logger) (schedule.Syncer, error) {
	cal := cfg.Calendar
	if cal.ClientEmail == "" || cal.PrivateKeyPath == "" || cal.CalendarID == "" {
		logger.Info("calendar sync disabled, no credentials configured")
		return schedule.NoSync{}, nil
	}

	pem, err := os.ReadFile(cal.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read calendar private key: %w", err)
	}

	client, err := gcal.New(gcal.Config{
		BaseURL:       cal.BaseURL,
		TokenURL:      cal.TokenURL,
		CalendarID:    cal.CalendarID,
		ClientEmail:   cal.ClientEmail,
		PrivateKeyPEM: pem,
		Timeout:       cal.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init calendar client: %w", err)
	}

	logger.Info("calendar sync enabled", "calendar_id", cal.CalendarID)
	return client, nil
}
