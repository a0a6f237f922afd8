package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fitpulse-lab/fitpulse/internal/config"
	"github.com/fitpulse-lab/fitpulse/internal/dashboard"
	"github.com/fitpulse-lab/fitpulse/internal/intake"
	"github.com/fitpulse-lab/fitpulse/internal/migrations"
	"github.com/fitpulse-lab/fitpulse/internal/profile"
	"github.com/fitpulse-lab/fitpulse/internal/provider/garmin"
	"github.com/fitpulse-lab/fitpulse/internal/server"
	"github.com/fitpulse-lab/fitpulse/internal/store"
	"github.com/fitpulse-lab/fitpulse/internal/store/badgerstore"
	"github.com/fitpulse-lab/fitpulse/internal/store/postgres"
	"github.com/fitpulse-lab/fitpulse/internal/update"
)

func main() {
	configPath := flag.String("config", "fitpulse.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"storage_type", cfg.Storage.Type,
		"epoch_start", cfg.Tracker.EpochStart,
		"scheduler_enabled", cfg.Scheduler.Enabled,
	)

	// 2. Initialize Snapshot Store
	snapshots, cleanup, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize snapshot store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// 3. Initialize Provider Client
	providerClient := garmin.NewHTTPClient(garmin.Config{
		BaseURL:  cfg.Provider.BaseURL,
		Email:    cfg.Provider.Email,
		Password: cfg.Provider.Password,
		Timeout:  cfg.Provider.ProviderTimeout(),
	})

	// 4. Load Profile
	prof, err := profile.Load(cfg.Profile.Path)
	if err != nil {
		slog.Error("Failed to load profile", "error", err)
		os.Exit(1)
	}

	// 5. Initialize Services
	updateSvc := update.NewService(snapshots, providerClient, update.Options{
		SnapshotKey:         cfg.Storage.Key,
		EpochStart:          cfg.Tracker.EpochStart,
		BackfillConcurrency: cfg.Tracker.BackfillConcurrency,
	})
	intakeSvc := intake.NewService(snapshots, cfg.Storage.Key)
	dashboardSvc := dashboard.NewService(snapshots, cfg.Storage.Key, prof, cfg.Server.MaxBodySizeMB)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), snapshots, cfg.Server.Mode)
	updateSvc.RegisterRoutes(srv.Engine)
	intakeSvc.RegisterRoutes(srv.Engine)
	dashboardSvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Scheduler.Enabled {
		scheduler := update.NewScheduler(cfg.Scheduler.SchedulerInterval(), updateSvc)
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("Scheduler stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Periodic updates disabled by config; trigger POST /update externally")
	}

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// openStore builds the configured snapshot store backend.
// The returned cleanup is safe to call exactly once.
func openStore(cfg *config.Config) (store.SnapshotStore, func(), error) {
	switch cfg.Storage.Type {
	case "postgres":
		adapter, err := postgres.NewAdapter(
			cfg.Storage.DSN,
			cfg.Storage.MaxOpenConns,
			cfg.Storage.MaxIdleConns,
		)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunMigrations(adapter.DB(), cfg.Storage.AutoMigrate); err != nil {
			adapter.Close()
			return nil, nil, err
		}
		return adapter, func() { adapter.Close() }, nil

	case "badger":
		s, err := badgerstore.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case "memory":
		return store.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
