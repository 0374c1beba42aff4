package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/bmadison30/XplainIQ-Lite/internal/catalog"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/config"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/logger"
	"github.com/bmadison30/XplainIQ-Lite/internal/leads"
	"github.com/bmadison30/XplainIQ-Lite/internal/notify"
	"github.com/bmadison30/XplainIQ-Lite/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "assessment-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := catalog.ValidateTierBands(catalog.TierBands); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewLogger(zapLogger)

	log.Info("starting assessment server", map[string]interface{}{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx := context.Background()
	opts := []server.Option{}

	store, closeDB, err := buildStore(cfg, log)
	if err != nil {
		return err
	}
	if closeDB != nil {
		defer closeDB()
	}
	opts = append(opts, server.WithStore(store))

	if cfg.Database.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Database.Redis.Address,
			Password: cfg.Database.Redis.Password,
			DB:       cfg.Database.Redis.DB,
		})
		defer rdb.Close()
		window := time.Duration(cfg.Leads.CooldownSeconds) * time.Second
		opts = append(opts, server.WithRateLimiter(leads.NewRateLimiter(rdb, window)))
		log.Info("submission cooldown enabled", map[string]interface{}{
			"window": window.String(),
		})
	}

	if cfg.Leads.WebhookURL != "" {
		forwarder := leads.NewForwarder(cfg.Leads.WebhookURL, cfg.Leads.AttachReport, 10*time.Second, log)
		opts = append(opts, server.WithForwarder(forwarder))
	}

	if cfg.Email.Enabled {
		sender, err := notify.NewSender(ctx, cfg.Email.Region, cfg.Email.FromEmail, log)
		if err != nil {
			return fmt.Errorf("init ses sender: %w", err)
		}
		opts = append(opts, server.WithEmailer(sender))
	}

	srv := server.New(cfg, log, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped", nil)
	return nil
}

// buildStore assembles the lead sink chain: postgres primary with a CSV
// fallback when both are configured.
func buildStore(cfg *config.Config, log logger.Logger) (leads.Store, func() error, error) {
	var csvStore leads.Store
	if cfg.Leads.CSVPath != "" {
		csvStore = leads.NewCSVStore(cfg.Leads.CSVPath)
	}

	if !cfg.Database.Postgres.Enabled {
		if csvStore == nil {
			return nil, nil, fmt.Errorf("no lead store configured: enable postgres or set leads.csv_path")
		}
		return csvStore, nil, nil
	}

	db, err := sql.Open("postgres", cfg.Database.Postgres.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.Postgres.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.Postgres.MaxIdle)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	pg := leads.NewPostgresStore(db, log)
	if csvStore != nil {
		return leads.NewFallbackStore(pg, csvStore, log), db.Close, nil
	}
	return pg, db.Close, nil
}
