package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"library-lending/config"
	"library-lending/kvstore"
	"library-lending/library"
	"library-lending/logger"
	"library-lending/metrics"
)

// app carries what every command needs once the root command has set it up.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// flags
	configPath string
	backend    string
	dbPath     string

	cfg      *config.Config
	log      *slog.Logger
	store    kvstore.Store
	registry *prometheus.Registry
	svc      *library.Service
}

// open resolves configuration and loads the library from the configured store.
func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.backend != "" {
		cfg.StoreBackend = a.backend
	}
	if a.dbPath != "" {
		cfg.SQLitePath = a.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.New(a.errOut, cfg.LogLevel, cfg.LogFormat).With(slog.String("run_id", uuid.NewString()))

	store, err := kvstore.Open(storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	a.store = store

	a.registry = prometheus.NewRegistry()
	svc, err := library.NewService(ctx, store,
		library.WithLogger(a.log),
		library.WithMetrics(metrics.NewCollector(a.registry)),
	)
	if err != nil {
		return err
	}
	a.svc = svc

	a.log.Debug("library opened",
		slog.String("store", cfg.StoreBackend),
		slog.String("sqlite_path", cfg.SQLitePath),
	)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func storeOptions(cfg *config.Config) kvstore.Options {
	return kvstore.Options{
		Backend:    cfg.StoreBackend,
		SQLitePath: cfg.SQLitePath,
		Redis: kvstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		},
	}
}
