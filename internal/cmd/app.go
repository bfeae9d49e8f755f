package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/metrics"
	"github.com/matthieukhl/storefront/internal/storage"
	"github.com/matthieukhl/storefront/internal/store"
)

// app is one bootstrapped client: config, durable storage and a restored store.
type app struct {
	ctx   context.Context
	cfg   *config.Config
	log   *slog.Logger
	kv    storage.KV
	store *store.Store
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func openApp(ctx context.Context, m *metrics.Metrics) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg.Log.Level)

	kv, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	src, err := catalog.NewSource(&cfg.Catalog)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to create catalog source: %w", err)
	}

	st := store.New(kv, src,
		store.WithLoginDelay(cfg.Auth.LoginDelay),
		store.WithLogger(log),
		store.WithMetrics(m),
	)

	// Unreadable slots fall back to defaults; the store already logged why.
	_ = st.Restore(ctx)

	return &app{ctx: ctx, cfg: cfg, log: log, kv: kv, store: st}, nil
}

// close flushes queued writes before releasing storage.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.store.Close(ctx); err != nil {
		a.log.Warn("failed to flush storage", "error", err)
	}
	if err := a.kv.Close(); err != nil {
		a.log.Warn("failed to close storage", "error", err)
	}
}

func (a *app) requireLogin() error {
	if !a.store.Snapshot().IsAuthenticated {
		return fmt.Errorf("not logged in, run 'storefront login' first")
	}
	return nil
}
