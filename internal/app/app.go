// Package app assembles the planner from configuration: it opens the
// configured store and wires the managers to the budget reconciler.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/atmx/auction-planner/internal/budget"
	"github.com/atmx/auction-planner/internal/config"
	"github.com/atmx/auction-planner/internal/liveprice"
	"github.com/atmx/auction-planner/internal/roster"
	"github.com/atmx/auction-planner/internal/settings"
	"github.com/atmx/auction-planner/internal/store"
	"github.com/atmx/auction-planner/internal/targets"
)

// Planner holds every manager over one shared store.
type Planner struct {
	Store      store.Store
	Settings   *settings.Manager
	Roster     *roster.Manager
	Targets    *targets.Manager
	LivePrices *liveprice.Store
	Budget     *budget.Reconciler
}

// New wires managers over st. Roster and target mutations recalculate the
// budget.
func New(st store.Store, logger *slog.Logger, opts ...settings.Option) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Planner{
		Store:      st,
		Settings:   settings.NewManager(st, logger, opts...),
		Roster:     roster.NewManager(st, logger),
		Targets:    targets.NewManager(st, logger),
		LivePrices: liveprice.New(st, logger),
	}
	p.Budget = budget.NewReconciler(p.Settings, p.Roster, p.Targets, logger)
	p.Roster.SetRecalculator(p.Budget)
	p.Targets.SetRecalculator(p.Budget)
	return p
}

// Open connects the configured backend (plus the optional Redis cache) and
// returns a wired planner. Close releases the store.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Planner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(st, logger, settings.WithDefaultBudget(cfg.BudgetTotalDefault)), nil
}

// OpenStore returns the store selected by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory store (data will not persist)")
		st = store.NewMemoryStore()

	case config.BackendFile:
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Info("using file store", "dir", cfg.DataDir)
		st = fs

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o700); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		ss, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
		st = ss

	case config.BackendPostgres:
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		ps := store.NewPostgresStore(pool)
		if err := ps.EnsureSchema(ctx); err != nil {
			ps.Close()
			return nil, err
		}
		logger.Info("connected to PostgreSQL")
		st = ps

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if cfg.RedisURL != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			st.Close()
			return nil, err
		}
		st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
		logger.Info("Redis cache enabled", "ttl", cfg.CacheTTL)
	}
	return st, nil
}

// Close releases the underlying store.
func (p *Planner) Close() error {
	return p.Store.Close()
}
