// Package liveprice keeps the sparse map of prices entered during the live
// auction, keyed by canonical player key.
package liveprice

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/atmx/auction-planner/internal/model"
	"github.com/atmx/auction-planner/internal/store"
)

// Store reads and writes the live_prices slot.
type Store struct {
	store  store.Store
	logger *slog.Logger
	mu     sync.Mutex
}

func New(st store.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{store: st, logger: logger.With("component", "liveprice")}
}

// Get returns the current prices, empty when nothing was entered.
func (s *Store) Get(ctx context.Context) (model.LivePrices, error) {
	raw, _, err := store.LoadJSON(ctx, s.store, store.SlotLivePrices, map[string]any{})
	if err != nil {
		return nil, err
	}
	prices := make(model.LivePrices, len(raw))
	for k, v := range raw {
		if p, ok := model.Number(v); ok && p > 0 {
			prices[k] = int(math.Round(p))
		}
	}
	return prices, nil
}

// Set records price for key. A non-positive or non-finite price removes
// the entry. An empty key is ignored.
func (s *Store) Set(ctx context.Context, key string, price float64) (model.LivePrices, error) {
	key = strings.TrimSpace(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	prices, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return prices, nil
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		delete(prices, key)
	} else {
		prices[key] = int(math.Round(price))
	}
	if err := store.SaveJSON(ctx, s.store, store.SlotLivePrices, prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// Clear removes every live price.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("live prices cleared")
	return store.SaveJSON(ctx, s.store, store.SlotLivePrices, model.LivePrices{})
}
