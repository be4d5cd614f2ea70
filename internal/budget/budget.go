// Package budget derives spent and remaining draft budget from the roster
// and the auction board, writes the result into settings and tells
// observers about it.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/atmx/auction-planner/internal/keys"
	"github.com/atmx/auction-planner/internal/metrics"
	"github.com/atmx/auction-planner/internal/model"
)

// SettingsSource is the slice of the settings manager the reconciler uses.
type SettingsSource interface {
	Get(ctx context.Context) (model.Settings, error)
	Set(ctx context.Context, patch model.SettingsPatch) (model.Settings, error)
}

// KeeperSource lists the roster players under contract.
type KeeperSource interface {
	Keepers(ctx context.Context) ([]model.RosterPlayer, error)
}

// TargetSource lists the auction board.
type TargetSource interface {
	List(ctx context.Context) ([]model.AuctionTarget, error)
}

// Observer receives every successful recalculation.
type Observer interface {
	Notify(summary model.BudgetSummary)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(model.BudgetSummary)

func (f ObserverFunc) Notify(s model.BudgetSummary) { f(s) }

type subscription struct {
	id  int
	obs Observer
}

// Reconciler recomputes the budget. It reads roster and targets but only
// ever writes budget_remaining into settings.
type Reconciler struct {
	settings SettingsSource
	roster   KeeperSource
	targets  TargetSource
	logger   *slog.Logger

	mu        sync.Mutex
	observers []subscription
	nextID    int
}

func NewReconciler(settings SettingsSource, roster KeeperSource, targets TargetSource, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		settings: settings,
		roster:   roster,
		targets:  targets,
		logger:   logger.With("component", "budget"),
	}
}

// Subscribe registers obs and returns a function that removes it.
func (r *Reconciler) Subscribe(obs Observer) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.observers = append(r.observers, subscription{id: id, obs: obs})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, s := range r.observers {
			if s.id == id {
				r.observers = append(r.observers[:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// Recalculate computes spend as keeper contract prices plus positive
// planned amounts for targets that are not keepers, and remaining as the
// total minus spend floored at zero. The remaining amount is persisted and
// observers are notified; the returned summary is authoritative either way.
func (r *Reconciler) Recalculate(ctx context.Context) (model.BudgetSummary, error) {
	settings, err := r.settings.Get(ctx)
	if err != nil {
		return model.BudgetSummary{}, fmt.Errorf("read settings: %w", err)
	}
	keepers, err := r.roster.Keepers(ctx)
	if err != nil {
		return model.BudgetSummary{}, fmt.Errorf("read roster: %w", err)
	}
	targets, err := r.targets.List(ctx)
	if err != nil {
		return model.BudgetSummary{}, fmt.Errorf("read targets: %w", err)
	}

	summary := Compute(settings.BudgetTotal, keepers, targets)

	remaining := int(summary.Remaining.Floor().IntPart())
	if _, err := r.settings.Set(ctx, model.SettingsPatch{BudgetRemaining: &remaining}); err != nil {
		return summary, fmt.Errorf("persist budget_remaining: %w", err)
	}

	metrics.BudgetRecalculations.Inc()
	metrics.BudgetSpent.Set(summary.Spent.InexactFloat64())
	metrics.BudgetRemaining.Set(summary.Remaining.InexactFloat64())
	r.logger.Debug("budget recalculated",
		"spent", summary.Spent.String(),
		"remaining", summary.Remaining.String(),
		"total", summary.BudgetTotal.String(),
	)

	r.notify(summary)
	return summary, nil
}

// Compute is the pure budget arithmetic. Keeper identity is recomputed from
// each keeper's type and name rather than its stored id.
func Compute(total int, keepers []model.RosterPlayer, targets []model.AuctionTarget) model.BudgetSummary {
	contractSpent := decimal.Zero
	keeperKeys := make(map[string]struct{}, len(keepers))
	for _, p := range keepers {
		if !p.UnderContract {
			continue
		}
		contractSpent = contractSpent.Add(decimal.NewFromInt(int64(p.Price)))
		keeperKeys[keys.Make(p.Type, p.Name)] = struct{}{}
	}

	plannedSpent := decimal.Zero
	for _, t := range targets {
		if t.Plan <= 0 {
			continue
		}
		key := t.PlayerKey
		if key == "" {
			key = keys.FromRecord(t)
		}
		if _, keeper := keeperKeys[key]; keeper {
			continue
		}
		plannedSpent = plannedSpent.Add(decimal.NewFromFloat(t.Plan))
	}

	budgetTotal := decimal.NewFromInt(int64(total))
	spent := contractSpent.Add(plannedSpent)
	remaining := decimal.Max(decimal.Zero, budgetTotal.Sub(spent))
	return model.BudgetSummary{
		Spent:       spent,
		Remaining:   remaining,
		BudgetTotal: budgetTotal,
	}
}

func (r *Reconciler) notify(summary model.BudgetSummary) {
	r.mu.Lock()
	subs := make([]subscription, len(r.observers))
	copy(subs, r.observers)
	r.mu.Unlock()

	for _, s := range subs {
		r.deliver(s.obs, summary)
	}
}

func (r *Reconciler) deliver(obs Observer, summary model.BudgetSummary) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.NotificationFailures.Inc()
			r.logger.Debug("budget observer failed", "err", rec)
		}
	}()
	obs.Notify(summary)
}
