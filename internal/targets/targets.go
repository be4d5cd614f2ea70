// Package targets owns the prep-board list of auction targets.
package targets

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/atmx/auction-planner/internal/keys"
	"github.com/atmx/auction-planner/internal/model"
	"github.com/atmx/auction-planner/internal/store"
)

// Recalculator recomputes the derived budget after a plan change.
type Recalculator interface {
	Recalculate(ctx context.Context) (model.BudgetSummary, error)
}

// Manager reads and writes the auction_targets slot.
type Manager struct {
	store  store.Store
	logger *slog.Logger
	recalc Recalculator
	newID  func() string
	mu     sync.Mutex
}

// NewManager creates a target manager over st.
func NewManager(st store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  st,
		logger: logger.With("component", "targets"),
		newID:  func() string { return uuid.New().String() },
	}
}

// SetRecalculator wires the budget reconciler. Pass nil to disable.
func (m *Manager) SetRecalculator(r Recalculator) {
	m.recalc = r
}

// List returns the persisted targets in board order.
func (m *Manager) List(ctx context.Context) ([]model.AuctionTarget, error) {
	return m.load(ctx)
}

// Get returns one target by id.
func (m *Manager) Get(ctx context.Context, id string) (model.AuctionTarget, bool, error) {
	list, err := m.load(ctx)
	if err != nil {
		return model.AuctionTarget{}, false, err
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i], true, nil
	}
	return model.AuctionTarget{}, false, nil
}

// Add creates a target from caller-supplied fields and places it first on
// the board. Any id in fields is replaced by a fresh one; player_key is
// derived from type and name when not supplied.
func (m *Manager) Add(ctx context.Context, fields map[string]any) (model.AuctionTarget, error) {
	in := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		in[k] = v
	}
	in["id"] = m.newID()

	t := model.TargetFromFields(in)
	if t.PlayerKey == "" {
		t.PlayerKey = keys.FromRecord(t)
	}

	m.mu.Lock()
	list, err := m.load(ctx)
	if err == nil {
		list = append([]model.AuctionTarget{t}, list...)
		err = m.save(ctx, list)
	}
	m.mu.Unlock()
	if err != nil {
		return model.AuctionTarget{}, err
	}

	m.logger.Debug("target added", "id", t.ID, "player_key", t.PlayerKey)
	m.recalculate(ctx)
	return t, nil
}

// Update merges patch onto the target with id. Numeric planning fields are
// only re-coerced when patch supplies them; the id cannot be changed. The
// boolean is false when no such target exists.
func (m *Manager) Update(ctx context.Context, id string, patch map[string]any) (model.AuctionTarget, bool, error) {
	m.mu.Lock()
	list, err := m.load(ctx)
	if err != nil {
		m.mu.Unlock()
		return model.AuctionTarget{}, false, err
	}
	i := indexOf(list, id)
	if i < 0 {
		m.mu.Unlock()
		return model.AuctionTarget{}, false, nil
	}

	merged := list[i].Fields()
	for k, v := range patch {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
	t := model.TargetFromFields(merged)
	t.ID = list[i].ID
	if t.PlayerKey == "" {
		t.PlayerKey = keys.FromRecord(t)
	}
	list[i] = t

	err = m.save(ctx, list)
	m.mu.Unlock()
	if err != nil {
		return t, true, err
	}
	m.recalculate(ctx)
	return t, true, nil
}

// Remove deletes the target with id and reports whether one was removed.
func (m *Manager) Remove(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	list, err := m.load(ctx)
	if err != nil {
		m.mu.Unlock()
		return false, err
	}
	kept := make([]model.AuctionTarget, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	removed := len(kept) != len(list)
	err = m.save(ctx, kept)
	m.mu.Unlock()
	if err != nil {
		return false, err
	}
	m.recalculate(ctx)
	return removed, nil
}

// Clear empties the board.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	err := m.save(ctx, nil)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.recalculate(ctx)
	return nil
}

func (m *Manager) recalculate(ctx context.Context) {
	if m.recalc == nil {
		return
	}
	if _, err := m.recalc.Recalculate(ctx); err != nil {
		m.logger.Error("budget recalculation failed", "err", err)
	}
}

// load decodes the slot leniently: entries that are not objects are skipped
// so one bad element does not discard the whole board.
func (m *Manager) load(ctx context.Context) ([]model.AuctionTarget, error) {
	raw, _, err := store.LoadJSON(ctx, m.store, store.SlotAuctionTargets, []any{})
	if err != nil {
		return nil, err
	}
	list := make([]model.AuctionTarget, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.(map[string]any)
		if !ok {
			m.logger.Warn("skipping malformed target entry")
			continue
		}
		list = append(list, model.TargetFromFields(fields))
	}
	return list, nil
}

func (m *Manager) save(ctx context.Context, list []model.AuctionTarget) error {
	if list == nil {
		list = []model.AuctionTarget{}
	}
	return store.SaveJSON(ctx, m.store, store.SlotAuctionTargets, list)
}

func indexOf(list []model.AuctionTarget, id string) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}
