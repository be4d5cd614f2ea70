// Package roster owns the list of owned and contracted players.
//
// Stored entries may have been written by older versions with legacy ids,
// string-typed numbers or duplicate players. Roster returns a healed view of
// that data without writing; Migrate persists the healed view once, and
// every mutator writes the healed list back.
package roster

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/atmx/auction-planner/internal/keys"
	"github.com/atmx/auction-planner/internal/metrics"
	"github.com/atmx/auction-planner/internal/model"
	"github.com/atmx/auction-planner/internal/store"
)

// Recalculator recomputes the derived budget after a spend-affecting change.
type Recalculator interface {
	Recalculate(ctx context.Context) (model.BudgetSummary, error)
}

// MigrationReport describes what a self-heal pass found.
type MigrationReport struct {
	Loaded          int  `json:"loaded"`
	Kept            int  `json:"kept"`
	Merged          int  `json:"merged"`
	Recanonicalized int  `json:"recanonicalized"`
	Dropped         int  `json:"dropped"`
	Changed         bool `json:"changed"`
}

// Manager reads and writes the roster slot. Mutations are serialized.
type Manager struct {
	store  store.Store
	logger *slog.Logger
	recalc Recalculator
	mu     sync.Mutex
}

// NewManager creates a roster manager over st.
func NewManager(st store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  st,
		logger: logger.With("component", "roster"),
	}
}

// SetRecalculator wires the budget reconciler. Pass nil to disable.
func (m *Manager) SetRecalculator(r Recalculator) {
	m.recalc = r
}

// MakeID returns the canonical roster id for a typed, named record.
func MakeID(r keys.Identity) string {
	return keys.FromRecord(r)
}

// Roster returns the healed roster: normalized, keyed by canonical id and
// with duplicates merged. It never writes.
func (m *Manager) Roster(ctx context.Context) ([]model.RosterPlayer, error) {
	players, _, err := m.load(ctx)
	return players, err
}

// Get returns one roster player by id.
func (m *Manager) Get(ctx context.Context, id string) (model.RosterPlayer, bool, error) {
	players, err := m.Roster(ctx)
	if err != nil {
		return model.RosterPlayer{}, false, err
	}
	if i := indexOf(players, id); i >= 0 {
		return players[i], true, nil
	}
	return model.RosterPlayer{}, false, nil
}

// Keepers returns the players currently under contract.
func (m *Manager) Keepers(ctx context.Context) ([]model.RosterPlayer, error) {
	players, err := m.Roster(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.RosterPlayer
	for _, p := range players {
		if p.UnderContract {
			out = append(out, p)
		}
	}
	return out, nil
}

// Migrate persists the healed roster when it differs from what is stored
// (by length or by per-position id). Running it twice in a row performs
// no second write.
func (m *Manager) Migrate(ctx context.Context) (MigrationReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	players, report, err := m.load(ctx)
	if err != nil {
		return report, err
	}
	if !report.Changed {
		return report, nil
	}
	if err := store.SaveJSON(ctx, m.store, store.SlotRoster, players); err != nil {
		return report, err
	}
	metrics.RosterMigrations.Inc()
	metrics.RosterDuplicatesMerged.Add(float64(report.Merged))
	m.logger.Info("roster migrated",
		"loaded", report.Loaded,
		"kept", report.Kept,
		"merged", report.Merged,
		"recanonicalized", report.Recanonicalized,
		"dropped", report.Dropped,
	)
	return report, nil
}

// Set persists list verbatim. Callers are responsible for normalization.
func (m *Manager) Set(ctx context.Context, list []model.RosterPlayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if list == nil {
		list = []model.RosterPlayer{}
	}
	return store.SaveJSON(ctx, m.store, store.SlotRoster, list)
}

// AddFromRecord upserts a player from an imported projection record. An
// existing entry only has its blank descriptive fields filled; contract
// fields are never touched. A new entry starts with the default contract
// and is placed first.
func (m *Manager) AddFromRecord(ctx context.Context, rec model.PlayerRecord) (model.RosterPlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	players, _, err := m.load(ctx)
	if err != nil {
		return model.RosterPlayer{}, err
	}

	id := MakeID(rec)
	var entry model.RosterPlayer
	if i := indexOf(players, id); i >= 0 {
		entry = players[i]
		if entry.Name == "" {
			entry.Name = strings.TrimSpace(rec.Name)
		}
		if entry.Team == "" {
			entry.Team = strings.TrimSpace(rec.Team)
		}
		if entry.Pos == "" {
			entry.Pos = strings.TrimSpace(rec.POS)
		}
		if entry.Type == "" {
			entry.Type = keys.NormalizeType(rec.Type)
		}
		players[i] = entry
	} else {
		entry = model.RosterPlayer{
			ID:            id,
			Name:          strings.TrimSpace(rec.Name),
			Type:          keys.NormalizeType(rec.Type),
			Team:          strings.TrimSpace(rec.Team),
			Pos:           strings.TrimSpace(rec.POS),
			UnderContract: false,
			ContractYear:  model.MinContractYears,
			ContractTotal: model.MinContractYears,
			Price:         0,
		}
		players = append([]model.RosterPlayer{entry}, players...)
	}

	if err := store.SaveJSON(ctx, m.store, store.SlotRoster, players); err != nil {
		return entry, err
	}
	m.logger.Debug("roster upsert", "id", id)
	return entry, nil
}

// Update merges patch onto the player with id and re-normalizes it. The
// boolean is false when no such player exists.
func (m *Manager) Update(ctx context.Context, id string, patch model.RosterPatch) (model.RosterPlayer, bool, error) {
	m.mu.Lock()
	players, _, err := m.load(ctx)
	if err != nil {
		m.mu.Unlock()
		return model.RosterPlayer{}, false, err
	}
	i := indexOf(players, id)
	if i < 0 {
		m.mu.Unlock()
		return model.RosterPlayer{}, false, nil
	}

	p := applyPatch(players[i], patch)
	p.ID = players[i].ID
	p = Normalize(p)
	players[i] = p

	err = store.SaveJSON(ctx, m.store, store.SlotRoster, players)
	m.mu.Unlock()
	if err != nil {
		return p, true, err
	}
	m.recalculate(ctx)
	return p, true, nil
}

// Remove deletes the player with id and reports whether one was removed.
func (m *Manager) Remove(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	players, _, err := m.load(ctx)
	if err != nil {
		m.mu.Unlock()
		return false, err
	}
	kept := make([]model.RosterPlayer, 0, len(players))
	for _, p := range players {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(kept) != len(players)

	err = store.SaveJSON(ctx, m.store, store.SlotRoster, kept)
	m.mu.Unlock()
	if err != nil {
		return false, err
	}
	if removed {
		m.recalculate(ctx)
	}
	return removed, nil
}

// recalculate runs outside the roster lock because the reconciler reads
// the roster back.
func (m *Manager) recalculate(ctx context.Context) {
	if m.recalc == nil {
		return
	}
	if _, err := m.recalc.Recalculate(ctx); err != nil {
		m.logger.Error("budget recalculation failed", "err", err)
	}
}

// load reads the stored roster and heals it in memory.
func (m *Manager) load(ctx context.Context) ([]model.RosterPlayer, MigrationReport, error) {
	stored, _, err := store.LoadJSON(ctx, m.store, store.SlotRoster, []any{})
	if err != nil {
		return nil, MigrationReport{}, err
	}
	players, report := heal(stored)
	return players, report, nil
}

// heal normalizes, recanonicalizes and de-duplicates raw stored entries.
// Entries that are not JSON objects are dropped. First-seen order is kept.
func heal(stored []any) ([]model.RosterPlayer, MigrationReport) {
	report := MigrationReport{Loaded: len(stored)}

	var order []string
	byKey := make(map[string]map[string]any)
	storedIDs := make([]string, 0, len(stored))

	for _, item := range stored {
		raw, ok := item.(map[string]any)
		if !ok {
			report.Dropped++
			continue
		}
		storedIDs = append(storedIDs, strings.TrimSpace(model.Text(raw["id"])))

		p := NormalizePlayer(raw)
		key := p.Key()
		if key != p.ID {
			report.Recanonicalized++
		}
		// Carry the recovered name/type so later merges and the final
		// normalization see the canonical identity.
		entry := make(map[string]any, len(raw))
		for k, v := range raw {
			entry[k] = v
		}
		entry["name"] = p.Name
		entry["type"] = p.Type

		if existing, dup := byKey[key]; dup {
			byKey[key] = mergeDuplicate(existing, entry)
			report.Merged++
			continue
		}
		byKey[key] = entry
		order = append(order, key)
	}

	players := make([]model.RosterPlayer, 0, len(order))
	for _, key := range order {
		p := NormalizePlayer(byKey[key])
		p.ID = key
		players = append(players, p)
	}
	report.Kept = len(players)

	report.Changed = report.Dropped > 0 || len(players) != len(storedIDs)
	if !report.Changed {
		for i, p := range players {
			if p.ID != storedIDs[i] {
				report.Changed = true
				break
			}
		}
	}
	return players, report
}

func applyPatch(p model.RosterPlayer, patch model.RosterPatch) model.RosterPlayer {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Team != nil {
		p.Team = *patch.Team
	}
	if patch.Pos != nil {
		p.Pos = *patch.Pos
	}
	if patch.UnderContract != nil {
		p.UnderContract = *patch.UnderContract
	}
	if patch.ContractYear != nil {
		p.ContractYear = *patch.ContractYear
	}
	if patch.ContractTotal != nil {
		p.ContractTotal = *patch.ContractTotal
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	return p
}

func indexOf(players []model.RosterPlayer, id string) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
