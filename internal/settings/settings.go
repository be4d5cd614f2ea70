// Package settings owns the league configuration document: budget totals,
// roster slot counts, category strategy weights and the value display mode.
//
// The category weights sub-document is normalized on every read and write
// so it always holds exactly the 14 category codes with finite values.
package settings

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/atmx/auction-planner/internal/model"
	"github.com/atmx/auction-planner/internal/store"
)

// Documented defaults.
const (
	DefaultBudgetTotal       = 260
	DefaultHitterSlotsTotal  = 14
	DefaultPitcherSlotsTotal = 9
)

// Manager reads and writes the settings slot.
type Manager struct {
	store       store.Store
	logger      *slog.Logger
	now         func() time.Time
	budgetTotal int
	mu          sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used to stamp weight updates.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDefaultBudget overrides the budget used when none is persisted.
func WithDefaultBudget(total int) Option {
	return func(m *Manager) {
		if total >= 0 {
			m.budgetTotal = total
		}
	}
}

// NewManager creates a settings manager over st.
func NewManager(st store.Store, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:       st,
		logger:      logger.With("component", "settings"),
		now:         time.Now,
		budgetTotal: DefaultBudgetTotal,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Defaults returns the settings used for a first run.
func (m *Manager) Defaults() model.Settings {
	return model.Settings{
		BudgetTotal:       m.budgetTotal,
		BudgetRemaining:   m.budgetTotal,
		HitterSlotsTotal:  DefaultHitterSlotsTotal,
		PitcherSlotsTotal: DefaultPitcherSlotsTotal,
		CategoryWeights:   DefaultCategoryWeights(),
		ValueMode:         model.ValueModeProjection,
	}
}

// DefaultCategoryWeights returns every category at the default weight.
func DefaultCategoryWeights() model.CategoryWeights {
	out := make(model.CategoryWeights, len(model.Categories))
	for _, k := range model.Categories {
		out[k] = model.DefaultCategoryWeight
	}
	return out
}

// NormalizeCategoryWeights migrates legacy keys and returns exactly the
// canonical category set. A legacy value only moves to its replacement
// when the replacement is absent.
func NormalizeCategoryWeights(partial map[string]any) model.CategoryWeights {
	src := make(map[string]any, len(partial))
	for k, v := range partial {
		src[k] = v
	}
	for legacy, current := range model.LegacyCategoryKeys {
		old, hasLegacy := src[legacy]
		if !hasLegacy || old == nil {
			continue
		}
		if v, hasCurrent := src[current]; !hasCurrent || v == nil {
			src[current] = old
		}
	}

	out := make(model.CategoryWeights, len(model.Categories))
	for _, k := range model.Categories {
		out[k] = model.NumberOr(src[k], model.DefaultCategoryWeight)
	}
	return out
}

// Get loads the settings document, filling defaults for anything missing
// or malformed.
func (m *Manager) Get(ctx context.Context) (model.Settings, error) {
	raw, _, err := store.LoadJSON(ctx, m.store, store.SlotSettings, map[string]any{})
	if err != nil {
		return m.Defaults(), err
	}
	return m.fromRaw(raw), nil
}

func (m *Manager) fromRaw(raw map[string]any) model.Settings {
	def := m.Defaults()
	s := model.Settings{
		BudgetTotal:       nonNegative(model.NumberOr(raw["budget_total"], float64(def.BudgetTotal))),
		HitterSlotsTotal:  nonNegative(model.NumberOr(raw["hitter_slots_total"], float64(def.HitterSlotsTotal))),
		PitcherSlotsTotal: nonNegative(model.NumberOr(raw["pitcher_slots_total"], float64(def.PitcherSlotsTotal))),
		ValueMode:         normalizeValueMode(model.Text(raw["value_mode"])),
	}
	s.BudgetRemaining = nonNegative(model.NumberOr(raw["budget_remaining"], float64(s.BudgetTotal)))

	weights, _ := raw["category_weights"].(map[string]any)
	s.CategoryWeights = NormalizeCategoryWeights(weights)
	s.CategoryWeightsUpdatedAt = parseStamp(raw["category_weights_updated_at"])
	return s
}

// Set shallow-merges the non-nil patch fields over the current settings
// and persists the result. A patched weights document replaces the old one
// and is normalized.
func (m *Manager) Set(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Get(ctx)
	if err != nil {
		return s, err
	}
	if patch.BudgetTotal != nil {
		s.BudgetTotal = max(0, *patch.BudgetTotal)
	}
	if patch.BudgetRemaining != nil {
		s.BudgetRemaining = max(0, *patch.BudgetRemaining)
	}
	if patch.HitterSlotsTotal != nil {
		s.HitterSlotsTotal = max(0, *patch.HitterSlotsTotal)
	}
	if patch.PitcherSlotsTotal != nil {
		s.PitcherSlotsTotal = max(0, *patch.PitcherSlotsTotal)
	}
	if patch.ValueMode != nil {
		s.ValueMode = normalizeValueMode(*patch.ValueMode)
	}
	if patch.CategoryWeights != nil {
		s.CategoryWeights = NormalizeCategoryWeights(patch.CategoryWeights)
	} else {
		s.CategoryWeights = NormalizeCategoryWeights(weightsToAny(s.CategoryWeights))
	}

	if err := store.SaveJSON(ctx, m.store, store.SlotSettings, s); err != nil {
		return s, err
	}
	return s, nil
}

// SetCategoryWeights layers defaults, the persisted weights and next (each
// overriding the previous per key), normalizes, persists and stamps the
// update time.
func (m *Manager) SetCategoryWeights(ctx context.Context, next map[string]any) (model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Get(ctx)
	if err != nil {
		return s, err
	}

	merged := weightsToAny(DefaultCategoryWeights())
	for k, v := range s.CategoryWeights {
		merged[k] = v
	}
	for k, v := range next {
		merged[k] = v
	}
	s.CategoryWeights = NormalizeCategoryWeights(merged)
	stamp := m.now().UTC()
	s.CategoryWeightsUpdatedAt = &stamp

	if err := store.SaveJSON(ctx, m.store, store.SlotSettings, s); err != nil {
		return s, err
	}
	m.logger.Debug("category weights updated", "updated_at", stamp)
	return s, nil
}

// CategoryWeightsUpdatedAt returns the last weights update. The boolean is
// false when weights were never explicitly set.
func (m *Manager) CategoryWeightsUpdatedAt(ctx context.Context) (time.Time, bool, error) {
	s, err := m.Get(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	if s.CategoryWeightsUpdatedAt == nil {
		return time.Time{}, false, nil
	}
	return *s.CategoryWeightsUpdatedAt, true, nil
}

func weightsToAny(w model.CategoryWeights) map[string]any {
	out := make(map[string]any, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

func normalizeValueMode(mode string) string {
	if strings.ToLower(strings.TrimSpace(mode)) == model.ValueModeMarket {
		return model.ValueModeMarket
	}
	return model.ValueModeProjection
}

func nonNegative(f float64) int {
	return max(0, int(math.Round(f)))
}

// parseStamp accepts RFC 3339 strings and epoch milliseconds.
func parseStamp(v any) *time.Time {
	if s, ok := v.(string); ok {
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		if err != nil {
			return nil
		}
		return &t
	}
	if ms, ok := model.Number(v); ok && ms > 0 {
		t := time.UnixMilli(int64(ms)).UTC()
		return &t
	}
	return nil
}
