package settings

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/atmx/auction-planner/internal/model"
	"github.com/atmx/auction-planner/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewManager(ms, nil, WithClock(func() time.Time { return fixed })), ms
}

func assertCanonical(t *testing.T, w model.CategoryWeights) {
	t.Helper()
	if len(w) != len(model.Categories) {
		t.Fatalf("expected %d keys, got %d: %v", len(model.Categories), len(w), w)
	}
	for _, k := range model.Categories {
		v, ok := w[k]
		if !ok {
			t.Fatalf("missing key %s", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite value for %s: %v", k, v)
		}
	}
}

func TestNormalizeCategoryWeights_FillsMissingKeys(t *testing.T) {
	w := NormalizeCategoryWeights(map[string]any{"HR": 2.5, "ERA": "0.5"})
	assertCanonical(t, w)
	if w["HR"] != 2.5 || w["ERA"] != 0.5 {
		t.Errorf("supplied values lost: %v", w)
	}
	if w["SV"] != model.DefaultCategoryWeight {
		t.Errorf("expected default for SV, got %v", w["SV"])
	}
}

func TestNormalizeCategoryWeights_NilAndGarbage(t *testing.T) {
	assertCanonical(t, NormalizeCategoryWeights(nil))

	w := NormalizeCategoryWeights(map[string]any{
		"AVG": math.NaN(),
		"OPS": math.Inf(-1),
		"TB":  "lots",
		"K":   map[string]any{},
		"XYZ": 4,
	})
	assertCanonical(t, w)
	for _, k := range []string{"AVG", "OPS", "TB", "K"} {
		if w[k] != model.DefaultCategoryWeight {
			t.Errorf("%s = %v, want default", k, w[k])
		}
	}
	if _, ok := w["XYZ"]; ok {
		t.Error("unknown key should not be retained")
	}
}

func TestNormalizeCategoryWeights_LegacyKeyMigratesWhenAbsent(t *testing.T) {
	w := NormalizeCategoryWeights(map[string]any{"SBN": 3})
	assertCanonical(t, w)
	if w["SB"] != 3 {
		t.Errorf("SB = %v, want migrated 3", w["SB"])
	}
	if _, ok := w["SBN"]; ok {
		t.Error("legacy key must not be retained")
	}
}

func TestNormalizeCategoryWeights_LegacyNeverOverwrites(t *testing.T) {
	w := NormalizeCategoryWeights(map[string]any{"SBN": 3, "SB": 1.5})
	if w["SB"] != 1.5 {
		t.Errorf("SB = %v, want existing 1.5", w["SB"])
	}
}

func TestGet_DefaultsOnFirstRun(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.BudgetTotal != DefaultBudgetTotal || s.BudgetRemaining != DefaultBudgetTotal {
		t.Errorf("budget = %d/%d", s.BudgetTotal, s.BudgetRemaining)
	}
	if s.HitterSlotsTotal != DefaultHitterSlotsTotal || s.PitcherSlotsTotal != DefaultPitcherSlotsTotal {
		t.Errorf("slots = %d/%d", s.HitterSlotsTotal, s.PitcherSlotsTotal)
	}
	if s.ValueMode != model.ValueModeProjection {
		t.Errorf("value mode = %q", s.ValueMode)
	}
	assertCanonical(t, s.CategoryWeights)
}

func TestGet_SelfHealsPartialDocument(t *testing.T) {
	m, ms := newTestManager(t)
	ms.Put(context.Background(), store.SlotSettings,
		[]byte(`{"budget_total":"300","value_mode":"MARKET","category_weights":{"SBN":2,"HR":"x"}}`))

	s, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.BudgetTotal != 300 || s.BudgetRemaining != 300 {
		t.Errorf("budget = %d/%d", s.BudgetTotal, s.BudgetRemaining)
	}
	if s.ValueMode != model.ValueModeMarket {
		t.Errorf("value mode = %q", s.ValueMode)
	}
	assertCanonical(t, s.CategoryWeights)
	if s.CategoryWeights["SB"] != 2 || s.CategoryWeights["HR"] != model.DefaultCategoryWeight {
		t.Errorf("weights = %v", s.CategoryWeights)
	}
}

func TestGet_CorruptDocumentFallsBack(t *testing.T) {
	m, ms := newTestManager(t)
	ms.Put(context.Background(), store.SlotSettings, []byte(`{"budget_total":`))
	s, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.BudgetTotal != DefaultBudgetTotal {
		t.Errorf("budget = %d", s.BudgetTotal)
	}
}

func TestSetCategoryWeights_ThreeWayMergeAndStamp(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.SetCategoryWeights(ctx, map[string]any{"HR": 2, "SV": 0}); err != nil {
		t.Fatalf("first set: %v", err)
	}
	s, err := m.SetCategoryWeights(ctx, map[string]any{"SV": 0.5, "BOGUS": 9})
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	assertCanonical(t, s.CategoryWeights)
	if s.CategoryWeights["HR"] != 2 {
		t.Errorf("persisted HR lost: %v", s.CategoryWeights["HR"])
	}
	if s.CategoryWeights["SV"] != 0.5 {
		t.Errorf("incoming SV not applied: %v", s.CategoryWeights["SV"])
	}

	at, ok, err := m.CategoryWeightsUpdatedAt(ctx)
	if err != nil || !ok {
		t.Fatalf("expected stamp, ok=%v err=%v", ok, err)
	}
	if !at.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("stamp = %v", at)
	}
}

func TestCategoryWeightsUpdatedAt_UnsetSentinel(t *testing.T) {
	m, _ := newTestManager(t)
	_, ok, err := m.CategoryWeightsUpdatedAt(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected unset on first run")
	}
}

func TestSet_ShallowMergeKeepsOtherFields(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	total := 300
	if _, err := m.Set(ctx, model.SettingsPatch{BudgetTotal: &total}); err != nil {
		t.Fatalf("set total: %v", err)
	}
	remaining := -5
	s, err := m.Set(ctx, model.SettingsPatch{BudgetRemaining: &remaining})
	if err != nil {
		t.Fatalf("set remaining: %v", err)
	}
	if s.BudgetTotal != 300 {
		t.Errorf("budget_total clobbered: %d", s.BudgetTotal)
	}
	if s.BudgetRemaining != 0 {
		t.Errorf("remaining should clamp at 0, got %d", s.BudgetRemaining)
	}

	loaded, _ := m.Get(ctx)
	if loaded.BudgetTotal != 300 || loaded.BudgetRemaining != 0 {
		t.Errorf("persisted = %+v", loaded)
	}
}

func TestSet_NormalizesReplacedWeights(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.Set(context.Background(), model.SettingsPatch{
		CategoryWeights: map[string]any{"SBN": 4, "EXTRA": 1},
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	assertCanonical(t, s.CategoryWeights)
	if s.CategoryWeights["SB"] != 4 {
		t.Errorf("SB = %v", s.CategoryWeights["SB"])
	}
}

func TestWithDefaultBudget(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), nil, WithDefaultBudget(400))
	s, _ := m.Get(context.Background())
	if s.BudgetTotal != 400 || s.BudgetRemaining != 400 {
		t.Errorf("budget = %d/%d", s.BudgetTotal, s.BudgetRemaining)
	}
}
