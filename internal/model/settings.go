// Package model defines the documents persisted by the auction planner and
// the lenient coercions used to read historical versions of them.
package model

import "time"

// Hitting and pitching category codes, in display order.
var (
	HittingCategories  = []string{"AVG", "OPS", "TB", "HR", "RBI", "R", "SB"}
	PitchingCategories = []string{"ERA", "WHIP", "IP", "QS", "K", "SV", "HLD"}
)

// Categories lists all 14 category codes.
var Categories = append(append([]string{}, HittingCategories...), PitchingCategories...)

// LegacyCategoryKeys maps retired weight keys to their replacement.
var LegacyCategoryKeys = map[string]string{
	"SBN": "SB",
}

// DefaultCategoryWeight is used for any category without a finite weight.
const DefaultCategoryWeight = 1.0

// CategoryWeights maps each category code to its strategy weight.
type CategoryWeights map[string]float64

// Value modes.
const (
	ValueModeProjection = "proj"
	ValueModeMarket     = "market"
)

// Settings is the league configuration singleton.
type Settings struct {
	BudgetTotal              int             `json:"budget_total"`
	BudgetRemaining          int             `json:"budget_remaining"`
	HitterSlotsTotal         int             `json:"hitter_slots_total"`
	PitcherSlotsTotal        int             `json:"pitcher_slots_total"`
	CategoryWeights          CategoryWeights `json:"category_weights"`
	CategoryWeightsUpdatedAt *time.Time      `json:"category_weights_updated_at,omitempty"`
	ValueMode                string          `json:"value_mode"`
}

// SettingsPatch carries a shallow partial update. Nil fields are left alone.
type SettingsPatch struct {
	BudgetTotal       *int           `json:"budget_total,omitempty"`
	BudgetRemaining   *int           `json:"budget_remaining,omitempty"`
	HitterSlotsTotal  *int           `json:"hitter_slots_total,omitempty"`
	PitcherSlotsTotal *int           `json:"pitcher_slots_total,omitempty"`
	CategoryWeights   map[string]any `json:"category_weights,omitempty"`
	ValueMode         *string        `json:"value_mode,omitempty"`
}
