package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LivePrices maps a canonical player key to the price entered during the
// live auction. Entries are always positive.
type LivePrices map[string]int

// BudgetSummary is the result of a budget recalculation.
type BudgetSummary struct {
	Spent       decimal.Decimal
	Remaining   decimal.Decimal
	BudgetTotal decimal.Decimal
}

// MarshalJSON writes the amounts as JSON numbers.
func (s BudgetSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Spent       json.Number `json:"spent"`
		Remaining   json.Number `json:"remaining"`
		BudgetTotal json.Number `json:"budgetTotal"`
	}{
		Spent:       json.Number(s.Spent.String()),
		Remaining:   json.Number(s.Remaining.String()),
		BudgetTotal: json.Number(s.BudgetTotal.String()),
	})
}

func (s *BudgetSummary) UnmarshalJSON(data []byte) error {
	var raw struct {
		Spent       decimal.Decimal `json:"spent"`
		Remaining   decimal.Decimal `json:"remaining"`
		BudgetTotal decimal.Decimal `json:"budgetTotal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Spent, s.Remaining, s.BudgetTotal = raw.Spent, raw.Remaining, raw.BudgetTotal
	return nil
}
