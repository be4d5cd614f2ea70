package roster

import (
	"math"
	"strings"

	"github.com/atmx/auction-planner/internal/keys"
	"github.com/atmx/auction-planner/internal/model"
)

// Raw contract field names as persisted.
const (
	fieldUnderContract = "underContract"
	fieldContractYear  = "contractYear"
	fieldContractTotal = "contractTotal"
	fieldPrice         = "price"
)

var contractNumberFields = []string{fieldContractYear, fieldContractTotal, fieldPrice}

// NormalizePlayer fixes the shape of one raw roster entry: strings for the
// text fields, a hit/pit type, contractTotal in [1,10], contractYear in
// [1,contractTotal] and a non-negative price. When the name is blank but
// the stored id is in a legacy "<type><sep><name>" form, the name and type
// are recovered from the id. The id is copied as stored.
func NormalizePlayer(raw map[string]any) model.RosterPlayer {
	p := model.RosterPlayer{
		ID:            strings.TrimSpace(model.Text(raw["id"])),
		Name:          strings.TrimSpace(model.Text(raw["name"])),
		Type:          keys.NormalizeType(model.Text(raw["type"])),
		Team:          strings.TrimSpace(model.Text(raw["team"])),
		Pos:           strings.TrimSpace(model.Text(raw["pos"])),
		UnderContract: model.Truthy(raw[fieldUnderContract]),
	}
	if p.Name == "" {
		if typ, name, ok := keys.ParseLegacy(p.ID); ok {
			p.Name = name
			if !model.Present(raw["type"]) {
				p.Type = typ
			}
		}
	}
	p.ContractYear, p.ContractTotal, p.Price = normalizeContract(
		model.NumberOr(raw[fieldContractYear], model.MinContractYears),
		model.NumberOr(raw[fieldContractTotal], model.MinContractYears),
		model.NumberOr(raw[fieldPrice], 0),
	)
	return p
}

// Normalize applies the same shape rules to an already typed player.
func Normalize(p model.RosterPlayer) model.RosterPlayer {
	p.Name = strings.TrimSpace(p.Name)
	p.Team = strings.TrimSpace(p.Team)
	p.Pos = strings.TrimSpace(p.Pos)
	p.Type = keys.NormalizeType(p.Type)
	p.ContractYear, p.ContractTotal, p.Price = normalizeContract(
		float64(p.ContractYear), float64(p.ContractTotal), float64(p.Price))
	return p
}

func normalizeContract(year, total, price float64) (int, int, int) {
	t := clamp(int(math.Round(total)), model.MinContractYears, model.MaxContractYears)
	y := clamp(int(math.Round(year)), model.MinContractYears, t)
	return y, t, max(0, int(math.Round(price)))
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// mergeDuplicate folds a later raw entry into an earlier one with the same
// canonical key. The earlier entry's descriptive fields win unless blank;
// underContract is OR'ed; each contract number comes from the first entry
// where it is a finite number.
func mergeDuplicate(first, later map[string]any) map[string]any {
	out := make(map[string]any, len(first)+len(later))
	for k, v := range first {
		out[k] = v
	}
	for k, v := range later {
		if !model.Present(out[k]) {
			out[k] = v
		}
	}

	out[fieldUnderContract] = model.Truthy(first[fieldUnderContract]) || model.Truthy(later[fieldUnderContract])
	for _, f := range contractNumberFields {
		if _, ok := model.Number(first[f]); ok {
			out[f] = first[f]
		} else if _, ok := model.Number(later[f]); ok {
			out[f] = later[f]
		}
	}
	return out
}
