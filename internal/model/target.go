package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/atmx/auction-planner/internal/keys"
)

// Target tiers.
const (
	TierA = "A"
	TierB = "B"
	TierC = "C"
)

// Numeric planning fields coerced on every write.
var PlanFields = []string{"plan", "max", "enforce"}

// Optional valuation snapshot fields.
var ValuationFields = []string{"val", "shadow", "adj", "delta"}

var knownTargetFields = map[string]bool{
	"id": true, "player_key": true, "name": true, "type": true, "pos": true,
	"tier": true, "plan": true, "max": true, "enforce": true, "notes": true,
	"val": true, "shadow": true, "adj": true, "delta": true,
}

// AuctionTarget is a prep-board entry. Fields the planner does not know
// about are kept in Extra and written back unchanged.
type AuctionTarget struct {
	ID        string
	PlayerKey string
	Name      string
	Type      string
	Pos       string
	Tier      string
	Plan      float64
	Max       float64
	Enforce   float64
	Notes     string
	Val       *float64
	Shadow    *float64
	Adj       *float64
	Delta     *float64
	Extra     map[string]any
}

func (t AuctionTarget) PlayerType() string { return t.Type }
func (t AuctionTarget) PlayerName() string { return t.Name }

// NormalizeTier upper-cases a tier and falls back to B.
func NormalizeTier(v any) string {
	switch tier := strings.ToUpper(strings.TrimSpace(Text(v))); tier {
	case TierA, TierB, TierC:
		return tier
	}
	return TierB
}

// OptionalNumber parses v only when it is present and non-empty.
func OptionalNumber(v any) *float64 {
	if !Present(v) {
		return nil
	}
	f, ok := Number(v)
	if !ok {
		return nil
	}
	return &f
}

// TargetFromFields builds a target in canonical shape from loosely typed
// fields. player_key is taken as given; callers derive it when missing.
func TargetFromFields(fields map[string]any) AuctionTarget {
	t := AuctionTarget{
		ID:        strings.TrimSpace(Text(fields["id"])),
		PlayerKey: strings.TrimSpace(Text(fields["player_key"])),
		Name:      strings.TrimSpace(Text(fields["name"])),
		Type:      keys.NormalizeType(Text(fields["type"])),
		Pos:       strings.TrimSpace(Text(fields["pos"])),
		Tier:      NormalizeTier(fields["tier"]),
		Plan:      NumberOr(fields["plan"], 0),
		Max:       NumberOr(fields["max"], 0),
		Enforce:   NumberOr(fields["enforce"], 0),
		Notes:     Text(fields["notes"]),
		Val:       OptionalNumber(fields["val"]),
		Shadow:    OptionalNumber(fields["shadow"]),
		Adj:       OptionalNumber(fields["adj"]),
		Delta:     OptionalNumber(fields["delta"]),
	}
	for k, v := range fields {
		if knownTargetFields[k] {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]any)
		}
		t.Extra[k] = v
	}
	return t
}

// Fields flattens the target into a field map, Extra included.
func (t AuctionTarget) Fields() map[string]any {
	out := make(map[string]any, len(t.Extra)+len(knownTargetFields))
	for k, v := range t.Extra {
		out[k] = v
	}
	out["id"] = t.ID
	out["player_key"] = t.PlayerKey
	out["name"] = t.Name
	out["type"] = t.Type
	out["pos"] = t.Pos
	out["tier"] = t.Tier
	out["plan"] = t.Plan
	out["max"] = t.Max
	out["enforce"] = t.Enforce
	out["notes"] = t.Notes
	setOptional(out, "val", t.Val)
	setOptional(out, "shadow", t.Shadow)
	setOptional(out, "adj", t.Adj)
	setOptional(out, "delta", t.Delta)
	return out
}

func setOptional(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func (t AuctionTarget) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Fields())
}

func (t *AuctionTarget) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	*t = TargetFromFields(fields)
	return nil
}
