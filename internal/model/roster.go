package model

import "github.com/atmx/auction-planner/internal/keys"

// Contract bounds for roster players.
const (
	MinContractYears = 1
	MaxContractYears = 10
)

// RosterPlayer is an owned player, optionally signed to a keeper contract.
type RosterPlayer struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"` // "hit" or "pit"
	Team          string `json:"team"`
	Pos           string `json:"pos"`
	UnderContract bool   `json:"underContract"`
	ContractYear  int    `json:"contractYear"`
	ContractTotal int    `json:"contractTotal"`
	Price         int    `json:"price"`
}

func (p RosterPlayer) PlayerType() string { return p.Type }
func (p RosterPlayer) PlayerName() string { return p.Name }

// Key recomputes the canonical key from type and name, ignoring the stored id.
func (p RosterPlayer) Key() string { return keys.FromRecord(p) }

// RosterPatch is a partial update of a roster player. The id is not patchable.
type RosterPatch struct {
	Name          *string `json:"name,omitempty"`
	Type          *string `json:"type,omitempty"`
	Team          *string `json:"team,omitempty"`
	Pos           *string `json:"pos,omitempty"`
	UnderContract *bool   `json:"underContract,omitempty"`
	ContractYear  *int    `json:"contractYear,omitempty"`
	ContractTotal *int    `json:"contractTotal,omitempty"`
	Price         *int    `json:"price,omitempty"`
}

// PlayerRecord is a projection row produced by the CSV importer.
type PlayerRecord struct {
	Name        string            `json:"Name"`
	Type        string            `json:"Type"`
	Team        string            `json:"Team"`
	POS         string            `json:"POS"`
	Projections map[string]string `json:"projections,omitempty"`
}

func (r PlayerRecord) PlayerType() string { return r.Type }
func (r PlayerRecord) PlayerName() string { return r.Name }
