// Package store defines the slot persistence interface for the planner.
// Every collection is one named JSON document ("slot") that is read and
// written whole. Implementations include in-memory (testing), JSON files,
// SQLite and PostgreSQL, plus a Redis read-through cache around any of them.
package store

import (
	"context"
	"errors"
	"regexp"
)

// Slot names.
const (
	SlotSettings       = "settings"
	SlotRoster         = "roster"
	SlotAuctionTargets = "auction_targets"
	SlotLivePrices     = "live_prices"
)

var (
	// ErrNotFound is returned by Get when a slot has never been written.
	ErrNotFound = errors.New("store: slot not found")

	// ErrInvalidSlot is returned for slot names outside [a-z0-9_].
	ErrInvalidSlot = errors.New("store: invalid slot name")
)

var slotRE = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidateSlot checks that a slot name is safe to use as a key or filename.
func ValidateSlot(slot string) error {
	if !slotRE.MatchString(slot) {
		return ErrInvalidSlot
	}
	return nil
}

// Store is the persistence interface shared by every manager.
type Store interface {
	// Get returns the raw document stored in slot, or ErrNotFound.
	Get(ctx context.Context, slot string) ([]byte, error)

	// Put replaces the document stored in slot.
	Put(ctx context.Context, slot string, data []byte) error

	// Close releases backend resources.
	Close() error
}
