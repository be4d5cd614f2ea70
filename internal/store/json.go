package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/atmx/auction-planner/internal/metrics"
)

// Status tells a caller where a loaded value came from.
type Status int

const (
	// StatusAbsent means the slot was empty and the fallback was returned.
	StatusAbsent Status = iota
	// StatusPresent means the slot decoded successfully.
	StatusPresent
	// StatusCorrupt means the slot held undecodable content and the
	// fallback was returned.
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "absent"
	}
}

// LoadJSON decodes slot into a T. Absent or malformed content yields
// fallback and is never an error; only backend failures are returned.
func LoadJSON[T any](ctx context.Context, st Store, slot string, fallback T) (T, Status, error) {
	data, err := st.Get(ctx, slot)
	if errors.Is(err, ErrNotFound) {
		return fallback, StatusAbsent, nil
	}
	if err != nil {
		return fallback, StatusAbsent, fmt.Errorf("load %s: %w", slot, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fallback, StatusAbsent, nil
	}

	var v T
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	err = dec.Decode(&v)
	if err == nil {
		if _, tail := dec.Token(); tail != io.EOF {
			err = errors.New("trailing data after document")
		}
	}
	if err != nil {
		slog.Warn("slot decode failed, using fallback", "slot", slot, "err", err)
		metrics.DecodeFallbacks.WithLabelValues(slot).Inc()
		return fallback, StatusCorrupt, nil
	}
	return v, StatusPresent, nil
}

// SaveJSON encodes v and writes it to slot.
func SaveJSON(ctx context.Context, st Store, slot string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	if err := st.Put(ctx, slot, data); err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	metrics.SlotWrites.WithLabelValues(slot).Inc()
	return nil
}
