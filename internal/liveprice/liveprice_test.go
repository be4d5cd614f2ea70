package liveprice

import (
	"context"
	"math"
	"testing"

	"github.com/atmx/auction-planner/internal/store"
)

func TestSet_RoundsAndStores(t *testing.T) {
	s := New(store.NewMemoryStore(), nil)
	ctx := context.Background()

	got, err := s.Set(ctx, "  hit|juan-soto ", 41.6)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got["hit|juan-soto"] != 42 {
		t.Errorf("got %v", got)
	}

	reloaded, _ := s.Get(ctx)
	if reloaded["hit|juan-soto"] != 42 {
		t.Errorf("not persisted: %v", reloaded)
	}
}

func TestSet_NonPositiveDeletes(t *testing.T) {
	for _, price := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		s := New(store.NewMemoryStore(), nil)
		ctx := context.Background()
		s.Set(ctx, "hit|juan-soto", 30)
		s.Set(ctx, "pit|gerrit-cole", 25)

		got, err := s.Set(ctx, "hit|juan-soto", price)
		if err != nil {
			t.Fatalf("Set(%v): %v", price, err)
		}
		if _, ok := got["hit|juan-soto"]; ok {
			t.Errorf("price %v should delete the entry, got %v", price, got)
		}
		if got["pit|gerrit-cole"] != 25 {
			t.Errorf("other entries must survive: %v", got)
		}
	}
}

func TestSet_EmptyKeyIsNoop(t *testing.T) {
	st := store.NewMemoryStore()
	s := New(st, nil)
	ctx := context.Background()
	if _, err := s.Set(ctx, "   ", 10); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := st.Get(ctx, store.SlotLivePrices); err != store.ErrNotFound {
		t.Errorf("empty key should not write, got err=%v", err)
	}
}

func TestGet_DefaultsAndDropsGarbage(t *testing.T) {
	st := store.NewMemoryStore()
	s := New(st, nil)
	ctx := context.Background()

	got, err := s.Get(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v err=%v", got, err)
	}

	st.Put(ctx, store.SlotLivePrices, []byte(`{"hit|a":"12","hit|b":0,"hit|c":"x"}`))
	got, _ = s.Get(ctx)
	if len(got) != 1 || got["hit|a"] != 12 {
		t.Errorf("got %v", got)
	}
}

func TestClear(t *testing.T) {
	s := New(store.NewMemoryStore(), nil)
	ctx := context.Background()
	s.Set(ctx, "hit|a", 5)
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ := s.Get(ctx); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}
