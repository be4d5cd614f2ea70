package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/atmx/auction-planner/internal/config"
	"github.com/atmx/auction-planner/internal/model"
	"github.com/atmx/auction-planner/internal/store"
)

func TestOpen_SQLitePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		StoreBackend:       config.BackendSQLite,
		SQLitePath:         filepath.Join(dir, "nested", "planner.db"),
		LogLevel:           "info",
		BudgetTotalDefault: 300,
	}
	ctx := context.Background()

	p, err := Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := p.Targets.Add(ctx, map[string]any{"name": "A", "plan": 50}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	p.Close()

	p, err = Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p.Close()
	s, err := p.Settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.BudgetTotal != 300 || s.BudgetRemaining != 250 {
		t.Errorf("settings = %+v", s)
	}
}

func TestOpenStore_FileBackend(t *testing.T) {
	cfg := &config.Config{StoreBackend: config.BackendFile, DataDir: t.TempDir()}
	st, err := OpenStore(context.Background(), cfg, slogDiscard())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer st.Close()
	if _, ok := st.(*store.FileStore); !ok {
		t.Errorf("got %T", st)
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	cfg := &config.Config{StoreBackend: "tape"}
	if _, err := OpenStore(context.Background(), cfg, slogDiscard()); err == nil {
		t.Error("expected error")
	}
}

func TestNew_WiresRecalculation(t *testing.T) {
	p := New(store.NewMemoryStore(), nil)
	ctx := context.Background()
	rec, err := p.Roster.AddFromRecord(ctx, model.PlayerRecord{Name: "A", Type: "hit"})
	if err != nil {
		t.Fatalf("AddFromRecord: %v", err)
	}
	price, on := 20, true
	if _, _, err := p.Roster.Update(ctx, rec.ID, model.RosterPatch{UnderContract: &on, Price: &price}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	s, _ := p.Settings.Get(ctx)
	if s.BudgetRemaining != 240 {
		t.Errorf("budget_remaining = %d, want 240", s.BudgetRemaining)
	}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
