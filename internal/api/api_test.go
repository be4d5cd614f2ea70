package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/atmx/auction-planner/internal/api"
	"github.com/atmx/auction-planner/internal/app"
	"github.com/atmx/auction-planner/internal/model"
	"github.com/atmx/auction-planner/internal/store"
)

// newTestEnv creates a planner over an in-memory store and a chi router
// with the API mounted.
func newTestEnv(t *testing.T) (*app.Planner, *store.MemoryStore, chi.Router) {
	t.Helper()
	ms := store.NewMemoryStore()
	p := app.New(ms, nil)
	svc := api.NewService(p, nil)

	r := chi.NewRouter()
	r.Route("/api/v1", svc.Routes)
	return p, ms, r
}

func do(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestSettings_GetDefaults(t *testing.T) {
	_, _, router := newTestEnv(t)
	w := do(t, router, "GET", "/api/v1/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var s model.Settings
	decode(t, w, &s)
	if s.BudgetTotal != 260 || len(s.CategoryWeights) != 14 || s.ValueMode != model.ValueModeProjection {
		t.Errorf("got %+v", s)
	}
}

func TestSettings_PatchBudgetTotalRecalculates(t *testing.T) {
	p, _, router := newTestEnv(t)
	ctx := context.Background()
	if _, err := p.Targets.Add(ctx, map[string]any{"name": "A", "plan": 50}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	w := do(t, router, "PATCH", "/api/v1/settings", map[string]any{"budget_total": 300})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var s model.Settings
	decode(t, w, &s)
	if s.BudgetTotal != 300 || s.BudgetRemaining != 250 {
		t.Errorf("got total=%d remaining=%d", s.BudgetTotal, s.BudgetRemaining)
	}
}

func TestSettings_PatchInvalidBody(t *testing.T) {
	_, _, router := newTestEnv(t)
	w := do(t, router, "PATCH", "/api/v1/settings", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestWeights_PutMergesAndStamps(t *testing.T) {
	_, _, router := newTestEnv(t)
	w := do(t, router, "PUT", "/api/v1/settings/weights", map[string]any{"HR": 2.5, "SB": 3, "BOGUS": 9})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp api.WeightsResponse
	decode(t, w, &resp)
	if resp.CategoryWeights["HR"] != 2.5 || resp.CategoryWeights["SB"] != 3 {
		t.Errorf("weights = %v", resp.CategoryWeights)
	}
	if _, ok := resp.CategoryWeights["BOGUS"]; ok || len(resp.CategoryWeights) != 14 {
		t.Errorf("unexpected keys: %v", resp.CategoryWeights)
	}
	if resp.UpdatedAt == nil {
		t.Error("updated_at should be stamped")
	}

	w = do(t, router, "GET", "/api/v1/settings/weights", nil)
	decode(t, w, &resp)
	if resp.CategoryWeights["HR"] != 2.5 || resp.UpdatedAt == nil {
		t.Errorf("GET = %+v", resp)
	}
}

func TestRoster_ImportUpdateDelete(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := do(t, router, "POST", "/api/v1/roster/import", model.PlayerRecord{Name: "Juan Soto", Type: "hit", Team: "NYM"})
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d body=%s", w.Code, w.Body.String())
	}
	var player model.RosterPlayer
	decode(t, w, &player)
	if player.ID != "hit|juan-soto" {
		t.Fatalf("id = %q", player.ID)
	}

	w = do(t, router, "PATCH", "/api/v1/roster/hit%7Cjuan-soto", map[string]any{"underContract": true, "price": 45})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d body=%s", w.Code, w.Body.String())
	}
	decode(t, w, &player)
	if !player.UnderContract || player.Price != 45 {
		t.Errorf("patched = %+v", player)
	}

	w = do(t, router, "GET", "/api/v1/budget", nil)
	var summary map[string]float64
	decode(t, w, &summary)
	if summary["spent"] != 45 || summary["remaining"] != 215 || summary["budgetTotal"] != 260 {
		t.Errorf("summary = %v", summary)
	}

	w = do(t, router, "DELETE", "/api/v1/roster/hit%7Cjuan-soto", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	w = do(t, router, "DELETE", "/api/v1/roster/hit%7Cjuan-soto", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}
}

func TestRoster_ImportRequiresName(t *testing.T) {
	_, _, router := newTestEnv(t)
	w := do(t, router, "POST", "/api/v1/roster/import", map[string]any{"Type": "hit"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRoster_PatchMissing(t *testing.T) {
	_, _, router := newTestEnv(t)
	w := do(t, router, "PATCH", "/api/v1/roster/hit%7Cnobody", map[string]any{"price": 3})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] == "" {
		t.Error("expected error message")
	}
}

func TestRoster_Migrate(t *testing.T) {
	_, ms, router := newTestEnv(t)
	ms.Put(context.Background(), store.SlotRoster,
		[]byte(`[{"id":"hit_Juan Soto","price":5},{"id":"x","name":"juan soto","underContract":true}]`))

	w := do(t, router, "POST", "/api/v1/roster/migrate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var report map[string]any
	decode(t, w, &report)
	if report["changed"] != true || report["merged"] != float64(1) {
		t.Errorf("report = %v", report)
	}

	w = do(t, router, "GET", "/api/v1/roster", nil)
	var players []model.RosterPlayer
	decode(t, w, &players)
	if len(players) != 1 || !players[0].UnderContract || players[0].Price != 5 {
		t.Errorf("roster = %+v", players)
	}
}

func TestTargets_CRUD(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := do(t, router, "POST", "/api/v1/targets", map[string]any{"name": "B", "plan": "25", "tier": "a"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d body=%s", w.Code, w.Body.String())
	}
	var created map[string]any
	decode(t, w, &created)
	id, _ := created["id"].(string)
	if id == "" || created["plan"] != float64(25) || created["tier"] != "A" || created["player_key"] != "hit|b" {
		t.Fatalf("created = %v", created)
	}

	w = do(t, router, "PATCH", "/api/v1/targets/"+id, map[string]any{"max": 40})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}
	var updated map[string]any
	decode(t, w, &updated)
	if updated["plan"] != float64(25) || updated["max"] != float64(40) {
		t.Errorf("updated = %v", updated)
	}

	w = do(t, router, "PATCH", "/api/v1/targets/missing", map[string]any{"max": 1})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing patch status = %d", w.Code)
	}

	w = do(t, router, "DELETE", "/api/v1/targets/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	w = do(t, router, "DELETE", "/api/v1/targets/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}

	do(t, router, "POST", "/api/v1/targets", map[string]any{"name": "C"})
	w = do(t, router, "DELETE", "/api/v1/targets", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", w.Code)
	}
	w = do(t, router, "GET", "/api/v1/targets", nil)
	var list []map[string]any
	decode(t, w, &list)
	if len(list) != 0 {
		t.Errorf("list = %v", list)
	}
}

func TestLivePrices(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := do(t, router, "PUT", "/api/v1/live-prices/hit%7Cjuan-soto", map[string]any{"price": 41.6})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var prices map[string]int
	decode(t, w, &prices)
	if prices["hit|juan-soto"] != 42 {
		t.Errorf("prices = %v", prices)
	}

	w = do(t, router, "PUT", "/api/v1/live-prices/hit%7Cjuan-soto", map[string]any{"price": 0})
	prices = nil
	decode(t, w, &prices)
	if _, ok := prices["hit|juan-soto"]; ok {
		t.Errorf("zero price should delete: %v", prices)
	}

	do(t, router, "PUT", "/api/v1/live-prices/pit%7Ca", map[string]any{"price": 3})
	w = do(t, router, "DELETE", "/api/v1/live-prices", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", w.Code)
	}
	w = do(t, router, "GET", "/api/v1/live-prices", nil)
	prices = nil
	decode(t, w, &prices)
	if len(prices) != 0 {
		t.Errorf("prices = %v", prices)
	}
}
