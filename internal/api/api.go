// Package api exposes the planner over HTTP as JSON.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atmx/auction-planner/internal/app"
	"github.com/atmx/auction-planner/internal/model"
)

// Service serves the planner managers over HTTP.
type Service struct {
	planner *app.Planner
	logger  *slog.Logger
}

// NewService creates the HTTP service for p.
func NewService(p *app.Planner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{planner: p, logger: logger.With("component", "api")}
}

// Routes registers the planner endpoints on r, which is expected to be
// mounted at /api/v1.
func (s *Service) Routes(r chi.Router) {
	r.Get("/settings", s.GetSettings)
	r.Patch("/settings", s.PatchSettings)
	r.Get("/settings/weights", s.GetWeights)
	r.Put("/settings/weights", s.PutWeights)

	r.Get("/roster", s.GetRoster)
	r.Post("/roster/import", s.ImportRosterPlayer)
	r.Post("/roster/migrate", s.MigrateRoster)
	r.Patch("/roster/{id}", s.UpdateRosterPlayer)
	r.Delete("/roster/{id}", s.RemoveRosterPlayer)

	r.Get("/targets", s.ListTargets)
	r.Post("/targets", s.AddTarget)
	r.Delete("/targets", s.ClearTargets)
	r.Patch("/targets/{id}", s.UpdateTarget)
	r.Delete("/targets/{id}", s.RemoveTarget)

	r.Get("/live-prices", s.GetLivePrices)
	r.Delete("/live-prices", s.ClearLivePrices)
	r.Put("/live-prices/{key}", s.SetLivePrice)

	r.Get("/budget", s.Recalculate)
	r.Post("/budget", s.Recalculate)
}

// --- Settings ---

// GetSettings handles GET /api/v1/settings
func (s *Service) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.planner.Settings.Get(r.Context())
	if err != nil {
		s.internalError(w, "failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PatchSettings handles PATCH /api/v1/settings. A budget_total change
// recalculates the budget before responding.
func (s *Service) PatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	settings, err := s.planner.Settings.Set(ctx, patch)
	if err != nil {
		s.internalError(w, "failed to save settings", err)
		return
	}
	if patch.BudgetTotal != nil {
		if _, err := s.planner.Budget.Recalculate(ctx); err != nil {
			s.internalError(w, "failed to recalculate budget", err)
			return
		}
		if settings, err = s.planner.Settings.Get(ctx); err != nil {
			s.internalError(w, "failed to load settings", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, settings)
}

// WeightsResponse is the body of GET /api/v1/settings/weights.
type WeightsResponse struct {
	CategoryWeights model.CategoryWeights `json:"category_weights"`
	UpdatedAt       *time.Time            `json:"updated_at"`
}

// GetWeights handles GET /api/v1/settings/weights
func (s *Service) GetWeights(w http.ResponseWriter, r *http.Request) {
	settings, err := s.planner.Settings.Get(r.Context())
	if err != nil {
		s.internalError(w, "failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, WeightsResponse{
		CategoryWeights: settings.CategoryWeights,
		UpdatedAt:       settings.CategoryWeightsUpdatedAt,
	})
}

// PutWeights handles PUT /api/v1/settings/weights with a partial weights
// object.
func (s *Service) PutWeights(w http.ResponseWriter, r *http.Request) {
	var next map[string]any
	if err := decodeJSON(r, &next); err != nil || next == nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	settings, err := s.planner.Settings.SetCategoryWeights(r.Context(), next)
	if err != nil {
		s.internalError(w, "failed to save weights", err)
		return
	}
	writeJSON(w, http.StatusOK, WeightsResponse{
		CategoryWeights: settings.CategoryWeights,
		UpdatedAt:       settings.CategoryWeightsUpdatedAt,
	})
}

// --- Roster ---

// GetRoster handles GET /api/v1/roster
func (s *Service) GetRoster(w http.ResponseWriter, r *http.Request) {
	players, err := s.planner.Roster.Roster(r.Context())
	if err != nil {
		s.internalError(w, "failed to load roster", err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// ImportRosterPlayer handles POST /api/v1/roster/import with one player
// record from the projections import.
func (s *Service) ImportRosterPlayer(w http.ResponseWriter, r *http.Request) {
	var rec model.PlayerRecord
	if err := decodeJSON(r, &rec); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(rec.Name) == "" {
		writeError(w, "Name is required", http.StatusBadRequest)
		return
	}
	player, err := s.planner.Roster.AddFromRecord(r.Context(), rec)
	if err != nil {
		s.internalError(w, "failed to save roster", err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// MigrateRoster handles POST /api/v1/roster/migrate
func (s *Service) MigrateRoster(w http.ResponseWriter, r *http.Request) {
	report, err := s.planner.Roster.Migrate(r.Context())
	if err != nil {
		s.internalError(w, "failed to migrate roster", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// UpdateRosterPlayer handles PATCH /api/v1/roster/{id}
func (s *Service) UpdateRosterPlayer(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	var patch model.RosterPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	player, ok, err := s.planner.Roster.Update(r.Context(), id, patch)
	if err != nil {
		s.internalError(w, "failed to update roster player", err)
		return
	}
	if !ok {
		writeError(w, "roster player not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// RemoveRosterPlayer handles DELETE /api/v1/roster/{id}
func (s *Service) RemoveRosterPlayer(w http.ResponseWriter, r *http.Request) {
	removed, err := s.planner.Roster.Remove(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.internalError(w, "failed to remove roster player", err)
		return
	}
	if !removed {
		writeError(w, "roster player not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Auction targets ---

// ListTargets handles GET /api/v1/targets
func (s *Service) ListTargets(w http.ResponseWriter, r *http.Request) {
	list, err := s.planner.Targets.List(r.Context())
	if err != nil {
		s.internalError(w, "failed to load targets", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AddTarget handles POST /api/v1/targets
func (s *Service) AddTarget(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil || fields == nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	target, err := s.planner.Targets.Add(r.Context(), fields)
	if err != nil {
		s.internalError(w, "failed to save target", err)
		return
	}
	writeJSON(w, http.StatusCreated, target)
}

// ClearTargets handles DELETE /api/v1/targets
func (s *Service) ClearTargets(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.Targets.Clear(r.Context()); err != nil {
		s.internalError(w, "failed to clear targets", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateTarget handles PATCH /api/v1/targets/{id}
func (s *Service) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := decodeJSON(r, &patch); err != nil || patch == nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	target, ok, err := s.planner.Targets.Update(r.Context(), pathParam(r, "id"), patch)
	if err != nil {
		s.internalError(w, "failed to update target", err)
		return
	}
	if !ok {
		writeError(w, "target not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// RemoveTarget handles DELETE /api/v1/targets/{id}
func (s *Service) RemoveTarget(w http.ResponseWriter, r *http.Request) {
	removed, err := s.planner.Targets.Remove(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.internalError(w, "failed to remove target", err)
		return
	}
	if !removed {
		writeError(w, "target not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Live prices ---

// GetLivePrices handles GET /api/v1/live-prices
func (s *Service) GetLivePrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.planner.LivePrices.Get(r.Context())
	if err != nil {
		s.internalError(w, "failed to load live prices", err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

// SetLivePriceRequest is the body of PUT /api/v1/live-prices/{key}.
// A missing, non-numeric or non-positive price removes the entry.
type SetLivePriceRequest struct {
	Price any `json:"price"`
}

// SetLivePrice handles PUT /api/v1/live-prices/{key}
func (s *Service) SetLivePrice(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(pathParam(r, "key"))
	if key == "" {
		writeError(w, "player key is required", http.StatusBadRequest)
		return
	}
	var req SetLivePriceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	price, _ := model.Number(req.Price)
	prices, err := s.planner.LivePrices.Set(r.Context(), key, price)
	if err != nil {
		s.internalError(w, "failed to save live price", err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

// ClearLivePrices handles DELETE /api/v1/live-prices
func (s *Service) ClearLivePrices(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.LivePrices.Clear(r.Context()); err != nil {
		s.internalError(w, "failed to clear live prices", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Budget ---

// Recalculate handles GET and POST /api/v1/budget
func (s *Service) Recalculate(w http.ResponseWriter, r *http.Request) {
	summary, err := s.planner.Budget.Recalculate(r.Context())
	if err != nil {
		s.internalError(w, "failed to recalculate budget", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- helpers ---

// decodeJSON decodes a request body keeping numbers as json.Number so
// loosely typed maps keep their precision.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

// pathParam returns an unescaped chi URL parameter. Canonical keys carry a
// '|' which clients send percent-encoded.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (s *Service) internalError(w http.ResponseWriter, message string, err error) {
	s.logger.Error(message, "err", err)
	writeError(w, message, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
