// Package metrics provides Prometheus instrumentation for the auction planner.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SlotWrites counts documents persisted, partitioned by slot.
	SlotWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_slot_writes_total",
		Help: "Total number of slot documents written",
	}, []string{"slot"})

	// DecodeFallbacks counts loads that hit corrupt content and fell back
	// to defaults.
	DecodeFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_slot_decode_fallbacks_total",
		Help: "Slot loads that fell back to defaults because of malformed content",
	}, []string{"slot"})

	// RosterMigrations counts roster self-heal runs that rewrote the roster.
	RosterMigrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_roster_migrations_total",
		Help: "Roster migrations that persisted a corrected roster",
	})

	// RosterDuplicatesMerged counts duplicate roster entries folded together.
	RosterDuplicatesMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_roster_duplicates_merged_total",
		Help: "Duplicate roster entries merged during migration",
	})

	// BudgetRecalculations counts budget recomputations.
	BudgetRecalculations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_budget_recalculations_total",
		Help: "Total number of budget recalculations",
	})

	// BudgetSpent tracks the most recent committed + planned spend.
	BudgetSpent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "planner_budget_spent",
		Help: "Committed keeper spend plus planned auction spend",
	})

	// BudgetRemaining tracks the most recent remaining budget.
	BudgetRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "planner_budget_remaining",
		Help: "Remaining draft budget",
	})

	// NotificationFailures counts observers that panicked while notified.
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_notification_failures_total",
		Help: "Budget change notifications that failed and were discarded",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "planner_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}
