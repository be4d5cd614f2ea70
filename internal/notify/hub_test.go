package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/atmx/auction-planner/internal/model"
)

func summary(spent, remaining, total int64) model.BudgetSummary {
	return model.BudgetSummary{
		Spent:       decimal.NewFromInt(spent),
		Remaining:   decimal.NewFromInt(remaining),
		BudgetTotal: decimal.NewFromInt(total),
	}
}

func TestNotify_NeverBlocks(t *testing.T) {
	h := NewHub(nil) // Run is never started, so the queue only fills.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Notify(summary(1, 2, 3))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked with a full queue")
	}
}

func TestHub_DeliversBudgetChanged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(nil)
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.Notify(summary(65, 235, 300))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg struct {
		Type   string `json:"type"`
		Budget struct {
			Spent       float64 `json:"spent"`
			Remaining   float64 `json:"remaining"`
			BudgetTotal float64 `json:"budgetTotal"`
		} `json:"budget"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if msg.Type != MessageBudgetChanged || msg.Budget.Spent != 65 || msg.Budget.Remaining != 235 || msg.Budget.BudgetTotal != 300 {
		t.Errorf("got %s", data)
	}
}
