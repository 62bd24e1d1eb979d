package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/confirmation-links/internal/application"
)

func TestCanonicalBody(t *testing.T) {
	t.Parallel()

	canonical, err := CanonicalBody(42, "confirmed", 1_760_000_000)
	if err != nil {
		t.Fatalf("CanonicalBody failed: %v", err)
	}

	// Keys sorted, no extraneous whitespace.
	expected := `{"id":42,"status":"confirmed","ts":1760000000}`
	if string(canonical) != expected {
		t.Fatalf("expected %s, got %s", expected, canonical)
	}
}

func TestSignBody(t *testing.T) {
	t.Parallel()

	secret := []byte("notify-secret")
	canonical := []byte(`{"id":42,"status":"confirmed","ts":1760000000}`)

	mac := hmac.New(sha256.New, secret)
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))

	if got := SignBody(secret, canonical); got != expected {
		t.Fatalf("expected %s, got %s", expected, got)
	}
}

func TestWebhookSender_Send(t *testing.T) {
	t.Parallel()

	secret := []byte("notify-secret")

	var (
		mu     sync.Mutex
		bodies [][]byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, secret, time.Second)
	event := application.DecisionEvent{
		ID:        42,
		Status:    application.StatusConfirmed,
		DecidedAt: time.Unix(1_760_000_000, 0),
	}

	if err := sender.Send(context.Background(), event); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("expected one delivery, got %d", len(bodies))
	}

	var received struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
		TS     int64  `json:"ts"`
		Sig    string `json:"sig"`
	}
	if err := json.Unmarshal(bodies[0], &received); err != nil {
		t.Fatalf("failed to decode delivered body: %v", err)
	}
	if received.ID != 42 || received.Status != "confirmed" || received.TS != 1_760_000_000 {
		t.Fatalf("unexpected payload %+v", received)
	}

	// The consumer side verification: re-derive the canonical bytes and check
	// the signature against them.
	canonical, err := CanonicalBody(received.ID, received.Status, received.TS)
	if err != nil {
		t.Fatalf("CanonicalBody failed: %v", err)
	}
	if expected := SignBody(secret, canonical); received.Sig != expected {
		t.Fatalf("expected signature %s, got %s", expected, received.Sig)
	}
}

func TestWebhookSender_Send_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, []byte("notify-secret"), time.Second)
	err := sender.Send(context.Background(), application.DecisionEvent{ID: 1, Status: application.StatusDeclined, DecidedAt: time.Now()})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

type senderStub struct {
	mu     sync.Mutex
	events []application.DecisionEvent
	err    error
}

func (s *senderStub) Send(ctx context.Context, event application.DecisionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *senderStub) Events() []application.DecisionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]application.DecisionEvent(nil), s.events...)
}

func TestDispatcher_DeliversQueuedEvents(t *testing.T) {
	t.Parallel()

	stub := &senderStub{}
	dispatcher := NewDispatcher(stub, time.Second, 8, slog.New(slog.NewTextHandler(io.Discard, nil)))

	dispatcher.Notify(application.DecisionEvent{ID: 1, Status: application.StatusConfirmed, DecidedAt: time.Now()})
	dispatcher.Notify(application.DecisionEvent{ID: 2, Status: application.StatusDeclined, DecidedAt: time.Now()})
	dispatcher.Close()

	events := stub.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(events))
	}
	if events[0].ID != 1 || events[1].ID != 2 {
		t.Fatalf("events delivered out of order: %+v", events)
	}
}

func TestDispatcher_SwallowsDeliveryFailures(t *testing.T) {
	t.Parallel()

	stub := &senderStub{err: errors.New("endpoint down")}
	dispatcher := NewDispatcher(stub, time.Second, 8, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Notify must not panic, block, or surface the failure.
	dispatcher.Notify(application.DecisionEvent{ID: 1, Status: application.StatusConfirmed, DecidedAt: time.Now()})
	dispatcher.Close()

	if len(stub.Events()) != 1 {
		t.Fatal("expected the delivery to have been attempted")
	}
}

func TestDispatcher_NotifyAfterClose(t *testing.T) {
	t.Parallel()

	stub := &senderStub{}
	dispatcher := NewDispatcher(stub, time.Second, 8, slog.New(slog.NewTextHandler(io.Discard, nil)))
	dispatcher.Close()

	// A decision handler still in flight during shutdown may notify after the
	// dispatcher closed. The event is dropped; it must never panic.
	dispatcher.Notify(application.DecisionEvent{ID: 1, Status: application.StatusConfirmed, DecidedAt: time.Now()})
	dispatcher.Close()

	if len(stub.Events()) != 0 {
		t.Fatalf("expected no deliveries after close, got %d", len(stub.Events()))
	}
}
