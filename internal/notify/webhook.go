// Package notify delivers signed decision events to an operator configured
// webhook endpoint. Delivery is best effort: no retries, no durable queue,
// and a failure never reaches the decision path that produced the event.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gowebpki/jcs"

	"github.com/example/confirmation-links/internal/application"
)

// DefaultTimeout bounds a single outbound delivery attempt.
const DefaultTimeout = 8 * time.Second

// payload is the signed portion of the webhook body. Field order matches the
// canonical key order so the marshalled form is already sorted; Transform
// guarantees it either way.
type payload struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	TS     int64  `json:"ts"`
}

type signedPayload struct {
	payload
	Sig string `json:"sig"`
}

// CanonicalBody returns the RFC 8785 canonical JSON of {id, status, ts}.
// External consumers must re-derive these exact bytes to verify the
// signature.
func CanonicalBody(id int64, status string, ts int64) ([]byte, error) {
	raw, err := json.Marshal(payload{ID: id, Status: status, TS: ts})
	if err != nil {
		return nil, fmt.Errorf("notify: failed to marshal payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to canonicalize payload: %w", err)
	}
	return canonical, nil
}

// SignBody computes the hex HMAC-SHA256 of the canonical payload bytes under
// the notification secret. The notification secret is distinct from the link
// secret; compromise of one must not compromise the other.
func SignBody(secret, canonical []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookSender posts signed decision events to a single endpoint.
type WebhookSender struct {
	endpoint string
	secret   []byte
	client   *http.Client
}

// NewWebhookSender constructs a sender for the given endpoint and
// notification secret. A non-positive timeout falls back to DefaultTimeout.
func NewWebhookSender(endpoint string, secret []byte, timeout time.Duration) *WebhookSender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WebhookSender{
		endpoint: endpoint,
		secret:   append([]byte(nil), secret...),
		client:   &http.Client{Timeout: timeout},
	}
}

// Send delivers one decision event. The request body is the canonical
// payload plus its signature: {id, status, ts, sig}.
func (s *WebhookSender) Send(ctx context.Context, event application.DecisionEvent) error {
	ts := event.DecidedAt.Unix()
	canonical, err := CanonicalBody(event.ID, string(event.Status), ts)
	if err != nil {
		return err
	}

	body, err := json.Marshal(signedPayload{
		payload: payload{ID: event.ID, Status: string(event.Status), TS: ts},
		Sig:     SignBody(s.secret, canonical),
	})
	if err != nil {
		return fmt.Errorf("notify: failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: delivery failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("notify: endpoint returned status %d", res.StatusCode)
	}
	return nil
}
