package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82/webhook"
)

// Checkout events that may complete a purchase.
const (
	EventCheckoutCompleted             = "checkout.session.completed"
	EventCheckoutAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// WebhookEvent is the part of a provider event we act on. Only the session
// id is taken from the payload; status is always re-read from the broker.
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string
}

// CompletesCheckout reports whether the event may have moved a session to paid.
func (e *WebhookEvent) CompletesCheckout() bool {
	return e.Type == EventCheckoutCompleted || e.Type == EventCheckoutAsyncPaymentSucceeded
}

// WebhookVerifier checks provider signatures on webhook payloads.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: strings.TrimSpace(secret)}
}

// Configured is false when no signing secret was provided.
func (v *WebhookVerifier) Configured() bool {
	return v != nil && v.secret != ""
}

func (v *WebhookVerifier) Parse(payload []byte, sigHeader string) (*WebhookEvent, error) {
	if strings.TrimSpace(sigHeader) == "" {
		return nil, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !out.CompletesCheckout() {
		return out, nil
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: %s has no data", ErrMalformedEvent, out.Type)
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: decode checkout.session: %v", ErrMalformedEvent, err)
	}
	out.SessionID = strings.TrimSpace(obj.ID)
	if out.SessionID == "" {
		return nil, fmt.Errorf("%w: %s has no session id", ErrMalformedEvent, out.Type)
	}
	return out, nil
}
