package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
)

// Metadata keys written on every checkout session.
const (
	MetadataFeature = "feature"
	MetadataSubject = "subject"
)

// StripeBroker is a Broker backed by Stripe Checkout.
type StripeBroker struct {
	timeout time.Duration

	createCheckoutSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	getCheckoutSession    func(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewStripeBroker returns a broker using its own API key rather than the
// package-level stripe.Key. Calls are bounded by timeout when it is positive.
func NewStripeBroker(apiKey string, timeout time.Duration) *StripeBroker {
	client := stripesession.Client{
		B:   stripe.GetBackend(stripe.APIBackend),
		Key: strings.TrimSpace(apiKey),
	}
	return &StripeBroker{
		timeout:               timeout,
		createCheckoutSession: client.New,
		getCheckoutSession:    client.Get,
	}
}

func (b *StripeBroker) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b *StripeBroker) CreateSession(ctx context.Context, p CreateParams) (*Session, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.Subject),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountMinorUnits),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.DisplayName),
						Description: optionalString(p.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			MetadataFeature: p.Feature,
			MetadataSubject: p.Subject,
		},
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.Context = ctx

	cs, err := b.createCheckoutSession(params)
	if err != nil {
		return nil, mapStripeError(ctx, err)
	}
	return toSession(cs), nil
}

func (b *StripeBroker) GetSession(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.ErrSessionNotFound
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := b.getCheckoutSession(id, params)
	if err != nil {
		return nil, mapStripeError(ctx, err)
	}
	if cs == nil {
		return nil, common.ErrSessionNotFound
	}
	return toSession(cs), nil
}

func toSession(cs *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:               cs.ID,
		URL:              cs.URL,
		Status:           statusOf(cs),
		Feature:          strings.TrimSpace(cs.Metadata[MetadataFeature]),
		Subject:          strings.TrimSpace(cs.Metadata[MetadataSubject]),
		AmountMinorUnits: cs.AmountTotal,
		Currency:         string(cs.Currency),
	}
	if s.Subject == "" {
		s.Subject = strings.TrimSpace(cs.ClientReferenceID)
	}
	return s
}

func statusOf(cs *stripe.CheckoutSession) Status {
	switch {
	case cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return StatusPaid
	// a discount took the total to zero; the provider closed the session
	// without charging.
	case cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired &&
		cs.Status == stripe.CheckoutSessionStatusComplete:
		return StatusPaid
	case cs.Status == stripe.CheckoutSessionStatusExpired:
		return StatusExpired
	default:
		return StatusPending
	}
}

func mapStripeError(ctx context.Context, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		if serr.HTTPStatusCode == http.StatusNotFound || serr.Code == stripe.ErrorCodeResourceMissing {
			return common.ErrSessionNotFound
		}
		if serr.HTTPStatusCode >= 400 && serr.HTTPStatusCode < 500 && serr.HTTPStatusCode != http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", common.ErrInternal, serr.Msg)
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", common.ErrBrokerUnavailable, ctxErr)
	}
	return fmt.Errorf("%w: %w", common.ErrBrokerUnavailable, err)
}

func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return stripe.String(s)
}
