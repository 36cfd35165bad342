package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/metrics"
	"github.com/dmitrijs2005/gophjournal/internal/server/payments"
)

// CheckoutService opens payment sessions for catalog items.
type CheckoutService struct {
	broker    payments.Broker
	catalog   *catalog.Catalog
	publicURL string
	logger    logging.Logger
}

func NewCheckoutService(b payments.Broker, c *catalog.Catalog, publicURL string, l logging.Logger) *CheckoutService {
	return &CheckoutService{
		broker:    b,
		catalog:   c,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    l.With("module", "checkout"),
	}
}

// CreateCheckout validates the feature and opens a session for subject. The
// success URL carries only the session reference; the feature is read back
// from the broker during verification.
func (s *CheckoutService) CreateCheckout(ctx context.Context, subject, rawFeature, email string) (*payments.Session, error) {
	feature, err := s.catalog.Parse(rawFeature)
	if err != nil {
		metrics.CheckoutSessionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	if !s.catalog.Purchasable(feature) {
		metrics.CheckoutSessionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %s", common.ErrNotPurchasable, feature)
	}
	price, err := s.catalog.PriceOf(feature)
	if err != nil {
		return nil, err
	}

	sess, err := s.broker.CreateSession(ctx, payments.CreateParams{
		Feature:          string(feature),
		Subject:          subject,
		Email:            email,
		DisplayName:      price.DisplayName,
		Description:      price.Description,
		AmountMinorUnits: price.AmountMinorUnits,
		Currency:         price.Currency,
		SuccessURL:       s.publicURL + "/?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        s.publicURL + "/?canceled=true",
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, common.ErrExternalUnavailable) {
			outcome = metrics.OutcomeUnavailable
		}
		metrics.CheckoutSessionsTotal.WithLabelValues(outcome).Inc()
		return nil, err
	}

	metrics.CheckoutSessionsTotal.WithLabelValues(metrics.OutcomeCreated).Inc()
	s.logger.Info(ctx, "checkout session created", "session", sess.ID, "subject", subject, "feature", string(feature))
	return sess, nil
}
