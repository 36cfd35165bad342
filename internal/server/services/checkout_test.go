package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckout_BuildsSessionFromCatalog(t *testing.T) {
	b := newFakeBroker()
	svc := NewCheckoutService(b, catalog.Default(), "https://journal.example/", logging.Nop())

	sess, err := svc.CreateCheckout(context.Background(), "u1", "zen", "me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cs_new", sess.ID)

	require.Len(t, b.created, 1)
	p := b.created[0]
	assert.Equal(t, "zen", p.Feature)
	assert.Equal(t, "u1", p.Subject)
	assert.Equal(t, "me@example.com", p.Email)
	assert.Equal(t, int64(999), p.AmountMinorUnits)
	assert.Equal(t, "usd", p.Currency)
	assert.Equal(t, "https://journal.example/?success=true&session_id={CHECKOUT_SESSION_ID}", p.SuccessURL)
	assert.Equal(t, "https://journal.example/?canceled=true", p.CancelURL)
	assert.NotContains(t, p.SuccessURL, "zen")
}

func TestCreateCheckout_Prices(t *testing.T) {
	tests := map[string]int64{"zen": 999, "shadow": 1499, "offline-journal": 1999, "lifetime": 4999}
	for feature, amount := range tests {
		t.Run(feature, func(t *testing.T) {
			b := newFakeBroker()
			svc := NewCheckoutService(b, catalog.Default(), "http://x", logging.Nop())
			_, err := svc.CreateCheckout(context.Background(), "u1", feature, "")
			require.NoError(t, err)
			assert.Equal(t, amount, b.created[0].AmountMinorUnits)
		})
	}
}

func TestCreateCheckout_Rejects(t *testing.T) {
	b := newFakeBroker()
	svc := NewCheckoutService(b, catalog.Default(), "http://x", logging.Nop())

	_, err := svc.CreateCheckout(context.Background(), "u1", "pirate", "")
	assert.ErrorIs(t, err, common.ErrUnknownFeature)

	_, err = svc.CreateCheckout(context.Background(), "u1", "stoic", "")
	assert.ErrorIs(t, err, common.ErrNotPurchasable)
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Empty(t, b.created, "broker never asked to price unknown or free items")
}

func TestCreateCheckout_BrokerUnavailable(t *testing.T) {
	b := newFakeBroker()
	b.createFn = func(p payments.CreateParams) (*payments.Session, error) {
		return nil, fmt.Errorf("%w: down", common.ErrBrokerUnavailable)
	}
	svc := NewCheckoutService(b, catalog.Default(), "http://x", logging.Nop())

	_, err := svc.CreateCheckout(context.Background(), "u1", "zen", "")
	assert.ErrorIs(t, err, common.ErrBrokerUnavailable)
}
