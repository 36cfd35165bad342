// Package payments talks to the hosted checkout provider. The Broker is the
// sole authority on whether a checkout session has been paid.
package payments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
)

// Status is the provider-reported state of a checkout session.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Session is a checkout session as seen by the broker.
type Session struct {
	ID  string
	URL string

	Status  Status
	Feature string
	Subject string

	AmountMinorUnits int64
	Currency         string
}

// CreateParams describes the purchase a session is opened for.
type CreateParams struct {
	Feature     string
	Subject     string
	Email       string
	DisplayName string
	Description string

	AmountMinorUnits int64
	Currency         string

	SuccessURL string
	CancelURL  string
}

// Broker opens checkout sessions and reports their status.
//
// GetSession returns common.ErrSessionNotFound when the provider has no such
// session and common.ErrBrokerUnavailable on transport failures or timeouts.
type Broker interface {
	CreateSession(ctx context.Context, p CreateParams) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// Unconfigured is used when no provider key is set.
type Unconfigured struct{}

func (Unconfigured) CreateSession(context.Context, CreateParams) (*Session, error) {
	return nil, fmt.Errorf("%w: payments not configured", common.ErrBrokerUnavailable)
}

func (Unconfigured) GetSession(context.Context, string) (*Session, error) {
	return nil, fmt.Errorf("%w: payments not configured", common.ErrBrokerUnavailable)
}
