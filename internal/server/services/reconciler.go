package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/metrics"
	"github.com/dmitrijs2005/gophjournal/internal/server/payments"
	"golang.org/x/sync/singleflight"
)

// Reconciliation is the result of verifying one checkout session.
type Reconciliation struct {
	// Applied is true whenever the session is paid, including replays.
	Applied bool
	Feature catalog.FeatureID
	Subject string
	Status  payments.Status
}

// Reconciler turns a paid checkout session into an entitlement. The broker
// is always asked for the session state; nothing the client sends about
// payment is trusted.
//
// Replays are safe because the write sets a target state. Concurrent calls
// for the same session reference share a single broker round trip.
type Reconciler struct {
	broker       payments.Broker
	entitlements *EntitlementService
	catalog      *catalog.Catalog
	logger       logging.Logger
	group        singleflight.Group
}

func NewReconciler(b payments.Broker, e *EntitlementService, c *catalog.Catalog, l logging.Logger) *Reconciler {
	return &Reconciler{
		broker:       b,
		entitlements: e,
		catalog:      c,
		logger:       l.With("module", "reconciler"),
	}
}

// Reconcile verifies sessionRef with the broker and, only if it is paid,
// unlocks its feature for its subject.
//
// Errors: common.ErrSessionNotFound, common.ErrBrokerUnavailable (retryable),
// common.ErrUnknownFeature for a paid session naming a feature we do not
// sell, common.ErrStoreUnavailable (retryable).
func (r *Reconciler) Reconcile(ctx context.Context, sessionRef string) (*Reconciliation, error) {
	// the shared call must not die with whichever caller started it; the
	// broker applies its own timeout.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(sessionRef, func() (any, error) {
		return r.reconcile(shared, sessionRef)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", common.ErrBrokerUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rec := *res.Val.(*Reconciliation)
		return &rec, nil
	}
}

func (r *Reconciler) reconcile(ctx context.Context, sessionRef string) (*Reconciliation, error) {
	sess, err := r.broker.GetSession(ctx, sessionRef)
	if err != nil {
		r.observe(err)
		return nil, err
	}

	rec := &Reconciliation{
		Feature: catalog.FeatureID(sess.Feature),
		Subject: sess.Subject,
		Status:  sess.Status,
	}

	if sess.Status != payments.StatusPaid {
		metrics.ReconciliationsTotal.WithLabelValues(metrics.OutcomeNotPaid).Inc()
		r.logger.Debug(ctx, "checkout session not paid", "session", sessionRef, "status", string(sess.Status))
		return rec, nil
	}

	feature, err := r.catalog.Parse(sess.Feature)
	if err != nil {
		r.observe(err)
		r.logger.Error(ctx, "paid session names unknown feature", "session", sessionRef, "feature", sess.Feature)
		return nil, err
	}
	if sess.Subject == "" {
		err := fmt.Errorf("%w: session %s has no subject", common.ErrValidation, sessionRef)
		r.observe(err)
		return nil, err
	}

	if err := r.entitlements.SetUnlocked(ctx, sess.Subject, feature); err != nil {
		r.observe(err)
		return nil, err
	}

	rec.Applied = true
	metrics.ReconciliationsTotal.WithLabelValues(metrics.OutcomeApplied).Inc()
	r.logger.Info(ctx, "entitlement applied", "session", sessionRef, "subject", sess.Subject, "feature", string(feature))
	return rec, nil
}

func (r *Reconciler) observe(err error) {
	outcome := metrics.OutcomeError
	switch {
	case errors.Is(err, common.ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, common.ErrExternalUnavailable):
		outcome = metrics.OutcomeUnavailable
	}
	metrics.ReconciliationsTotal.WithLabelValues(outcome).Inc()
}
