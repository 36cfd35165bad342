package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/payments"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	maxBodySize        = 1 << 20  // 1MB
	maxWebhookBodySize = 64 << 10 // 64KB
	verifyMaxTries     = 3
)

type entryResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Persona   string    `json:"persona"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

func toEntryResponse(e *models.Entry) entryResponse {
	return entryResponse{ID: e.ID, Text: e.Text, Persona: e.Persona, Summary: e.Summary, CreatedAt: e.CreatedAt}
}

type unlockedResponse struct {
	Lifetime bool                `json:"lifetime"`
	Features []catalog.FeatureID `json:"features"`
}

func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(dst); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: invalid request body: %v", common.ErrValidation, err))
		return false
	}
	return true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"payments_configured":   s.opts.PaymentsConfigured,
		"summarizer_configured": s.opts.SummarizerConfigured,
		"storage":               s.opts.Storage,
	})
}

type productResponse struct {
	ID               catalog.FeatureID `json:"id"`
	Kind             catalog.Kind      `json:"kind"`
	DisplayName      string            `json:"display_name"`
	Description      string            `json:"description,omitempty"`
	AmountMinorUnits int64             `json:"amount_minor_units"`
	Currency         string            `json:"currency"`
	Purchasable      bool              `json:"purchasable"`
}

func (s *Server) handleCatalog(c *gin.Context) {
	products := s.deps.Catalog.Products()
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{
			ID:               p.ID,
			Kind:             p.Kind,
			DisplayName:      p.Price.DisplayName,
			Description:      p.Price.Description,
			AmountMinorUnits: p.Price.AmountMinorUnits,
			Currency:         p.Price.Currency,
			Purchasable:      !p.Free(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

func (s *Server) handleListEntries(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.abortWithError(c, fmt.Errorf("%w: limit must be a non-negative integer", common.ErrValidation))
			return
		}
		limit = n
	}

	entries, err := s.deps.Entries.List(c.Request.Context(), subjectOf(c), limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

type createEntryRequest struct {
	Text    string `json:"text"`
	Persona string `json:"persona"`
}

func (s *Server) handleCreateEntry(c *gin.Context) {
	var req createEntryRequest
	if !s.bindJSON(c, &req) {
		return
	}

	entry, err := s.deps.Entries.CreateEntry(c.Request.Context(), subjectOf(c), req.Text, req.Persona)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEntryResponse(entry))
}

func (s *Server) handleClearEntries(c *gin.Context) {
	n, err := s.deps.Entries.Clear(c.Request.Context(), subjectOf(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) handleUnlocked(c *gin.Context) {
	u, err := s.deps.Entitlements.ListUnlocked(c.Request.Context(), subjectOf(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, unlockedResponse{Lifetime: u.Lifetime, Features: u.Features})
}

type createCheckoutRequest struct {
	Feature string `json:"feature"`
	// PersonaID is accepted for older clients.
	PersonaID string `json:"personaId"`
	Email     string `json:"email"`
}

func (s *Server) handleCreateCheckout(c *gin.Context) {
	var req createCheckoutRequest
	if !s.bindJSON(c, &req) {
		return
	}
	feature := req.Feature
	if feature == "" {
		feature = req.PersonaID
	}

	sess, err := s.deps.Checkout.CreateCheckout(c.Request.Context(), subjectOf(c), feature, req.Email)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": sess.ID, "url": sess.URL})
}

type verifyCheckoutRequest struct {
	SessionID string `json:"session_id"`
}

type verifyCheckoutResponse struct {
	Applied  bool              `json:"applied"`
	Feature  catalog.FeatureID `json:"feature"`
	Subject  string            `json:"subject"`
	Status   string            `json:"status"`
	Unlocked *unlockedResponse `json:"unlocked,omitempty"`
}

// handleVerifyCheckout reconciles a session, retrying while the broker is
// unavailable. The caller's refreshed unlocked state is included when the
// session was bought for the caller.
func (s *Server) handleVerifyCheckout(c *gin.Context) {
	var req verifyCheckoutRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.SessionID == "" {
		s.abortWithError(c, fmt.Errorf("%w: session_id is required", common.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond

	rec, err := backoff.Retry(ctx, func() (*services.Reconciliation, error) {
		rec, err := s.deps.Reconciler.Reconcile(ctx, req.SessionID)
		if err != nil && !errors.Is(err, common.ErrBrokerUnavailable) {
			return nil, backoff.Permanent(err)
		}
		return rec, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(verifyMaxTries))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	resp := verifyCheckoutResponse{Applied: rec.Applied, Feature: rec.Feature, Subject: rec.Subject, Status: string(rec.Status)}
	if rec.Subject != subjectOf(c) {
		c.JSON(http.StatusOK, resp)
		return
	}
	if u, err := s.deps.Entitlements.ListUnlocked(ctx, rec.Subject); err == nil {
		resp.Unlocked = &unlockedResponse{Lifetime: u.Lifetime, Features: u.Features}
	} else {
		s.logger.Warn(ctx, "unlocked state refresh failed", "error", err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleExport(c *gin.Context) {
	res, err := s.deps.Export.Export(c.Request.Context(), subjectOf(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"key":        res.Key,
		"url":        res.URL,
		"entries":    res.Entries,
		"expires_at": res.ExpiresAt,
	})
}

// handleStripeWebhook verifies the signature and reconciles completed
// checkouts. Only failures a redelivery could fix answer 5xx.
func (s *Server) handleStripeWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	if s.deps.Webhooks == nil || !s.deps.Webhooks.Configured() {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "webhook secret not configured", Code: "unavailable"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodySize)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "failed to read request body", Code: "validation"})
		return
	}

	event, err := s.deps.Webhooks.Parse(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		s.logger.Warn(ctx, "stripe webhook rejected", "error", err)
		msg := "invalid Stripe signature"
		if errors.Is(err, payments.ErrMalformedEvent) {
			msg = "malformed event"
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: "validation"})
		return
	}

	if !event.CompletesCheckout() {
		s.logger.Info(ctx, "stripe webhook ignored (unhandled type)", "type", event.Type, "event_id", event.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	rec, err := s.deps.Reconciler.Reconcile(ctx, event.SessionID)
	if err != nil {
		s.logger.Error(ctx, "stripe webhook processing failed", "event_id", event.ID, "session", event.SessionID, "error", err)
		if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrNotFound) {
			// redelivery cannot change the outcome
			c.JSON(http.StatusOK, gin.H{"received": true, "applied": false})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "processing failed", Code: "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "applied": rec.Applied})
}
