// Package httpapi is the JSON HTTP surface of the journal server, built on gin.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/payments"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collaborators the handlers depend on. The services package provides the
// production implementations.
type (
	EntryService interface {
		CreateEntry(ctx context.Context, subject, text, persona string) (*models.Entry, error)
		List(ctx context.Context, subject string, limit int) ([]*models.Entry, error)
		Clear(ctx context.Context, subject string) (int64, error)
	}

	EntitlementService interface {
		ListUnlocked(ctx context.Context, subject string) (*services.Unlocked, error)
	}

	Reconciler interface {
		Reconcile(ctx context.Context, sessionRef string) (*services.Reconciliation, error)
	}

	CheckoutService interface {
		CreateCheckout(ctx context.Context, subject, feature, email string) (*payments.Session, error)
	}

	ExportService interface {
		Export(ctx context.Context, subject string) (*services.ExportResult, error)
	}

	WebhookVerifier interface {
		Configured() bool
		Parse(payload []byte, sigHeader string) (*payments.WebhookEvent, error)
	}
)

// Options configure the router.
type Options struct {
	RequireAuth bool
	SecretKey   []byte

	PaymentsConfigured   bool
	SummarizerConfigured bool
	Storage              string
}

// Deps bundles the collaborators.
type Deps struct {
	Catalog      *catalog.Catalog
	Entries      EntryService
	Entitlements EntitlementService
	Reconciler   Reconciler
	Checkout     CheckoutService
	Export       ExportService
	Webhooks     WebhookVerifier
	Logger       logging.Logger
}

// Server holds the gin router and handler dependencies.
type Server struct {
	opts   Options
	deps   Deps
	logger logging.Logger
	router *gin.Engine
}

func NewServer(opts Options, deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		opts:   opts,
		deps:   deps,
		logger: logger.With("module", "http"),
		router: router,
	}

	router.Use(s.observe)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/catalog", s.handleCatalog)
		api.POST("/webhooks/stripe", s.handleStripeWebhook)

		authed := api.Group("", s.subject)
		authed.GET("/journal", s.handleListEntries)
		authed.POST("/journal", s.handleCreateEntry)
		authed.DELETE("/journal", s.handleClearEntries)
		authed.GET("/unlocked", s.handleUnlocked)
		authed.POST("/create-checkout-session", s.handleCreateCheckout)
		authed.POST("/verify-checkout", s.handleVerifyCheckout)
		authed.POST("/export", s.handleExport)
	}

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
