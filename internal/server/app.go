// Package server wires configuration, storage, collaborators and the HTTP
// surface of the journal server, and runs it until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/catalog"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/dmitrijs2005/gophjournal/internal/server/httpapi"
	"github.com/dmitrijs2005/gophjournal/internal/server/payments"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophjournal/internal/server/services"
	"github.com/dmitrijs2005/gophjournal/internal/server/summarizer"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

// NewApp opens storage, applies migrations and assembles the services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := dbx.Open(ctx, c.StorageDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(c.StorageDriver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	cat := catalog.Default()

	var broker payments.Broker = payments.Unconfigured{}
	if c.PaymentsConfigured() {
		broker = payments.NewStripeBroker(c.StripeSecretKey, c.BrokerTimeout)
	} else {
		logger.Warn(ctx, "payments not configured, checkout is disabled")
	}

	var sum summarizer.Summarizer = summarizer.Disabled{}
	if c.SummarizerConfigured() {
		client := summarizer.NewAnthropicClient(c.SummarizerAPIKey,
			summarizer.WithBaseURL(c.SummarizerURL),
			summarizer.WithModel(c.SummarizerModel),
		)
		sum = summarizer.NewRateLimited(client, c.SummarizerRateLimit, c.SummarizerBurst)
	} else {
		logger.Warn(ctx, "summarizer not configured, entries are stored without summaries")
	}

	ent := services.NewEntitlementService(db, rm, cat)
	entries := services.NewEntryService(db, rm, cat, ent, sum, c.SummarizerTimeout, logger)

	api := httpapi.NewServer(httpapi.Options{
		RequireAuth:          c.RequireAuth,
		SecretKey:            []byte(c.SecretKey),
		PaymentsConfigured:   c.PaymentsConfigured(),
		SummarizerConfigured: c.SummarizerConfigured(),
		Storage:              c.StorageDriver,
	}, httpapi.Deps{
		Catalog:      cat,
		Entries:      entries,
		Entitlements: ent,
		Reconciler:   services.NewReconciler(broker, ent, cat, logger),
		Checkout:     services.NewCheckoutService(broker, cat, c.PublicURL, logger),
		Export:       services.NewExportService(entries, ent, c, logger),
		Webhooks:     payments.NewWebhookVerifier(c.StripeWebhookSecret),
		Logger:       logger,
	})

	return &App{config: c, logger: logger, db: db, api: api}, nil
}

// Handler exposes the HTTP surface.
func (app *App) Handler() http.Handler {
	return app.api.Handler()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives, then
// drains in-flight requests within the configured shutdown timeout.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.HTTPAddr,
		Handler: app.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(gctx, "Starting HTTP server", "address", app.config.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if cerr := app.Close(); cerr != nil {
		app.logger.Error(context.Background(), "db close error", "error", cerr)
	}
	return err
}

func (app *App) Close() error {
	return app.db.Close()
}
