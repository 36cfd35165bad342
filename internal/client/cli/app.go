package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/api"
	"github.com/dmitrijs2005/gophjournal/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// journalAPI is the part of api.Client the commands use.
type journalAPI interface {
	SetToken(token string)
	Health(ctx context.Context) (*api.Health, error)
	Catalog(ctx context.Context) ([]api.Product, error)
	ListEntries(ctx context.Context, limit int) ([]api.Entry, error)
	CreateEntry(ctx context.Context, text, persona string) (*api.Entry, error)
	ClearEntries(ctx context.Context) (int64, error)
	Unlocked(ctx context.Context) (*api.Unlocked, error)
	CreateCheckout(ctx context.Context, feature, email string) (*api.CheckoutSession, error)
	VerifyCheckout(ctx context.Context, sessionID string) (*api.Verification, error)
	Export(ctx context.Context) (*api.Export, error)
}

type App struct {
	config *config.Config
	api    journalAPI
	reader *bufio.Reader
	out    io.Writer

	mu   sync.RWMutex
	mode Mode
}

func NewApp(c *config.Config) *App {
	return newApp(c, api.NewClient(c.ServerURL, c.Token, c.RequestTimeout), os.Stdin, os.Stdout)
}

func newApp(c *config.Config, client journalAPI, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    client,
		reader: bufio.NewReader(in),
		out:    out,
		mode:   ModeOffline,
	}
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) status() string {
	return fmt.Sprintf("(%s)", a.Mode())
}

// probe checks reachability once.
func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := a.api.Health(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Run starts the watcher and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Journal CLI (type 'help' for commands)")
	a.probe(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, a.reader)
}
