package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/client/api"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/filex"
	"github.com/dmitrijs2005/gophjournal/internal/netx"
)

func (a *App) report(err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not authorized. Set a token with 'token'.")
	case errors.Is(err, common.ErrAuthorization):
		fmt.Fprintln(a.out, "Locked. Unlock it with 'buy <feature>'.")
	case errors.Is(err, common.ErrExternalUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable, try again later:", err)
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

func (a *App) printEntry(e api.Entry) {
	fmt.Fprintf(a.out, "[%s] %s (%s)\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.ID, e.Persona)
	fmt.Fprintln(a.out, "  "+strings.ReplaceAll(e.Text, "\n", "\n  "))
	if e.Summary != nil {
		fmt.Fprintln(a.out, "  > "+*e.Summary)
	}
}

// Write reads a multi-line entry and stores it under the given persona.
func (a *App) Write(ctx context.Context, args []string) error {
	persona := ""
	if len(args) > 0 {
		persona = args[0]
	}

	text, err := GetMultiline(a.reader, "What's on your mind?", a.out)
	if err != nil {
		return a.report(err)
	}
	if text == "" {
		fmt.Fprintln(a.out, "Nothing written.")
		return nil
	}

	e, err := a.api.CreateEntry(ctx, text, persona)
	if err != nil {
		return a.report(err)
	}
	a.printEntry(*e)
	if e.Summary == nil {
		fmt.Fprintln(a.out, "(no reflection this time)")
	}
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			fmt.Fprintln(a.out, "Usage: list [count]")
			return nil
		}
		limit = n
	}

	entries, err := a.api.ListEntries(ctx, limit)
	if err != nil {
		return a.report(err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Journal is empty.")
		return nil
	}
	for _, e := range entries {
		a.printEntry(e)
	}
	return nil
}

func (a *App) Personas(ctx context.Context) error {
	products, err := a.api.Catalog(ctx)
	if err != nil {
		return a.report(err)
	}
	unlocked, err := a.api.Unlocked(ctx)
	if err != nil {
		return a.report(err)
	}

	have := make(map[string]bool, len(unlocked.Features))
	for _, f := range unlocked.Features {
		have[f] = true
	}

	for _, p := range products {
		state := "locked"
		switch {
		case !p.Purchasable:
			state = "free"
		case have[p.ID], unlocked.Lifetime:
			state = "unlocked"
		}
		fmt.Fprintf(a.out, "%-16s %-9s %8s  %s\n", p.ID, p.Kind, formatPrice(p), state)
	}
	return nil
}

func formatPrice(p api.Product) string {
	if !p.Purchasable {
		return "-"
	}
	return fmt.Sprintf("%d.%02d %s", p.AmountMinorUnits/100, p.AmountMinorUnits%100, strings.ToUpper(p.Currency))
}

func (a *App) Unlocked(ctx context.Context) error {
	u, err := a.api.Unlocked(ctx)
	if err != nil {
		return a.report(err)
	}
	if u.Lifetime {
		fmt.Fprintln(a.out, "Lifetime access: everything is unlocked.")
	}
	fmt.Fprintln(a.out, "Unlocked:", strings.Join(u.Features, ", "))
	return nil
}

// Buy opens a checkout session and prints the payment page URL.
func (a *App) Buy(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: buy <feature>")
		return nil
	}

	email, err := GetSimpleText(a.reader, "Email for the receipt (optional)", a.out)
	if err != nil {
		return a.report(err)
	}

	sess, err := a.api.CreateCheckout(ctx, args[0], email)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Complete the payment at:")
	fmt.Fprintln(a.out, "  "+sess.URL)
	fmt.Fprintf(a.out, "Then run: verify %s\n", sess.ID)
	return nil
}

func (a *App) Verify(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: verify <session_id>")
		return nil
	}

	v, err := a.api.VerifyCheckout(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	if !v.Applied {
		fmt.Fprintf(a.out, "Payment is %s; nothing unlocked yet.\n", v.Status)
		return nil
	}
	fmt.Fprintf(a.out, "Unlocked %s.\n", v.Feature)
	return nil
}

// download is a test seam for netx.DownloadPresigned.
var download = netx.DownloadPresigned

// Export asks the server for an export and saves it under the export dir.
// The link is printed too, since it stays valid until it expires.
func (a *App) Export(ctx context.Context) error {
	res, err := a.api.Export(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Exported %d entries. Link valid until %s:\n  %s\n",
		res.Entries, res.ExpiresAt.Local().Format("15:04"), res.URL)

	dir, err := filex.EnsureDir(a.config.ExportDir)
	if err != nil {
		return a.report(err)
	}
	dst := filepath.Join(dir, path.Base(res.Key))

	err = filex.WriteAtomic(dst, func(w io.Writer) error {
		_, err := download(ctx, nil, res.URL, w)
		return err
	})
	if err != nil {
		return a.report(fmt.Errorf("download export: %w", err))
	}
	fmt.Fprintln(a.out, "Saved to", dst)
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	if !confirm(a.reader, "Delete every entry in your journal?", a.out) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	n, err := a.api.ClearEntries(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Deleted %d entries.\n", n)
	return nil
}

// Token reads a bearer token without echo and uses it from now on.
func (a *App) Token(ctx context.Context) error {
	token, err := GetSecret("Access token", a.out)
	if err != nil {
		return a.report(err)
	}
	a.api.SetToken(token)
	fmt.Fprintln(a.out, "Token set.")
	return nil
}
