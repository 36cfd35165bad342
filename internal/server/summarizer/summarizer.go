// Package summarizer produces short persona-voiced reflections on journal
// entries through a hosted language model.
package summarizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"golang.org/x/time/rate"
)

// Summarizer turns an entry into a short summary following instruction.
type Summarizer interface {
	Summarize(ctx context.Context, instruction, text string) (string, error)
}

// Disabled is used when no model credentials are configured. Every call
// fails, so callers fall back to storing entries without a summary.
type Disabled struct{}

func (Disabled) Summarize(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: not configured", common.ErrSummarizerUnavailable)
}

// RateLimited paces calls to the wrapped summarizer. A call that cannot get
// a token before ctx is done fails instead of queueing.
type RateLimited struct {
	next    Summarizer
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls per second with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimited(next Summarizer, perSecond float64, burst int) *RateLimited {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimited) Summarize(ctx context.Context, instruction, text string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limited: %w", common.ErrSummarizerUnavailable, err)
	}
	return r.next.Summarize(ctx, instruction, text)
}

// ErrEmptySummary is returned when the model answered with no text.
var ErrEmptySummary = errors.New("empty summary")
