// Package api is a typed client for the journal server's JSON HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d (%s): %s", e.Status, e.Code, e.Message)
}

// Unwrap lets callers match the server's error categories with errors.Is.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusPaymentRequired, http.StatusForbidden:
		return common.ErrAuthorization
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusServiceUnavailable:
		return common.ErrExternalUnavailable
	default:
		return common.ErrInternal
	}
}

type Health struct {
	Status               string `json:"status"`
	PaymentsConfigured   bool   `json:"payments_configured"`
	SummarizerConfigured bool   `json:"summarizer_configured"`
	Storage              string `json:"storage"`
}

type Product struct {
	ID               string `json:"id"`
	Kind             string `json:"kind"`
	DisplayName      string `json:"display_name"`
	Description      string `json:"description"`
	AmountMinorUnits int64  `json:"amount_minor_units"`
	Currency         string `json:"currency"`
	Purchasable      bool   `json:"purchasable"`
}

type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Persona   string    `json:"persona"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

type Unlocked struct {
	Lifetime bool     `json:"lifetime"`
	Features []string `json:"features"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Verification struct {
	Applied  bool      `json:"applied"`
	Feature  string    `json:"feature"`
	Subject  string    `json:"subject"`
	Status   string    `json:"status"`
	Unlocked *Unlocked `json:"unlocked"`
}

type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Entries   int       `json:"entries"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Client talks to one journal server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the bearer token used for later requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Catalog(ctx context.Context) ([]Product, error) {
	var out struct {
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/catalog", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// ListEntries returns the newest entries first; limit <= 0 uses the server default.
func (c *Client) ListEntries(ctx context.Context, limit int) ([]Entry, error) {
	path := "/api/journal"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out struct {
		Entries []Entry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

func (c *Client) CreateEntry(ctx context.Context, text, persona string) (*Entry, error) {
	in := map[string]string{"text": text, "persona": persona}
	var out Entry
	if err := c.do(ctx, http.MethodPost, "/api/journal", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearEntries(ctx context.Context) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/journal", nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) Unlocked(ctx context.Context) (*Unlocked, error) {
	var out Unlocked
	if err := c.do(ctx, http.MethodGet, "/api/unlocked", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCheckout(ctx context.Context, feature, email string) (*CheckoutSession, error) {
	in := map[string]string{"feature": feature, "email": email}
	var out CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/api/create-checkout-session", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyCheckout(ctx context.Context, sessionID string) (*Verification, error) {
	in := map[string]string{"session_id": sessionID}
	var out Verification
	if err := c.do(ctx, http.MethodPost, "/api/verify-checkout", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Export(ctx context.Context) (*Export, error) {
	var out Export
	if err := c.do(ctx, http.MethodPost, "/api/export", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrExternalUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e); err == nil {
			apiErr.Code, apiErr.Message = e.Code, e.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
