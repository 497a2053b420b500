package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SKUPlaceholder is replaced by the product identifier in URL templates.
const SKUPlaceholder = "[SKU]"

// maxResponseBytes bounds the lookup response read into memory.
const maxResponseBytes = 4 << 20

// DefaultTimeout bounds a lookup request when no client is supplied.
const DefaultTimeout = 15 * time.Second

// Lookup fetches product records.
type Lookup struct {
	client *http.Client
	debug  bool
}

// LookupOption configures a Lookup.
type LookupOption func(*Lookup)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) LookupOption {
	return func(l *Lookup) {
		l.client = c
	}
}

// WithDebug enables request tracing at debug level.
func WithDebug(debug bool) LookupOption {
	return func(l *Lookup) {
		l.debug = debug
	}
}

// NewLookup creates a Lookup.
func NewLookup(opts ...LookupOption) *Lookup {
	l := &Lookup{client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BuildURL substitutes sku into every placeholder of template.
func BuildURL(template, sku string) string {
	return strings.ReplaceAll(template, SKUPlaceholder, url.QueryEscape(sku))
}

// Fetch looks up sku using urlTemplate. It blocks; callers on the loop run
// it through loop.Await.
func (l *Lookup) Fetch(ctx context.Context, sku, urlTemplate string) (*Product, error) {
	productURL := BuildURL(urlTemplate, sku)
	fail := func(status int, err error) (*Product, error) {
		return nil, &Error{Code: ErrCodeTransport, SKU: sku, URL: productURL, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return fail(0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	l.trace(productURL, resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	p, err := Parse(body)
	if err != nil {
		if ce, ok := err.(*Error); ok {
			ce.SKU = sku
			ce.URL = productURL
			if ce.Code == ErrCodeTransport {
				ce.StatusCode = resp.StatusCode
			}
		}
		return nil, err
	}
	return p, nil
}

// trace logs request details when debug mode is on.
func (l *Lookup) trace(productURL string, resp *http.Response) {
	if !l.debug {
		return
	}
	slog.Debug("product lookup",
		"url", productURL,
		"status", resp.StatusCode,
		"status_text", http.StatusText(resp.StatusCode),
	)
}
