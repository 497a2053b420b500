package cart

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/roach88/catalogview/internal/loop"
)

// DefaultProxyURL is the checkout proxy endpoint.
const DefaultProxyURL = "http://www.magazooms.com/shopping/pdforder.php"

// xmlHeader precedes every serialized payload.
const xmlHeader = `<?xml version="1.0" encoding="UTF-8" ?>` + "\r"

// minOpenHeight is the inner height below which a redirect window is
// considered blocked.
const minOpenHeight = 10

// Payload is the write-once checkout snapshot.
type Payload struct {
	XMLName   xml.Name  `xml:"root"`
	ClientID  string    `xml:"clientID"`
	SessionID string    `xml:"sessionID"`
	HTML5     int       `xml:"html5"`
	LineItems LineItems `xml:"lineitems"`
}

// LineItems wraps the items so an empty cart still yields <lineitems>.
type LineItems struct {
	Items []LineItem `xml:"item"`
}

// LineItem is one serialized cart line.
type LineItem struct {
	Qty   int    `xml:"qty"`
	SKU   string `xml:"sku"`
	Price string `xml:"price"`
}

// Marshal serializes the payload with the XML header.
func (p *Payload) Marshal() (string, error) {
	body, err := xml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal checkout payload: %w", err)
	}
	return xmlHeader + string(body), nil
}

// Form is the checkout submission.
type Form struct {
	CartContents string
	CartURL      string
	ClientID     string
}

// Values encodes the form fields.
func (f Form) Values() url.Values {
	return url.Values{
		"cartcontents": {f.CartContents},
		"cart_url":     {f.CartURL},
		"client_id":    {f.ClientID},
	}
}

// Submitter posts a checkout form and returns the redirect URL.
type Submitter interface {
	Submit(ctx context.Context, form Form) (string, error)
}

// HTTPSubmitter posts checkout forms to the proxy endpoint.
type HTTPSubmitter struct {
	Client   *http.Client
	ProxyURL string
}

// Submit implements Submitter. Failures are *SubmitError.
func (s *HTTPSubmitter) Submit(ctx context.Context, form Form) (string, error) {
	proxy := s.ProxyURL
	if proxy == "" {
		proxy = DefaultProxyURL
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, proxy, strings.NewReader(form.Values().Encode()))
	if err != nil {
		return "", &SubmitError{Code: ErrCodeSubmit, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", &SubmitError{Code: ErrCodeSubmit, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	text := strings.TrimSpace(string(body))
	if err != nil {
		return "", &SubmitError{Code: ErrCodeSubmit, StatusCode: resp.StatusCode, Response: text, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SubmitError{
			Code:       ErrCodeSubmit,
			StatusCode: resp.StatusCode,
			Response:   text,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return text, nil
}

// Window is a browsing context opened for the checkout redirect.
type Window interface {
	Closed() bool
	InnerHeight() int
}

// Opener opens a URL in a browsing context.
type Opener interface {
	Open(url, target string) Window
}

// Order is the published record of a submitted checkout.
type Order struct {
	ClientID  string
	SessionID string
	Lines     []LineItem
	Total     string
}

// OrderPublisher announces submitted orders.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, order Order) error
}

// Payload builds the checkout snapshot with a fresh session id. Lines are
// in insertion order.
func (c *Cart) Payload() *Payload {
	p := &Payload{
		ClientID:  c.cfg.ClientID,
		SessionID: c.cfg.Sessions.Generate(),
		HTML5:     1,
	}
	for _, key := range c.order {
		item := c.items[key]
		p.LineItems.Items = append(p.LineItems.Items, LineItem{Qty: item.Count, SKU: item.SKU, Price: item.Price})
	}
	return p
}

type submitResult struct {
	redirect string
	err      error
}

// Checkout submits the cart. On success the redirect opens in a new
// browsing context and the order is published; on failure the cart is
// left intact.
func (c *Cart) Checkout() {
	payload := c.Payload()
	contents, err := payload.Marshal()
	if err != nil {
		slog.Error("checkout failed", "error", err)
		return
	}
	if c.cfg.Submitter == nil {
		slog.Error("checkout failed", "error", "no submitter configured")
		return
	}

	order := Order{
		ClientID:  payload.ClientID,
		SessionID: payload.SessionID,
		Lines:     payload.LineItems.Items,
		Total:     c.Total(),
	}
	form := Form{CartContents: contents, CartURL: c.cfg.CartURL, ClientID: c.cfg.ClientID}
	submitter := c.cfg.Submitter

	slog.Debug("checkout submitting", "session_id", payload.SessionID, "items", len(order.Lines))
	loop.Await(c.cfg.Loop, func() submitResult {
		redirect, err := submitter.Submit(c.cfg.Context, form)
		return submitResult{redirect: redirect, err: err}
	}, func(res submitResult) {
		if res.err != nil {
			c.logSubmitFailure(res.err)
			return
		}
		c.openRedirect(res.redirect)
		c.publish(order)
	})
}

func (c *Cart) logSubmitFailure(err error) {
	attrs := []any{"error", err}
	if se, ok := err.(*SubmitError); ok {
		attrs = append(attrs, "status", se.StatusCode, "response", se.Response)
	}
	slog.Error("checkout submit failed", attrs...)
}

func (c *Cart) openRedirect(redirect string) {
	if c.cfg.Opener == nil {
		slog.Warn("checkout redirect not opened", "url", redirect)
		return
	}

	w := c.cfg.Opener.Open(redirect, "_blank")
	c.cfg.Loop.After(c.cfg.PopupCheckDelay, func() {
		if blocked(w) {
			slog.Info("checkout window appears blocked", "url", redirect)
		}
	})
}

func blocked(w Window) bool {
	return w == nil || w.Closed() || w.InnerHeight() < minOpenHeight
}

func (c *Cart) publish(order Order) {
	publisher := c.cfg.Publisher
	if publisher == nil {
		return
	}
	loop.Await(c.cfg.Loop, func() error {
		return publisher.PublishOrder(c.cfg.Context, order)
	}, func(err error) {
		if err != nil {
			slog.Warn("order publish failed", "session_id", order.SessionID, "error", err)
		}
	})
}
