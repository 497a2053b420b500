// Package testutil provides a fake shop backend for tests and scenarios.
package testutil

import (
	"bytes"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/catalogview/internal/catalog"
)

// Route paths served by CatalogServer.
const (
	LookupPath   = "/lookup"
	ImagesPath   = "/images/"
	CheckoutPath = "/checkout"
)

// Default image and checkout responses.
const (
	DefaultImageWidth  = 400
	DefaultImageHeight = 300
	DefaultRedirect    = "https://shop.example/pay"
)

// CheckoutResponse is what the checkout endpoint answers.
type CheckoutResponse struct {
	// Status is the HTTP status. Zero means 200.
	Status int `yaml:"status,omitempty"`

	// Body is the response body: the redirect URL on success.
	Body string `yaml:"body,omitempty"`
}

// CatalogServer is an httptest server standing in for the shop: a product
// lookup endpoint, product images and a checkout proxy.
//
// Thread-safety: all methods are safe for concurrent use.
type CatalogServer struct {
	*httptest.Server

	mu          sync.Mutex
	products    map[string]catalog.Product
	lookups     []string
	submissions []url.Values
	checkout    CheckoutResponse
	imageWidth  int
	imageHeight int
}

// NewCatalogServer starts an empty catalog. Close it when done.
func NewCatalogServer() *CatalogServer {
	s := &CatalogServer{
		products:    make(map[string]catalog.Product),
		checkout:    CheckoutResponse{Body: DefaultRedirect},
		imageWidth:  DefaultImageWidth,
		imageHeight: DefaultImageHeight,
	}

	r := chi.NewRouter()
	r.Get(LookupPath, s.handleLookup)
	r.Get(ImagesPath+"*", s.handleImage)
	r.Post(CheckoutPath, s.handleCheckout)
	s.Server = httptest.NewServer(r)
	return s
}

// LookupTemplate is a product lookup URL template for this server.
func (s *CatalogServer) LookupTemplate() string {
	return s.URL + LookupPath + "?sku=" + catalog.SKUPlaceholder
}

// ImageURL returns the URL of a served image.
func (s *CatalogServer) ImageURL(name string) string {
	return s.URL + ImagesPath + strings.TrimPrefix(name, "/")
}

// CheckoutURL is the checkout proxy URL.
func (s *CatalogServer) CheckoutURL() string {
	return s.URL + CheckoutPath
}

// AddProduct serves p for its sku. An image without a scheme is served by
// this server.
func (s *CatalogServer) AddProduct(p catalog.Product) {
	if p.Image != "" && !strings.Contains(p.Image, "://") {
		p.Image = s.ImageURL(p.Image)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.SKU] = p
}

// SetImageSize sets the dimensions of every served image.
func (s *CatalogServer) SetImageSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageWidth, s.imageHeight = width, height
}

// SetCheckoutResponse sets the checkout answer. An empty body keeps the
// default redirect on success.
func (s *CatalogServer) SetCheckoutResponse(resp CheckoutResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resp.Body == "" && (resp.Status == 0 || resp.Status == http.StatusOK) {
		resp.Body = DefaultRedirect
	}
	s.checkout = resp
}

// Lookups returns the skus requested so far, in order.
func (s *CatalogServer) Lookups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lookups...)
}

// Submissions returns the checkout forms received so far, in order.
func (s *CatalogServer) Submissions() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.submissions))
	for i, v := range s.submissions {
		out[i] = cloneValues(v)
	}
	return out
}

type xmlRecords struct {
	XMLName xml.Name    `xml:"records"`
	Records []xmlRecord `xml:"record"`
}

type xmlRecord struct {
	SKU         string `xml:"sku,omitempty"`
	Name        string `xml:"name,omitempty"`
	Description string `xml:"description,omitempty"`
	Weight      string `xml:"weight,omitempty"`
	Price       string `xml:"price,omitempty"`
	Available   string `xml:"available,omitempty"`
	Image       string `xml:"image,omitempty"`
	Unit        string `xml:"unit,omitempty"`
}

func (s *CatalogServer) handleLookup(w http.ResponseWriter, r *http.Request) {
	sku := r.URL.Query().Get("sku")

	s.mu.Lock()
	s.lookups = append(s.lookups, sku)
	p, ok := s.products[sku]
	s.mu.Unlock()

	var doc xmlRecords
	if ok {
		doc.Records = append(doc.Records, xmlRecord(p))
	}
	body, err := xml.Marshal(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	io.WriteString(w, xml.Header)
	w.Write(body)
}

func (s *CatalogServer) handleImage(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	width, height := s.imageWidth, s.imageHeight
	s.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		img.Set(x, 0, color.Black)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *CatalogServer) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, cloneValues(r.PostForm))
	resp := s.checkout
	s.mu.Unlock()

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, resp.Body)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
