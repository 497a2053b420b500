package popup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/loop"
	"github.com/roach88/catalogview/internal/overlay"
)

// Element ids of the publisher popup.
const (
	PublisherOverlay = "publisherPopupOverlay"
	PublisherCloseID = "publisherPopupClose"
)

// PublisherInfo is the publisher contact block.
type PublisherInfo struct {
	Company  string
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string
	Country  string
	Email    string
	Phone    string
	Web      string
}

type publisherField struct {
	id    string
	kind  Kind
	value func(PublisherInfo) string
}

var publisherFields = []publisherField{
	{"publisherCompanyField", KindText, func(i PublisherInfo) string { return i.Company }},
	{"publisherAddress1Field", KindText, func(i PublisherInfo) string { return i.Address1 }},
	{"publisherAddress2Field", KindText, func(i PublisherInfo) string { return i.Address2 }},
	{"publisherCityField", KindText, func(i PublisherInfo) string { return i.City }},
	{"publisherStateField", KindText, func(i PublisherInfo) string { return i.State }},
	{"publisherZipField", KindText, func(i PublisherInfo) string { return i.Zip }},
	{"publisherCountryField", KindText, func(i PublisherInfo) string { return i.Country }},
	{"publisherEmailField", KindEmail, func(i PublisherInfo) string { return i.Email }},
	{"publisherPhoneField", KindText, func(i PublisherInfo) string { return i.Phone }},
	{"publisherWebField", KindURL, func(i PublisherInfo) string { return i.Web }},
}

// PublisherConfig holds the collaborators of a PublisherPopup.
type PublisherConfig struct {
	Loop     *loop.Loop
	Overlays *overlay.Manager
	Document *host.Document
	Info     PublisherInfo

	// Context is passed to the metadata call. Defaults to
	// context.Background.
	Context context.Context
}

// PublisherPopup shows the publisher contact block.
type PublisherPopup struct {
	cfg           PublisherConfig
	dataAvailable *loop.Latch
	document      Document
}

// NewPublisherPopup registers the publisher overlay.
func NewPublisherPopup(cfg PublisherConfig) (*PublisherPopup, error) {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}

	p := &PublisherPopup{cfg: cfg, dataAvailable: loop.NewLatch()}

	doc := cfg.Document
	if err := cfg.Overlays.Register(PublisherOverlay, doc.Element(PublisherOverlay), nil); err != nil {
		return nil, fmt.Errorf("register publisher popup: %w", err)
	}
	doc.Element(PublisherCloseID).AddEventListener("click", func(host.Event) { p.Close() })
	return p, nil
}

// SetDocument records the loaded document and marks it available. Only the
// first call releases waiting opens.
func (p *PublisherPopup) SetDocument(doc Document, _ string) {
	p.document = doc
	p.dataAvailable.Set()
}

// Open shows the popup and fills it once the document is available.
func (p *PublisherPopup) Open() {
	opened, err := p.cfg.Overlays.Open(PublisherOverlay)
	if err != nil {
		slog.Error("publisher popup open failed", "error", err)
		return
	}

	p.cfg.Loop.Join(func() {
		if !p.cfg.Overlays.IsActive(PublisherOverlay) {
			return
		}
		p.populate()
	}, opened, p.dataAvailable)
}

// Close hides the popup.
func (p *PublisherPopup) Close() {
	p.cfg.Overlays.Close(PublisherOverlay)
}

func (p *PublisherPopup) populate() {
	if p.document == nil {
		p.fill()
		return
	}

	doc := p.document
	loop.Await(p.cfg.Loop, func() error {
		_, err := doc.Metadata(p.cfg.Context)
		return err
	}, func(err error) {
		if err != nil {
			slog.Warn("document metadata unavailable", "error", err)
		}
		p.fill()
	})
}

func (p *PublisherPopup) fill() {
	doc := p.cfg.Document
	for _, f := range publisherFields {
		UpdateField(doc.Element(f.id), f.kind, f.value(p.cfg.Info))
	}
}
