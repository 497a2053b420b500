package bus

// Event names. The payload shape of each name is part of its contract.
const (
	DocumentLoad            = "documentload"
	PageRendered            = "pagerendered"
	TextLayerRendered       = "textlayerrendered"
	PageChange              = "pagechange"
	PagesInit               = "pagesinit"
	PagesLoaded             = "pagesloaded"
	ScaleChange             = "scalechange"
	UpdateViewArea          = "updateviewarea"
	Find                    = "find"
	SidebarViewChanged      = "sidebarviewchanged"
	PageMode                = "pagemode"
	NamedAction             = "namedaction"
	PresentationModeChanged = "presentationmodechanged"
	OutlineLoaded           = "outlineloaded"
	RegexInitialSearch      = "regex_initial_search"
	ProductDetails          = "productdetails"
	AddToCart               = "addtocart"
	ShowCart                = "showcart"
)

// Payload keys shared across names.
const (
	KeySource  = "source"
	KeySKU     = "sku"
	KeyProduct = "product"
)
