package config

import "time"

// Config is the top-level catalogview configuration, corresponding to
// catalogview.yaml.
type Config struct {
	Viewer    ViewerConfig    `yaml:"viewer" koanf:"viewer" json:"viewer"`
	Shop      ShopConfig      `yaml:"shop" koanf:"shop" json:"shop"`
	Publisher PublisherConfig `yaml:"publisher" koanf:"publisher" json:"publisher"`
	Checkout  CheckoutConfig  `yaml:"checkout" koanf:"checkout" json:"checkout"`
	Server    ServerConfig    `yaml:"server" koanf:"server" json:"server"`
}

// ViewerConfig holds timing and display settings.
type ViewerConfig struct {
	InitialSearchDelay     time.Duration `yaml:"initial_search_delay" koanf:"initial_search_delay" json:"initial_search_delay"`
	PopupCheckDelay        time.Duration `yaml:"popup_check_delay" koanf:"popup_check_delay" json:"popup_check_delay"`
	ViewportHeight         int           `yaml:"viewport_height" koanf:"viewport_height" json:"viewport_height"`
	ImageMaxHeightFraction float64       `yaml:"image_max_height_fraction" koanf:"image_max_height_fraction" json:"image_max_height_fraction"`
	PlaceholderImage       string        `yaml:"placeholder_image" koanf:"placeholder_image" json:"placeholder_image"`
	Debug                  bool          `yaml:"debug" koanf:"debug" json:"debug"`
}

// MaxImageHeight is the tallest a product image may be displayed.
func (v ViewerConfig) MaxImageHeight() float64 {
	return float64(v.ViewportHeight) * v.ImageMaxHeightFraction
}

// ShopConfig is the document's shop metadata.
type ShopConfig struct {
	ProductQueryURL string        `yaml:"product_query_url" koanf:"product_query_url" json:"product_query_url"`
	ProductLookup   string        `yaml:"product_lookup" koanf:"product_lookup" json:"product_lookup"`
	Regex           string        `yaml:"regex" koanf:"regex" json:"regex"`
	AccountID       string        `yaml:"account_id" koanf:"account_id" json:"account_id"`
	CheckoutURL     string        `yaml:"checkout_url" koanf:"checkout_url" json:"checkout_url"`
	LookupTimeout   time.Duration `yaml:"lookup_timeout" koanf:"lookup_timeout" json:"lookup_timeout"`
}

// LookupURL returns the product lookup template, preferring
// product_query_url over product_lookup.
func (s ShopConfig) LookupURL() string {
	if s.ProductQueryURL != "" {
		return s.ProductQueryURL
	}
	return s.ProductLookup
}

// PublisherConfig is the publisher contact block.
type PublisherConfig struct {
	Company  string `yaml:"company" koanf:"company" json:"company"`
	Address1 string `yaml:"address1" koanf:"address1" json:"address1"`
	Address2 string `yaml:"address2" koanf:"address2" json:"address2"`
	City     string `yaml:"city" koanf:"city" json:"city"`
	State    string `yaml:"state" koanf:"state" json:"state"`
	Zip      string `yaml:"zip" koanf:"zip" json:"zip"`
	Country  string `yaml:"country" koanf:"country" json:"country"`
	Email    string `yaml:"company_email" koanf:"company_email" json:"company_email"`
	Phone    string `yaml:"phone" koanf:"phone" json:"phone"`
	Web      string `yaml:"weburl" koanf:"weburl" json:"weburl"`
}

// CheckoutConfig holds checkout submission settings.
type CheckoutConfig struct {
	ProxyURL string        `yaml:"proxy_url" koanf:"proxy_url" json:"proxy_url"`
	Timeout  time.Duration `yaml:"timeout" koanf:"timeout" json:"timeout"`
	AMQPURI  string        `yaml:"amqp_uri" koanf:"amqp_uri" json:"amqp_uri"`
	Queue    string        `yaml:"queue" koanf:"queue" json:"queue"`
}

// ServerConfig holds the observation server settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr" koanf:"addr" json:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins" json:"allowed_origins"`
}
