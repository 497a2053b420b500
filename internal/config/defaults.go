package config

import "time"

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			InitialSearchDelay:     50 * time.Millisecond,
			PopupCheckDelay:        2 * time.Second,
			ViewportHeight:         900,
			ImageMaxHeightFraction: 0.4,
			PlaceholderImage:       "images/noimage.png",
		},
		Shop: ShopConfig{
			LookupTimeout: 15 * time.Second,
		},
		Checkout: CheckoutConfig{
			ProxyURL: "http://www.magazooms.com/shopping/pdforder.php",
			Timeout:  30 * time.Second,
			Queue:    "orders",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8089",
			AllowedOrigins: []string{"*"},
		},
	}
}
