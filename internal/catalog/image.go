package catalog

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"net/http"
)

// Dimensions are an image's native pixel size.
type Dimensions struct {
	Width  int
	Height int
}

// Size is a display size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// ImageLoader discovers an image's native dimensions.
type ImageLoader interface {
	Load(ctx context.Context, url string) (Dimensions, error)
}

// HTTPImageLoader fetches images over HTTP and decodes only their header.
type HTTPImageLoader struct {
	Client *http.Client
}

// Load implements ImageLoader. Every failure is an ErrCodeImageLoad error.
func (l *HTTPImageLoader) Load(ctx context.Context, url string) (Dimensions, error) {
	fail := func(status int, err error) (Dimensions, error) {
		return Dimensions{}, &Error{Code: ErrCodeImageLoad, URL: url, StatusCode: status, Err: err}
	}

	if url == "" {
		return fail(0, fmt.Errorf("empty image url"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(0, err)
	}

	resp, err := l.client().Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decode image: %w", err))
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func (l *HTTPImageLoader) client() *http.Client {
	if l.Client != nil {
		return l.Client
	}
	return http.DefaultClient
}

// FitToHeight scales dim down to at most maxHeight, preserving the aspect
// ratio. Images shorter than maxHeight keep their native size.
func FitToHeight(dim Dimensions, maxHeight float64) Size {
	if dim.Width <= 0 || dim.Height <= 0 {
		return Size{}
	}
	height := min(float64(dim.Height), maxHeight)
	width := height * float64(dim.Width) / float64(dim.Height)
	return Size{Width: width, Height: height}
}
