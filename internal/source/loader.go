package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/codynego/smarteditor/internal/logging"
)

// LoadError is returned once the load and its retry have both failed.
type LoadError struct {
	Location string
	Attempts int
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s after %d attempts: %v", e.Location, e.Attempts, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches and decodes images from local paths and http(s) URLs.
type Loader struct {
	client *http.Client
	// AuthToken is sent as a bearer token on the first attempt only.
	AuthToken string
}

// NewLoader creates a Loader. A nil client gets one with the given timeout.
func NewLoader(client *http.Client, timeout time.Duration) *Loader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Loader{client: client}
}

// Load decodes location. For URLs the first attempt carries credentials; if
// it fails exactly one more attempt is made without them. Local files are read
// once.
func (l *Loader) Load(ctx context.Context, location string) (*Image, error) {
	if !isURL(location) {
		img, err := openFile(location)
		if err != nil {
			return nil, &LoadError{Location: location, Attempts: 1, Err: err}
		}
		return New(location, img), nil
	}

	img, err := l.fetch(ctx, location, true)
	if err == nil {
		return New(location, img), nil
	}
	logging.L().Info("load failed, retrying without credentials", "location", location, "error", err)

	img, err = l.fetch(ctx, location, false)
	if err != nil {
		return nil, &LoadError{Location: location, Attempts: 2, Err: err}
	}
	return New(location, img), nil
}

func (l *Loader) fetch(ctx context.Context, location string, withCredentials bool) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if withCredentials && l.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+l.AuthToken)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func openFile(path string) (image.Image, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
