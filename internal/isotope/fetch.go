package isotope

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/user/skygp_go/internal/errkind"
)

// DefaultURL is where the AME2016 table is published.
const DefaultURL = "https://www-nds.iaea.org/amdc/ame2016/mass16.txt"

// The server refuses clients that do not look like a browser.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/50.0.2661.75 Safari/537.36"

// HTTPClient allows injecting a fake transport in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher copies the table at url to the local file dest.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// HTTPFetcher downloads over HTTP and leaves dest read-only.
type HTTPFetcher struct {
	Client    HTTPClient
	UserAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch writes the body to a temp file next to dest and renames it into
// place, so dest is never left half written.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request for %s: %w", errkind.ErrIO, url, err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: download %s: %w", errkind.ErrIO, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: download %s: status %s", errkind.ErrIO, url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: %w", errkind.ErrIO, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".mass-*.txt")
	if err != nil {
		return fmt.Errorf("%w: %w", errkind.ErrIO, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: download %s: %w", errkind.ErrIO, url, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", errkind.ErrIO, err)
	}
	if err := os.Chmod(tmpName, 0o444); err != nil {
		return fmt.Errorf("%w: %w", errkind.ErrIO, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("%w: %w", errkind.ErrIO, err)
	}
	return nil
}
