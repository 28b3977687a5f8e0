package fetch

import (
	"context"
	"net/http"

	"github.com/phenocam-tools/phenofetch/internal/archive"
)

// Size is the result of probing one remote file.
type Size struct {
	Bytes int64
	Known bool
}

// Prober reports remote file sizes without downloading bodies.
type Prober interface {
	Probe(ctx context.Context, ref archive.FileReference) (Size, error)
}

// HTTPProber issues HEAD requests. Metadata files are served without a
// Content-Length header, so their size comes back unknown rather than
// as an error.
type HTTPProber struct {
	client *http.Client
}

func NewHTTPProber(client *http.Client) *HTTPProber {
	return &HTTPProber{client: client}
}

func (p *HTTPProber) Probe(ctx context.Context, ref archive.FileReference) (Size, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, ref.RemoteURL, nil)
	if err != nil {
		return Size{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Size{}, err
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Size{}, &HTTPError{Status: resp.StatusCode, URL: ref.RemoteURL}
	}

	if resp.ContentLength < 0 {
		return Size{Known: false}, nil
	}
	return Size{Bytes: resp.ContentLength, Known: true}, nil
}
