package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/phenocam-tools/phenofetch/internal/archive"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func headResponse(status int, contentLength int64) *http.Response {
	return &http.Response{
		StatusCode:    status,
		ContentLength: contentLength,
		Body:          http.NoBody,
		Header:        make(http.Header),
	}
}

func TestHTTPProber(t *testing.T) {
	tests := []struct {
		name          string
		class         archive.FileClass
		status        int
		contentLength int64
		wantBytes     int64
		wantKnown     bool
		wantStatus    int
	}{
		{
			name:          "known size",
			class:         archive.ClassFullRes,
			status:        http.StatusOK,
			contentLength: 2048,
			wantBytes:     2048,
			wantKnown:     true,
		},
		{
			// The archive serves camera metadata without a
			// Content-Length header. That is an unknown size, not
			// an error.
			name:          "unknown size",
			class:         archive.ClassMetadata,
			status:        http.StatusOK,
			contentLength: -1,
			wantKnown:     false,
		},
		{
			name:          "missing file",
			class:         archive.ClassFullRes,
			status:        http.StatusNotFound,
			contentLength: 0,
			wantStatus:    http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawMethod string
			client := &http.Client{
				Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
					sawMethod = r.Method
					return headResponse(tt.status, tt.contentLength), nil
				}),
			}
			prober := NewHTTPProber(client)
			ref := archive.FileReference{RemoteURL: "https://example.com/f", Class: tt.class}

			size, err := prober.Probe(context.Background(), ref)
			if sawMethod != http.MethodHead {
				t.Errorf("request method = %s, want HEAD", sawMethod)
			}

			if tt.wantStatus != 0 {
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) || httpErr.Status != tt.wantStatus {
					t.Fatalf("Probe() error = %v, want HTTP %d", err, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("Probe() unexpected error: %v", err)
			}
			if size.Known != tt.wantKnown || size.Bytes != tt.wantBytes {
				t.Errorf("Probe() = %+v, want bytes %d known %v", size, tt.wantBytes, tt.wantKnown)
			}
		})
	}
}
