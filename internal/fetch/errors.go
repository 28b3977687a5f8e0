package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/phenocam-tools/phenofetch/internal/report"
)

// HTTPError is a non-success response from the archive.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Status, e.URL)
}

// Classify maps a fetch error onto the summary's error kinds.
func Classify(err error) report.ErrorKind {
	if err == nil {
		return report.KindNone
	}

	var lio *localIOError
	if errors.As(err, &lio) {
		return report.KindLocalIO
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusNotFound {
			return report.KindNotFound
		}
		return report.KindHTTP
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return report.KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return report.KindTimeout
	}
	// Fetches abandoned by a cancelled run are not connection trouble.
	if errors.Is(err, context.Canceled) {
		return report.KindCancelled
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return report.KindConnection
	}

	return report.KindConnection
}
