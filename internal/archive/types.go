// Package archive models the PhenoCam web archive: day listings, the files
// they reference, and the resolver that turns a site/product/date range into
// an ordered sequence of file references.
package archive

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// Fatal resolution errors. Per-file errors are carried in outcomes instead.
var (
	ErrInvalidSite       = errors.New("site code not found in catalog")
	ErrRemoteUnavailable = errors.New("archive host unreachable for every day in range")
)

// FileClass identifies the kind of file a reference points at.
type FileClass int

const (
	ClassFullRes FileClass = iota
	ClassThumbnail
	ClassMetadata
)

// String returns the class name used in reports.
func (c FileClass) String() string {
	switch c {
	case ClassFullRes:
		return "full_res"
	case ClassThumbnail:
		return "thumbnail"
	case ClassMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// Subdir returns the output subdirectory files of this class are stored in.
func (c FileClass) Subdir() string {
	switch c {
	case ClassFullRes:
		return "full_res"
	case ClassThumbnail:
		return "thumbnails"
	case ClassMetadata:
		return "meta"
	default:
		return "unknown"
	}
}

// Classes in the fixed order used for per-day ordering and reporting.
var Classes = []FileClass{ClassFullRes, ClassThumbnail, ClassMetadata}

// ClassifyURL infers the file class from a remote URL. Archive paths hold
// full-resolution jpgs and .meta records; thumbnails live under a dedicated
// path segment.
func ClassifyURL(rawURL string) (FileClass, bool) {
	switch {
	case strings.Contains(rawURL, "/thumbnails/"):
		return ClassThumbnail, true
	case strings.Contains(rawURL, "/archive/") && strings.HasSuffix(rawURL, ".jpg"):
		return ClassFullRes, true
	case strings.Contains(rawURL, "/archive/") && strings.HasSuffix(rawURL, ".meta"):
		return ClassMetadata, true
	default:
		return 0, false
	}
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

const dateLayout = "2006-01-02"

// NewDateRange parses two YYYY-MM-DD dates and validates their order.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", start)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", end)
	}
	if s.After(e) {
		return DateRange{}, fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return DateRange{Start: s, End: e}, nil
}

// Days returns every calendar day in the range, ascending.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// NumDays returns the number of days in the range.
func (r DateRange) NumDays() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + ".." + r.End.Format(dateLayout)
}

// DayListing identifies one remote day page for a site/product.
type DayListing struct {
	Date time.Time
	URL  string
}

// FileReference is one discoverable file in the archive. References are
// immutable once created and uniquely identified by RemoteURL.
type FileReference struct {
	RemoteURL  string
	Class      FileClass
	Filename   string
	LocalPath  string // relative to the output root, e.g. "full_res/NEON...jpg"
	Date       time.Time
	CapturedAt time.Time // inferred from the capture-time label; zero if absent
}

// NewFileReference builds a reference from a classified remote URL.
func NewFileReference(rawURL string, class FileClass, day time.Time, capturedAt time.Time) FileReference {
	name := path.Base(rawURL)
	return FileReference{
		RemoteURL:  rawURL,
		Class:      class,
		Filename:   name,
		LocalPath:  path.Join(class.Subdir(), name),
		Date:       day,
		CapturedAt: capturedAt,
	}
}
