package archive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/phenocam-tools/phenofetch/internal/catalog"
)

// DefaultBaseURL is the PhenoCam archive host.
const DefaultBaseURL = "https://phenocam.nau.edu"

// The archive serves browse pages to browser user agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// ClassFilter selects which file classes a resolve includes.
type ClassFilter struct {
	FullRes    bool
	Thumbnails bool
	Metadata   bool
}

// AllClasses includes every file class.
var AllClasses = ClassFilter{FullRes: true, Thumbnails: true, Metadata: true}

// ParseClassFilter parses the --file-types flag value.
func ParseClassFilter(s string) (ClassFilter, error) {
	switch s {
	case "", "all":
		return AllClasses, nil
	case "image":
		return ClassFilter{FullRes: true}, nil
	case "thumbnail":
		return ClassFilter{Thumbnails: true}, nil
	case "meta":
		return ClassFilter{Metadata: true}, nil
	default:
		return ClassFilter{}, fmt.Errorf("invalid file type %q: must be one of all, image, thumbnail, meta", s)
	}
}

// Includes reports whether the filter selects the given class.
func (f ClassFilter) Includes(c FileClass) bool {
	switch c {
	case ClassFullRes:
		return f.FullRes
	case ClassThumbnail:
		return f.Thumbnails
	case ClassMetadata:
		return f.Metadata
	default:
		return false
	}
}

// Listing is the resolved file set for one site/product/date range.
type Listing struct {
	ArchiveID    string
	Range        DateRange
	TotalDays    int
	DaysWithData int
	References   []FileReference
	ByClass      map[FileClass]int
}

// Resolver enumerates day pages and turns them into file references.
type Resolver struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewResolver creates a resolver with the given per-request timeout.
func NewResolver(timeout time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:  &http.Client{Timeout: timeout},
		baseURL: DefaultBaseURL,
		logger:  logger.With("component", "resolver"),
	}
}

// WithBaseURL overrides the archive host. Used by tests.
func (r *Resolver) WithBaseURL(base string) *Resolver {
	r.baseURL = base
	return r
}

// DayListings returns the day pages a resolve will visit, in order.
func (r *Resolver) DayListings(archiveID string, dr DateRange) []DayListing {
	days := dr.Days()
	listings := make([]DayListing, len(days))
	for i, day := range days {
		listings[i] = DayListing{
			Date: day,
			URL: fmt.Sprintf("%s/webcam/browse/%s/%04d/%02d/%02d/",
				r.baseURL, archiveID, day.Year(), day.Month(), day.Day()),
		}
	}
	return listings
}

// Resolve fetches every day page in the range and returns the ordered file
// references. The site code is validated against the catalog before any
// network call. Days without data are recorded, not failed; only a range
// where every day is unreachable at the transport level is an error.
func (r *Resolver) Resolve(ctx context.Context, siteCode, productID string, dr DateRange, filter ClassFilter) (*Listing, error) {
	site, ok := catalog.Lookup(siteCode)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSite, siteCode)
	}

	archiveID := site.ArchiveID(productID)
	listing := &Listing{
		ArchiveID: archiveID,
		Range:     dr,
		TotalDays: dr.NumDays(),
		ByClass:   make(map[FileClass]int),
	}

	r.logger.Info("Resolving day listings.", "archive_id", archiveID, "range", dr.String(), "days", listing.TotalDays)

	transportErrors := 0
	for _, day := range r.DayListings(archiveID, dr) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := r.fetchDayPage(ctx, day.URL)
		if err != nil {
			transportErrors++
			r.logger.Debug("Day page unreachable.", "url", day.URL, "error", err)
			continue
		}
		if page == nil || len(page.Captures) == 0 {
			r.logger.Debug("No data for day.", "date", day.Date.Format("2006-01-02"))
			continue
		}

		refs := r.dayReferences(page, day.Date, filter)
		if len(refs) == 0 {
			continue
		}

		listing.DaysWithData++
		for _, ref := range refs {
			listing.References = append(listing.References, ref)
			listing.ByClass[ref.Class]++
		}
	}

	if transportErrors == listing.TotalDays && listing.TotalDays > 0 {
		return nil, fmt.Errorf("%w: %s", ErrRemoteUnavailable, r.baseURL)
	}

	r.logger.Info("Resolve complete.",
		"days_with_data", listing.DaysWithData,
		"files", len(listing.References))

	return listing, nil
}

// SiteSummary scrapes the site-level browse page for per-month image counts.
func (r *Resolver) SiteSummary(ctx context.Context, siteCode, productID string) (string, []YearSummary, error) {
	site, ok := catalog.Lookup(siteCode)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidSite, siteCode)
	}

	archiveID := site.ArchiveID(productID)
	pageURL := fmt.Sprintf("%s/webcam/browse/%s/", r.baseURL, archiveID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("site page returned HTTP %d", resp.StatusCode)
	}

	years, err := ParseSitePage(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse site page: %w", err)
	}
	return archiveID, years, nil
}

func (r *Resolver) fetchDayPage(ctx context.Context, dayURL string) (*DayPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dayURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// A server failure counts toward the transport tally; a missing day
	// renders as 404 and that is sparse data, not an error.
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("day page returned HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	return ParseDayPage(resp.Body)
}

// dayReferences orders one day's captures by class (full_res, thumbnail,
// metadata) then filename. FetchExecutor batches in sequence order, so this
// ordering is what makes runs reproducible.
func (r *Resolver) dayReferences(page *DayPage, day time.Time, filter ClassFilter) []FileReference {
	byClass := make(map[FileClass][]FileReference)

	for _, capture := range page.Captures {
		capturedAt := captureTimestamp(day, capture.TimeLabel)
		for rawURL, class := range map[string]FileClass{
			capture.ImageURL:     ClassFullRes,
			capture.ThumbnailURL: ClassThumbnail,
			capture.MetadataURL:  ClassMetadata,
		} {
			if rawURL == "" || !filter.Includes(class) {
				continue
			}
			abs := r.absoluteURL(rawURL)
			if got, ok := ClassifyURL(abs); !ok || got != class {
				continue
			}
			byClass[class] = append(byClass[class], NewFileReference(abs, class, day, capturedAt))
		}
	}

	var refs []FileReference
	for _, class := range Classes {
		group := byClass[class]
		sort.Slice(group, func(i, j int) bool { return group[i].Filename < group[j].Filename })
		refs = append(refs, group...)
	}
	return refs
}

func (r *Resolver) absoluteURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.IsAbs() {
		return raw
	}
	base, err := url.Parse(r.baseURL)
	if err != nil {
		return raw
	}
	return base.ResolveReference(u).String()
}

func captureTimestamp(day time.Time, label string) time.Time {
	t, err := time.Parse("15:04:05", label)
	if err != nil {
		return time.Time{}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
