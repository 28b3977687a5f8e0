package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dayPageFor renders a minimal day page with the given capture times. The
// capture cells are emitted in the order given so tests can verify that
// resolution sorts them.
func dayPageFor(site, yearMonth string, times ...string) string {
	page := `<div id="browse_siteinfo"><h3><a href="#">Test Site</a></h3></div>`
	for _, hhmmss := range times {
		base := fmt.Sprintf("NEON.D16.%s.DP1.00033_%s_%s", site, yearMonth, hhmmss)
		page += fmt.Sprintf(`
<div class="col-6 col-sm-4 col-md-3 col-lg-2 px-1">
  <a href="/data/archive/x/%s.jpg"><img src="/data/archive/x/thumbnails/%s.jpg"></a>
  <a href="/data/archive/x/%s.meta">meta</a>
  <span class="imglabel"><small>%s:%s:%s UTC-8</small></span>
</div>`, base, base, base, hhmmss[0:2], hhmmss[2:4], hhmmss[4:6])
	}
	return page
}

func TestResolverOrdering(t *testing.T) {
	mux := http.NewServeMux()
	// Two captures on the first day, listed out of order, one on the third.
	// The second day has no data.
	mux.HandleFunc("/webcam/browse/NEON.D16.ABBY.DP1.00033/2021/01/01/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, dayPageFor("ABBY", "2021_01_01", "100006", "073006"))
	})
	mux.HandleFunc("/webcam/browse/NEON.D16.ABBY.DP1.00033/2021/01/02/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/webcam/browse/NEON.D16.ABBY.DP1.00033/2021/01/03/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, dayPageFor("ABBY", "2021_01_03", "073006"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	resolver := NewResolver(5*time.Second, testLogger()).WithBaseURL(server.URL)
	dr, _ := NewDateRange("2021-01-01", "2021-01-03")

	listing, err := resolver.Resolve(context.Background(), "ABBY", "DP1.00033", dr, AllClasses)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}

	if listing.TotalDays != 3 {
		t.Errorf("TotalDays = %d, want 3", listing.TotalDays)
	}
	if listing.DaysWithData != 2 {
		t.Errorf("DaysWithData = %d, want 2", listing.DaysWithData)
	}
	if len(listing.References) != 9 {
		t.Fatalf("len(References) = %d, want 9", len(listing.References))
	}

	// Day 1 first, within it full_res sorted by filename, then thumbnails,
	// then metadata; day 3 after all of day 1.
	wantOrder := []struct {
		class  FileClass
		suffix string
	}{
		{ClassFullRes, "2021_01_01_073006.jpg"},
		{ClassFullRes, "2021_01_01_100006.jpg"},
		{ClassThumbnail, "2021_01_01_073006.jpg"},
		{ClassThumbnail, "2021_01_01_100006.jpg"},
		{ClassMetadata, "2021_01_01_073006.meta"},
		{ClassMetadata, "2021_01_01_100006.meta"},
		{ClassFullRes, "2021_01_03_073006.jpg"},
		{ClassThumbnail, "2021_01_03_073006.jpg"},
		{ClassMetadata, "2021_01_03_073006.meta"},
	}
	for i, want := range wantOrder {
		ref := listing.References[i]
		if ref.Class != want.class {
			t.Errorf("References[%d].Class = %v, want %v", i, ref.Class, want.class)
		}
		if got := ref.Filename; got[len(got)-len(want.suffix):] != want.suffix {
			t.Errorf("References[%d].Filename = %s, want suffix %s", i, got, want.suffix)
		}
	}
}

func TestResolverClassFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, dayPageFor("ABBY", "2021_01_01", "073006"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	resolver := NewResolver(5*time.Second, testLogger()).WithBaseURL(server.URL)
	dr, _ := NewDateRange("2021-01-01", "2021-01-01")

	listing, err := resolver.Resolve(context.Background(), "ABBY", "DP1.00033", dr, ClassFilter{Metadata: true})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(listing.References) != 1 {
		t.Fatalf("len(References) = %d, want 1", len(listing.References))
	}
	if listing.References[0].Class != ClassMetadata {
		t.Errorf("Class = %v, want metadata", listing.References[0].Class)
	}
}

func TestResolverInvalidSite(t *testing.T) {
	resolver := NewResolver(5*time.Second, testLogger())
	dr, _ := NewDateRange("2021-01-01", "2021-01-01")

	_, err := resolver.Resolve(context.Background(), "NOPE", "DP1.00033", dr, AllClasses)
	if !errors.Is(err, ErrInvalidSite) {
		t.Errorf("Resolve() error = %v, want ErrInvalidSite", err)
	}
}

func TestResolverRemoteUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	resolver := NewResolver(2*time.Second, testLogger()).WithBaseURL(base)
	dr, _ := NewDateRange("2021-01-01", "2021-01-02")

	_, err := resolver.Resolve(context.Background(), "ABBY", "DP1.00033", dr, AllClasses)
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestResolverSparseDaysAreNotErrors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	resolver := NewResolver(5*time.Second, testLogger()).WithBaseURL(server.URL)
	dr, _ := NewDateRange("2021-01-01", "2021-01-05")

	listing, err := resolver.Resolve(context.Background(), "ABBY", "DP1.00033", dr, AllClasses)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if listing.DaysWithData != 0 {
		t.Errorf("DaysWithData = %d, want 0", listing.DaysWithData)
	}
	if len(listing.References) != 0 {
		t.Errorf("len(References) = %d, want 0", len(listing.References))
	}
}

func TestResolverServerErrorsAreUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver := NewResolver(5*time.Second, testLogger()).WithBaseURL(server.URL)
	dr, _ := NewDateRange("2021-01-01", "2021-01-05")

	_, err := resolver.Resolve(context.Background(), "ABBY", "DP1.00033", dr, AllClasses)
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestResolverPartialServerErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/webcam/browse/NEON.D16.ABBY.DP1.00033/2021/01/01/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, dayPageFor("ABBY", "2021_01_01", "073006"))
	})
	mux.HandleFunc("/webcam/browse/NEON.D16.ABBY.DP1.00033/2021/01/02/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	resolver := NewResolver(5*time.Second, testLogger()).WithBaseURL(server.URL)
	dr, _ := NewDateRange("2021-01-01", "2021-01-02")

	listing, err := resolver.Resolve(context.Background(), "ABBY", "DP1.00033", dr, AllClasses)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if listing.DaysWithData != 1 {
		t.Errorf("DaysWithData = %d, want 1", listing.DaysWithData)
	}
	if len(listing.References) != 3 {
		t.Errorf("len(References) = %d, want 3", len(listing.References))
	}
}

func TestParseClassFilter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ClassFilter
		wantErr bool
	}{
		{name: "all", input: "all", want: AllClasses},
		{name: "empty defaults to all", input: "", want: AllClasses},
		{name: "image", input: "image", want: ClassFilter{FullRes: true}},
		{name: "thumbnail", input: "thumbnail", want: ClassFilter{Thumbnails: true}},
		{name: "meta", input: "meta", want: ClassFilter{Metadata: true}},
		{name: "unknown", input: "video", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClassFilter(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseClassFilter() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClassFilter() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseClassFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
