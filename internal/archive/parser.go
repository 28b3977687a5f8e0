package archive

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// DayCapture is one camera capture as listed on a day page: the full image,
// its thumbnail, and the sidecar metadata record if present.
type DayCapture struct {
	TimeLabel    string // "07:00:06"
	Timezone     string // "UTC-8"
	ImageURL     string
	ThumbnailURL string
	MetadataURL  string
}

// DayPage is the parsed form of one day's browse page.
type DayPage struct {
	SiteName string
	Captures []DayCapture
}

// MonthCount is one month's image count scraped from a site browse page.
type MonthCount struct {
	Name  string
	Count int
}

// YearSummary groups the month counts for one archive year.
type YearSummary struct {
	Year   int
	Months []MonthCount
}

var (
	captureTimeRe = regexp.MustCompile(`(\d+:\d+:\d+)\s+(.+)`)
	monthLabelRe  = regexp.MustCompile(`([A-Za-z]+)\s*\(\s*N\s*=\s*(\d+)\s*\)`)
	yearRe        = regexp.MustCompile(`\d{4}`)
)

// ParseDayPage parses a day browse page. It returns nil when the page does
// not carry the site-info block, which is how the archive renders days
// without data.
func ParseDayPage(r io.Reader) (*DayPage, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	siteInfo := findByID(root, "browse_siteinfo")
	if siteInfo == nil {
		return nil, nil
	}

	page := &DayPage{}
	if a := findFirst(siteInfo, "a"); a != nil {
		page.SiteName = strings.TrimSpace(nodeText(a))
	}

	for _, cell := range findImageCells(root) {
		capture := DayCapture{}
		for _, a := range findAll(cell, "a") {
			href := attr(a, "href")
			if href == "" {
				continue
			}
			if strings.HasSuffix(href, ".meta") {
				capture.MetadataURL = href
			} else if capture.ImageURL == "" {
				capture.ImageURL = href
			}
		}
		if img := findFirst(cell, "img"); img != nil {
			capture.ThumbnailURL = attr(img, "src")
		}
		if label := findBySpanClass(cell, "imglabel"); label != nil {
			if small := findFirst(label, "small"); small != nil {
				raw := strings.TrimSpace(nodeText(small))
				if m := captureTimeRe.FindStringSubmatch(raw); m != nil {
					capture.TimeLabel = m[1]
					capture.Timezone = m[2]
				} else {
					capture.TimeLabel = raw
				}
			}
		}
		if capture.ImageURL == "" && capture.ThumbnailURL == "" && capture.MetadataURL == "" {
			continue
		}
		page.Captures = append(page.Captures, capture)
	}

	return page, nil
}

// ParseSitePage parses the site-level browse page into per-year month counts.
func ParseSitePage(r io.Reader) ([]YearSummary, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var years []YearSummary
	for _, section := range findByClass(root, "div", "container-fluid") {
		header := findBySpanClass(section, "h4")
		if header == nil {
			continue
		}
		yearLink := findFirst(header, "a")
		if yearLink == nil {
			continue
		}
		m := yearRe.FindString(nodeText(yearLink))
		if m == "" {
			continue
		}
		year, _ := strconv.Atoi(m)

		var months []MonthCount
		for _, cell := range findImageCells(section) {
			label := findBySpanClass(cell, "imglabel")
			if label == nil {
				continue
			}
			lm := monthLabelRe.FindStringSubmatch(nodeText(label))
			if lm == nil {
				continue
			}
			count, _ := strconv.Atoi(lm[2])
			months = append(months, MonthCount{Name: lm[1], Count: count})
		}

		if len(months) > 0 {
			years = append(years, YearSummary{Year: year, Months: months})
		}
	}

	return years, nil
}

// findImageCells returns the grid cells the archive uses for both day
// captures and month tiles.
func findImageCells(n *html.Node) []*html.Node {
	return findByClass(n, "div", "col-6", "col-sm-4", "col-md-3", "col-lg-2", "px-1")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClasses(n *html.Node, classes ...string) bool {
	have := strings.Fields(attr(n, "class"))
	for _, want := range classes {
		found := false
		for _, c := range have {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func findFirst(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

func findAll(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		return true
	})
	return out
}

func findByClass(root *html.Node, tag string, classes ...string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag && hasClasses(n, classes...) {
			out = append(out, n)
			// Grid cells do not nest; no need to descend further.
			return false
		}
		return true
	})
	return out
}

func findBySpanClass(root *html.Node, class string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "span" && hasClasses(n, class) {
			found = n
			return false
		}
		return true
	})
	return found
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}
