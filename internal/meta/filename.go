package meta

import (
	"fmt"
	"regexp"
	"time"
)

// Camera files are named NEON.D16.ABBY.DP1.00033_2021_01_01_073006.jpg.
var filenameRe = regexp.MustCompile(`^(NEON)\.([^.]+)\.([^.]+)\.([^_]+)_(\d{4})_(\d{2})_(\d{2})_(\d{6})`)

// FilenameParts are the components encoded in a NEON camera filename.
type FilenameParts struct {
	Provider    string
	Domain      string
	SiteCode    string
	ProductCode string
	Date        string
	Time        string
	TimeZone    string
	EpochTime   int64
	DayOfYear   int
	Weekday     string
}

// ParseFilename decodes the site, product and capture timestamp from a
// camera filename. Timestamps are taken as UTC.
func ParseFilename(filename string) (FilenameParts, error) {
	m := filenameRe.FindStringSubmatch(filename)
	if m == nil {
		return FilenameParts{}, fmt.Errorf("filename %q does not match the NEON naming scheme", filename)
	}

	hhmmss := m[8]
	stamp := fmt.Sprintf("%s-%s-%s %s:%s:%s", m[5], m[6], m[7], hhmmss[0:2], hhmmss[2:4], hhmmss[4:6])
	dt, err := time.Parse("2006-01-02 15:04:05", stamp)
	if err != nil {
		return FilenameParts{}, fmt.Errorf("filename %q has an invalid timestamp: %w", filename, err)
	}

	return FilenameParts{
		Provider:    m[1],
		Domain:      m[2],
		SiteCode:    m[3],
		ProductCode: m[4],
		Date:        dt.Format("2006-01-02"),
		Time:        dt.Format("15:04:05"),
		TimeZone:    "UTC",
		EpochTime:   dt.Unix(),
		DayOfYear:   dt.YearDay(),
		Weekday:     dt.Weekday().String(),
	}, nil
}
