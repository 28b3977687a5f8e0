package meta

import (
	"bufio"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

var cameraTempRe = regexp.MustCompile(`Camera Temperature:\s*(\d+\.\d+)`)

// Record is one camera metadata file flattened for export.
type Record struct {
	Filename          string `json:"filename" parquet:"filename"`
	Provider          string `json:"provider" parquet:"provider"`
	Domain            string `json:"domain" parquet:"domain"`
	SiteCode          string `json:"site_code" parquet:"site_code"`
	ProductCode       string `json:"product_code" parquet:"product_code"`
	Date              string `json:"date" parquet:"date"`
	Time              string `json:"time" parquet:"time"`
	TimeZone          string `json:"time_zone" parquet:"time_zone"`
	EpochTime         int64  `json:"epoch_time" parquet:"epoch_time"`
	DayOfYear         int    `json:"doy" parquet:"doy"`
	Weekday           string `json:"day" parquet:"day"`
	ExposureLimit     string `json:"exposure_limit,omitempty" parquet:"exposure_limit,optional"`
	IPAddr            string `json:"ip_addr,omitempty" parquet:"ip_addr,optional"`
	MACAddr           string `json:"mac_addr,omitempty" parquet:"mac_addr,optional"`
	CameraTemperature string `json:"camera_temperature,omitempty" parquet:"camera_temperature,optional"`
}

// Extractor reads .meta files and turns them into records.
type Extractor struct {
	fs     afero.Fs
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	return NewExtractorFs(afero.NewOsFs(), logger)
}

// NewExtractorFs creates an extractor over an arbitrary filesystem. Used
// by tests.
func NewExtractorFs(fs afero.Fs, logger *slog.Logger) *Extractor {
	return &Extractor{fs: fs, logger: logger.With("component", "meta")}
}

// ExtractFile parses one metadata file. Of the camera's key=value pairs
// only the exposure, network and temperature fields are kept; everything
// else the camera reports is dropped.
func (e *Extractor) ExtractFile(path string) (Record, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("could not open metadata file: %w", err)
	}
	defer f.Close()

	rec := Record{Filename: filepath.Base(path)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		switch key {
		case "exposure_limit":
			rec.ExposureLimit = value
		case "ip_addr":
			rec.IPAddr = value
		case "mac_addr":
			rec.MACAddr = value
		case "overlay_text":
			if m := cameraTempRe.FindStringSubmatch(value); m != nil {
				rec.CameraTemperature = m[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("could not read metadata file: %w", err)
	}

	parts, err := ParseFilename(rec.Filename)
	if err != nil {
		e.logger.Debug("Filename does not follow the NEON scheme.", "file", rec.Filename)
		return rec, nil
	}
	rec.Provider = parts.Provider
	rec.Domain = parts.Domain
	rec.SiteCode = parts.SiteCode
	rec.ProductCode = parts.ProductCode
	rec.Date = parts.Date
	rec.Time = parts.Time
	rec.TimeZone = parts.TimeZone
	rec.EpochTime = parts.EpochTime
	rec.DayOfYear = parts.DayOfYear
	rec.Weekday = parts.Weekday
	return rec, nil
}

// IsDir reports whether path names a directory.
func (e *Extractor) IsDir(path string) (bool, error) {
	info, err := e.fs.Stat(path)
	if err != nil {
		return false, fmt.Errorf("could not stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}

// ExtractDir parses every file in dir with the given suffix (".meta" when
// empty). Records come back sorted by filename.
func (e *Extractor) ExtractDir(dir, suffix string) ([]Record, error) {
	if suffix == "" {
		suffix = ".meta"
	}

	entries, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read directory %s: %w", dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		rec, err := e.ExtractFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			e.logger.Warn("Skipping unreadable metadata file.", "file", entry.Name(), "error", err)
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Filename < records[j].Filename })
	e.logger.Info("Extracted metadata records.", "dir", dir, "count", len(records))
	return records, nil
}
