package meta

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/parquet-go/parquet-go"
	"github.com/spf13/afero"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format is an export encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// DetectFormat picks the export format from the output path's extension.
// Unknown extensions fall back to CSV.
func DetectFormat(outputPath string) Format {
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".json":
		return FormatJSON
	case ".parquet":
		return FormatParquet
	default:
		return FormatCSV
	}
}

// Export writes the records to outputPath in the given format.
func (e *Extractor) Export(records []Record, outputPath string, format Format) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := e.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create output directory: %w", err)
		}
	}

	f, err := e.fs.Create(outputPath)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", outputPath, err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		err = writeCSV(f, records)
	case FormatJSON:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(records)
	case FormatParquet:
		err = writeParquet(f, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", outputPath, err)
	}

	e.logger.Info("Exported metadata.", "path", outputPath, "format", string(format), "records", len(records))
	return nil
}

func writeCSV(f afero.File, records []Record) error {
	w := csv.NewWriter(f)
	header := []string{
		"filename", "provider", "domain", "site_code", "product_code",
		"date", "time", "time_zone", "epoch_time", "doy", "day",
		"exposure_limit", "ip_addr", "mac_addr", "camera_temperature",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Filename, r.Provider, r.Domain, r.SiteCode, r.ProductCode,
			r.Date, r.Time, r.TimeZone, strconv.FormatInt(r.EpochTime, 10),
			strconv.Itoa(r.DayOfYear), r.Weekday,
			r.ExposureLimit, r.IPAddr, r.MACAddr, r.CameraTemperature,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeParquet(f afero.File, records []Record) error {
	w := parquet.NewGenericWriter[Record](f)
	if _, err := w.Write(records); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
