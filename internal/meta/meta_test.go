package meta

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const sampleMeta = `model=NetCam SC IR
exposure_limit=920
ip_addr=10.20.30.40
mac_addr=00:1C:C3:AA:BB:CC
overlay_text=NEON.D16.ABBY.DP1.00033 - Camera Temperature: 24.5 C
brightness=128
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  bool
		want     FilenameParts
	}{
		{
			name:     "standard meta filename",
			filename: "NEON.D16.ABBY.DP1.00033_2021_01_01_073006.meta",
			want: FilenameParts{
				Provider:    "NEON",
				Domain:      "D16",
				SiteCode:    "ABBY",
				ProductCode: "DP1.00033",
				Date:        "2021-01-01",
				Time:        "07:30:06",
				TimeZone:    "UTC",
				EpochTime:   1609486206,
				DayOfYear:   1,
				Weekday:     "Friday",
			},
		},
		{
			name:     "jpg filename",
			filename: "NEON.D08.DELA.DP1.00042_2022_06_15_120000.jpg",
			want: FilenameParts{
				Provider:    "NEON",
				Domain:      "D08",
				SiteCode:    "DELA",
				ProductCode: "DP1.00042",
				Date:        "2022-06-15",
				Time:        "12:00:00",
				TimeZone:    "UTC",
				EpochTime:   1655294400,
				DayOfYear:   166,
				Weekday:     "Wednesday",
			},
		},
		{name: "not a NEON name", filename: "snapshot.jpg", wantErr: true},
		{name: "truncated timestamp", filename: "NEON.D16.ABBY.DP1.00033_2021_01.jpg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilename(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseFilename() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilename() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFilename() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "meta/NEON.D16.ABBY.DP1.00033_2021_01_01_073006.meta"
	if err := afero.WriteFile(fs, path, []byte(sampleMeta), 0644); err != nil {
		t.Fatalf("writing sample: %v", err)
	}

	extractor := NewExtractorFs(fs, testLogger())
	rec, err := extractor.ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile() unexpected error: %v", err)
	}

	if rec.ExposureLimit != "920" {
		t.Errorf("ExposureLimit = %q, want 920", rec.ExposureLimit)
	}
	if rec.IPAddr != "10.20.30.40" {
		t.Errorf("IPAddr = %q", rec.IPAddr)
	}
	if rec.MACAddr != "00:1C:C3:AA:BB:CC" {
		t.Errorf("MACAddr = %q", rec.MACAddr)
	}
	if rec.CameraTemperature != "24.5" {
		t.Errorf("CameraTemperature = %q, want 24.5", rec.CameraTemperature)
	}
	if rec.SiteCode != "ABBY" || rec.Date != "2021-01-01" {
		t.Errorf("filename parts = %s/%s", rec.SiteCode, rec.Date)
	}
}

func TestExtractDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := []string{
		"meta/NEON.D16.ABBY.DP1.00033_2021_01_01_100006.meta",
		"meta/NEON.D16.ABBY.DP1.00033_2021_01_01_073006.meta",
	}
	for _, f := range files {
		if err := afero.WriteFile(fs, f, []byte(sampleMeta), 0644); err != nil {
			t.Fatalf("writing sample: %v", err)
		}
	}
	// An unrelated file in the directory must be ignored.
	if err := afero.WriteFile(fs, "meta/notes.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("writing sample: %v", err)
	}

	extractor := NewExtractorFs(fs, testLogger())
	records, err := extractor.ExtractDir("meta", "")
	if err != nil {
		t.Fatalf("ExtractDir() unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	// Sorted by filename, so the 07:30 capture comes first.
	if records[0].Time != "07:30:06" || records[1].Time != "10:00:06" {
		t.Errorf("record order = %s, %s", records[0].Time, records[1].Time)
	}
}

func TestExportCSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "meta/NEON.D16.ABBY.DP1.00033_2021_01_01_073006.meta"
	if err := afero.WriteFile(fs, path, []byte(sampleMeta), 0644); err != nil {
		t.Fatalf("writing sample: %v", err)
	}

	extractor := NewExtractorFs(fs, testLogger())
	rec, err := extractor.ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile() unexpected error: %v", err)
	}

	if err := extractor.Export([]Record{rec}, "out/metadata.csv", FormatCSV); err != nil {
		t.Fatalf("Export() unexpected error: %v", err)
	}

	f, err := fs.Open("out/metadata.csv")
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want header plus one record", len(rows))
	}
	if rows[0][0] != "filename" {
		t.Errorf("header starts with %q, want filename", rows[0][0])
	}
	row := strings.Join(rows[1], ",")
	for _, want := range []string{"ABBY", "2021-01-01", "07:30:06", "920", "24.5"} {
		if !strings.Contains(row, want) {
			t.Errorf("exported row %q missing %q", row, want)
		}
	}
}

func TestExportJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	extractor := NewExtractorFs(fs, testLogger())

	rec := Record{Filename: "a.meta", SiteCode: "ABBY", ExposureLimit: "920"}
	if err := extractor.Export([]Record{rec}, "metadata.json", FormatJSON); err != nil {
		t.Fatalf("Export() unexpected error: %v", err)
	}

	data, err := afero.ReadFile(fs, "metadata.json")
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	for _, want := range []string{`"site_code": "ABBY"`, `"exposure_limit": "920"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON export missing %s", want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{path: "out.csv", want: FormatCSV},
		{path: "out.json", want: FormatJSON},
		{path: "out.parquet", want: FormatParquet},
		{path: "out.PARQUET", want: FormatParquet},
		{path: "out", want: FormatCSV},
		{path: "out.xlsx", want: FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DetectFormat(tt.path); got != tt.want {
				t.Errorf("DetectFormat(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}
