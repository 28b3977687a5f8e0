package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phenocam-tools/phenofetch/internal/logging"
	"github.com/phenocam-tools/phenofetch/internal/meta"
)

var extractCmd = &cobra.Command{
	Use:   "extract <input>",
	Short: "Extract camera metadata to CSV, JSON or Parquet",
	Long: `Extract parses downloaded .meta files (a single file or a directory of
them) and exports the camera settings plus the site, product and capture
time decoded from each filename.

The output format follows the output path's extension unless --format is
given. --format all writes one file per format.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "metadata.csv", "Output file path")
	extractCmd.Flags().StringP("format", "f", "", "Export format: csv, json, parquet or all")
	extractCmd.Flags().StringP("pattern", "p", "", "Filename suffix to match in directories (default: .meta)")
	extractCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
}

func runExtract(cmd *cobra.Command, args []string) error {
	input := args[0]
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	pattern, _ := cmd.Flags().GetString("pattern")
	logLevel, _ := cmd.Flags().GetString("log-level")

	logger, _ := logging.New(logLevel, "", "")
	extractor := meta.NewExtractor(logger)

	records, err := collectRecords(extractor, input, pattern)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No metadata records found.")
		return nil
	}

	if format == "all" {
		base := strings.TrimSuffix(output, "."+string(meta.DetectFormat(output)))
		for _, f := range []meta.Format{meta.FormatCSV, meta.FormatJSON, meta.FormatParquet} {
			if err := extractor.Export(records, base+"."+string(f), f); err != nil {
				return err
			}
		}
		return nil
	}

	exportFormat := meta.DetectFormat(output)
	if format != "" {
		exportFormat = meta.Format(format)
	}
	return extractor.Export(records, output, exportFormat)
}

func collectRecords(extractor *meta.Extractor, input, pattern string) ([]meta.Record, error) {
	if isDir, err := extractor.IsDir(input); err != nil {
		return nil, err
	} else if isDir {
		return extractor.ExtractDir(input, pattern)
	}

	rec, err := extractor.ExtractFile(input)
	if err != nil {
		return nil, err
	}
	return []meta.Record{rec}, nil
}
