package main

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phenocam-tools/phenofetch/internal/archive"
	"github.com/phenocam-tools/phenofetch/internal/fetch"
	"github.com/phenocam-tools/phenofetch/internal/logging"
	"github.com/phenocam-tools/phenofetch/internal/report"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate download size for a date range",
	Long: `Estimate probes every file in the date range with HEAD requests and
sums the reported sizes without writing anything to disk. Camera metadata
files are served without a size and are reported separately.`,
	RunE: runEstimate,
}

func init() {
	addRangeFlags(estimateCmd)
	estimateCmd.Flags().String("config", "", "Path to JSON config file")
	estimateCmd.Flags().Int("batch-size", 50, "Number of files to process in each batch")
	estimateCmd.Flags().Int("concurrency", 0, "Maximum concurrent connections (default: auto-determined)")
	estimateCmd.Flags().Int("timeout", 30, "Connection timeout in seconds")
	estimateCmd.Flags().String("file-types", "all", "File types to include: all, image, thumbnail, meta")
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("site", "s", "", "NEON site code (e.g., ABBY, BART)")
	cmd.Flags().StringP("product", "p", "", "NEON product ID (e.g., DP1.00033)")
	cmd.Flags().String("start-date", "", "Start date in YYYY-MM-DD format")
	cmd.Flags().String("end-date", "", "End date in YYYY-MM-DD format")
	cmd.MarkFlagRequired("site")
	cmd.MarkFlagRequired("product")
	cmd.MarkFlagRequired("start-date")
	cmd.MarkFlagRequired("end-date")
}

// resolveListing runs the shared resolve path for estimate and download.
func resolveListing(cmd *cobra.Command, config *CLIConfig) (*archive.Listing, error) {
	site, _ := cmd.Flags().GetString("site")
	product, _ := cmd.Flags().GetString("product")
	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")

	applyFlags(cmd, config)

	dr, err := archive.NewDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	filter, err := archive.ParseClassFilter(config.FileTypes)
	if err != nil {
		return nil, err
	}

	logger, _ := logging.New(config.LogLevel, "", "")
	resolver := archive.NewResolver(time.Duration(config.TimeoutSeconds)*time.Second, logger)

	listing, err := resolver.Resolve(cmd.Context(), site, product, dr, filter)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// applyFlags overlays explicitly set flags onto the loaded config.
func applyFlags(cmd *cobra.Command, config *CLIConfig) {
	if cmd.Flags().Changed("batch-size") {
		config.BatchSize, _ = cmd.Flags().GetInt("batch-size")
	}
	if cmd.Flags().Changed("concurrency") {
		config.Workers, _ = cmd.Flags().GetInt("concurrency")
	}
	if cmd.Flags().Changed("timeout") {
		config.TimeoutSeconds, _ = cmd.Flags().GetInt("timeout")
	}
	if cmd.Flags().Changed("file-types") {
		config.FileTypes, _ = cmd.Flags().GetString("file-types")
	}
}

func workersFor(config *CLIConfig) int {
	if config.Workers > 0 {
		return config.Workers
	}
	logger, _ := logging.New(config.LogLevel, "", "")
	return fetch.NewHostAdvisor(logger).Workers()
}

func runEstimate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	config, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	listing, err := resolveListing(cmd, config)
	if err != nil {
		return err
	}
	if len(listing.References) == 0 {
		fmt.Printf("No files found for %s in %s\n", listing.ArchiveID, listing.Range.String())
		return nil
	}

	logger, _ := logging.New(config.LogLevel, "", "")
	client := &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}

	executor, err := fetch.NewExecutor(fetch.Config{
		Workers:   workersFor(config),
		BatchSize: config.BatchSize,
	}, client, nil, nil, nil, logger)
	if err != nil {
		return err
	}

	est := executor.EstimateSize(cmd.Context(), listing, fetch.NewHTTPProber(client))

	fmt.Printf("\nSize estimate for %s (%s):\n\n", listing.ArchiveID, listing.Range.String())
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tFILES\tSIZE")
	for _, class := range archive.Classes {
		if listing.ByClass[class] == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", class.String(), listing.ByClass[class], report.FormatBytes(est.ByClass[class]))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d files across %d of %d days, at least %s\n",
		est.Files, listing.DaysWithData, listing.TotalDays, report.FormatBytes(est.Bytes))
	if est.SizeUnknown > 0 {
		fmt.Printf("%d files report no size (camera metadata) and are excluded from the total\n", est.SizeUnknown)
	}
	if est.Failed > 0 {
		fmt.Printf("%d files could not be probed:\n", est.Failed)
		for kind, count := range est.ErrorsByKind {
			fmt.Printf("  %s: %d\n", kind.String(), count)
		}
	}
	if est.Incomplete {
		fmt.Println("\nEstimate was interrupted and covers only part of the range.")
	}
	return nil
}
