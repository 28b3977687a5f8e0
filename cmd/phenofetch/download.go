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
	"github.com/phenocam-tools/phenofetch/internal/mirror"
	"github.com/phenocam-tools/phenofetch/internal/report"
	"github.com/phenocam-tools/phenofetch/internal/storage"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download data from the PhenoCam archive",
	Long: `Download resolves every day page in the date range and fetches the
files in batches. Without --download it only prints what a run would
fetch. Files already present in the output directory are skipped, so an
interrupted run can be repeated to pick up where it left off.`,
	RunE: runDownload,
}

func init() {
	addRangeFlags(downloadCmd)
	downloadCmd.Flags().String("config", "", "Path to JSON config file")
	downloadCmd.Flags().Bool("download", false, "Download files (default: just list summary)")
	downloadCmd.Flags().StringP("output-dir", "o", "phenocam_data", "Directory to save downloaded files")
	downloadCmd.Flags().Int("batch-size", 50, "Number of files to download in each batch")
	downloadCmd.Flags().Int("concurrency", 0, "Maximum concurrent downloads (default: auto-determined)")
	downloadCmd.Flags().Int("timeout", 30, "Connection timeout in seconds")
	downloadCmd.Flags().String("file-types", "all", "File types to include: all, image, thumbnail, meta")
	downloadCmd.Flags().Bool("no-skip-existing", false, "Re-fetch files that already exist locally")
	downloadCmd.Flags().String("s3-bucket", "", "Mirror fetched files to this S3 bucket")
	downloadCmd.Flags().String("s3-region", "", "AWS region for the mirror bucket")
	downloadCmd.Flags().String("s3-prefix", "", "Key prefix for mirrored objects")
}

func runDownload(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	config, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") {
		config.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}
	if cmd.Flags().Changed("no-skip-existing") {
		config.SkipExisting = false
	}
	if cmd.Flags().Changed("s3-bucket") {
		config.S3Bucket, _ = cmd.Flags().GetString("s3-bucket")
	}
	if cmd.Flags().Changed("s3-region") {
		config.S3Region, _ = cmd.Flags().GetString("s3-region")
	}
	if cmd.Flags().Changed("s3-prefix") {
		config.S3Prefix, _ = cmd.Flags().GetString("s3-prefix")
	}

	listing, err := resolveListing(cmd, config)
	if err != nil {
		return err
	}

	materialize, _ := cmd.Flags().GetBool("download")
	if !materialize {
		printListingSummary(listing)
		return nil
	}
	if len(listing.References) == 0 {
		fmt.Printf("No files found for %s in %s\n", listing.ArchiveID, listing.Range.String())
		return nil
	}

	logger, logFile := logging.New(config.LogLevel, config.OutputDir, "phenofetch.log")
	defer logFile.Close()

	lock, err := storage.AcquireRunLock(config.OutputDir, logger)
	if err != nil {
		return err
	}
	defer lock.Release()

	var uploader fetch.Mirror
	if config.S3Bucket != "" {
		up, err := mirror.NewUploader(cmd.Context(), config.S3Region, config.S3Bucket, config.S3Prefix, logger)
		if err != nil {
			return err
		}
		uploader = up
	}

	client := &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}
	store := storage.NewStore(config.OutputDir)

	executor, err := fetch.NewExecutor(fetch.Config{
		Workers:      workersFor(config),
		BatchSize:    config.BatchSize,
		SkipExisting: config.SkipExisting,
	}, client, store, uploader, fetch.NewLogObserver(logger), logger)
	if err != nil {
		return err
	}

	summary, err := executor.Download(cmd.Context(), listing)
	if err != nil {
		return err
	}

	printRunSummary(summary)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total)
	}
	return nil
}

func printListingSummary(listing *archive.Listing) {
	fmt.Printf("\nFiles available for %s (%s):\n\n", listing.ArchiveID, listing.Range.String())
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tFILES")
	for _, class := range archive.Classes {
		fmt.Fprintf(w, "%s\t%d\n", class.String(), listing.ByClass[class])
	}
	w.Flush()
	fmt.Printf("\nTotal: %d files across %d of %d days\n", len(listing.References), listing.DaysWithData, listing.TotalDays)
	fmt.Println("Re-run with --download to fetch them.")
}

func printRunSummary(s *report.RunSummary) {
	fmt.Printf("\nDownload summary for %s (%s):\n\n", s.ArchiveID, s.Range.String())
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tTOTAL\tDOWNLOADED\tSKIPPED\tFAILED\tBYTES")
	for _, class := range archive.Classes {
		tally, ok := s.ByClass[class]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\n",
			class.String(), tally.Total, tally.Succeeded, tally.Skipped, tally.Failed,
			report.FormatBytes(tally.Bytes))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d files, %d downloaded, %d skipped, %d failed, %s in %s\n",
		s.Total, s.Succeeded, s.Skipped, s.Failed,
		report.FormatBytes(s.Bytes), s.Duration().Round(time.Second))

	if s.SizeUnknown > 0 {
		fmt.Printf("%d metadata files have no reported size and are excluded from the byte total\n", s.SizeUnknown)
	}
	if s.LatencyP50 > 0 {
		fmt.Printf("Per-file latency: p50 %s, p99 %s\n", s.LatencyP50, s.LatencyP99)
	}
	if len(s.ErrorsByKind) > 0 {
		fmt.Println("\nErrors by kind:")
		for kind, n := range s.ErrorsByKind {
			fmt.Printf("  %s: %d\n", kind.String(), n)
		}
	}
	if s.MirrorFailed > 0 {
		fmt.Printf("%d files downloaded but failed to mirror\n", s.MirrorFailed)
	}
	if s.Incomplete {
		fmt.Println("Run was interrupted before all batches completed.")
	}
}
