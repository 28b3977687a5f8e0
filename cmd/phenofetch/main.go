package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "phenofetch",
	Short: "PhenoCam archive fetcher",
	Long: `phenofetch discovers and retrieves camera imagery from the PhenoCam
archive for NEON sites.

Features:
  - Browse available NEON camera sites
  - Per-month image counts for a site
  - Dry-run size estimates before committing to a download
  - Concurrent batched downloads with skip-if-exists resume
  - Optional mirroring of fetched files to an S3 bucket
  - Camera metadata extraction to CSV, JSON or Parquet

Examples:
  phenofetch sites
  phenofetch stats --site ABBY --product DP1.00033
  phenofetch estimate --site ABBY --product DP1.00033 --start-date 2021-01-01 --end-date 2021-01-31
  phenofetch download --site ABBY --product DP1.00033 --start-date 2021-01-01 --end-date 2021-01-31 --download
  phenofetch extract ./phenocam_data/meta -o metadata.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phenofetch v%s\n", version)
		fmt.Println("Use 'phenofetch --help' for available commands")
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(versionCmd)
}

// signalContext cancels on SIGINT or SIGTERM so an interrupted run still
// finishes its current batch and prints the partial summary.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	ctx, stop := signalContext()
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
