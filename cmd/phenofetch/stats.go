package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phenocam-tools/phenofetch/internal/archive"
	"github.com/phenocam-tools/phenofetch/internal/logging"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-month image counts for a site",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringP("site", "s", "", "NEON site code (e.g., ABBY, BART)")
	statsCmd.Flags().StringP("product", "p", "", "NEON product ID (e.g., DP1.00033)")
	statsCmd.Flags().String("config", "", "Path to JSON config file")
	statsCmd.MarkFlagRequired("site")
	statsCmd.MarkFlagRequired("product")
}

func runStats(cmd *cobra.Command, args []string) error {
	site, _ := cmd.Flags().GetString("site")
	product, _ := cmd.Flags().GetString("product")
	configFile, _ := cmd.Flags().GetString("config")

	config, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	logger, _ := logging.New(config.LogLevel, "", "")

	resolver := archive.NewResolver(time.Duration(config.TimeoutSeconds)*time.Second, logger)

	archiveID, years, err := resolver.SiteSummary(cmd.Context(), site, product)
	if err != nil {
		return err
	}
	if len(years) == 0 {
		fmt.Printf("No image statistics found for %s\n", archiveID)
		return nil
	}

	fmt.Printf("\nImage counts for %s:\n\n", archiveID)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "YEAR\tMONTH\tIMAGES")

	total := 0
	for _, year := range years {
		yearTotal := 0
		for _, month := range year.Months {
			fmt.Fprintf(w, "%d\t%s\t%d\n", year.Year, month.Name, month.Count)
			yearTotal += month.Count
		}
		fmt.Fprintf(w, "%d\ttotal\t%d\n", year.Year, yearTotal)
		total += yearTotal
	}
	w.Flush()
	fmt.Printf("\nTotal images: %d\n", total)
	return nil
}
