package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display detailed version information including build details and runtime information.`,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("PhenoCam Archive Fetcher\n")
	fmt.Printf("========================\n\n")

	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", commit)
	fmt.Printf("Build Date: %s\n", date)
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)

	fmt.Printf("\nFeatures:\n")
	fmt.Printf("  ✓ Concurrent batched downloads with worker pools\n")
	fmt.Printf("  ✓ Dry-run size estimates via HEAD probes\n")
	fmt.Printf("  ✓ Skip-if-exists resume for interrupted runs\n")
	fmt.Printf("  ✓ Optional S3 mirroring of fetched files\n")
	fmt.Printf("  ✓ Camera metadata export (CSV, JSON, Parquet)\n")
	fmt.Printf("  ✓ Per-month site statistics\n")
}
