package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	datefix "github.com/user/media-datefix/cmd/datefix/lib"
	"github.com/user/media-datefix/pkg"
)

func main() {
	// --- Command-line flags ---
	sourceDirFlag := flag.String("sourceDir", "", "Source directory containing media files to reconcile (images, ISO-media containers and audio) (required)")
	backupDirFlag := flag.String("backupDir", "", "Directory to copy files into before rewriting their metadata (optional)")
	dryRunFlag := flag.Bool("dryRun", false, "Resolve and report without writing anything back.")
	verboseFlag := flag.Bool("verbose", false, "Enable verbose output for detailed processing information.")
	helpFlg := flag.Bool("help", false, "Show help message and license information")
	flag.Parse()

	if *helpFlg {
		fmt.Println("Usage: datefix -sourceDir <source_directory> [-backupDir <dir>] [-dryRun] [-verbose]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults() // Prints all defined flags, including -help
		fmt.Println("\nDependency Information:")
		fmt.Println("  This project relies on the following Go modules:")
		fmt.Println("\n  Direct Dependencies:")
		fmt.Println("  - goexif (github.com/rwcarlsen/goexif)")
		fmt.Println("    - Purpose: Used to extract EXIF date fields from image files.")
		fmt.Println("    - License: BSD 2-Clause \"Simplified\" License")
		fmt.Println("  - go-exiftool (github.com/barasher/go-exiftool)")
		fmt.Println("    - Purpose: Drives the external exiftool process for reading and writing metadata.")
		fmt.Println("    - License: MIT License")
		fmt.Println("  - heif-go (github.com/vegidio/heif-go)")
		fmt.Println("    - Purpose: Used to decode HEIF/HEIC image files.")
		fmt.Println("    - License: MIT License")
		fmt.Println("  - uuid (github.com/google/uuid)")
		fmt.Println("    - Purpose: Derives the stable per-file uuid tag.")
		fmt.Println("    - License: BSD 3-Clause License")
		fmt.Println("  - testify (github.com/stretchr/testify)")
		fmt.Println("    - Purpose: Test assertions.")
		fmt.Println("    - License: MIT License")
		fmt.Println("\n  Please refer to the respective repositories for full license texts.")
		os.Exit(0)
	}

	sourceDir := *sourceDirFlag

	// --- Validate Flags ---
	if sourceDir == "" {
		log.Fatal("Error: -sourceDir flag is required.")
	}

	sourceInfo, err := os.Stat(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatalf("Error: Source directory '%s' does not exist.", sourceDir)
		}
		log.Fatalf("Error: Could not stat source directory '%s': %v", sourceDir, err)
	}
	if !sourceInfo.IsDir() {
		log.Fatalf("Error: Source path '%s' is not a directory.", sourceDir)
	}

	opts := datefix.Options{
		SourceDir: sourceDir,
		BackupDir: *backupDirFlag,
		DryRun:    *dryRunFlag,
		Verbose:   *verboseFlag,
	}
	stats, outcomes, err := datefix.Run(opts)
	if err != nil {
		log.Fatalf("Application Error: %v", err)
	}

	reportPath := filepath.Join(sourceDir, "datefix-report.txt")
	if err := pkg.GenerateReport(reportPath, outcomes, stats.Processed, stats.Updated, stats.Undetermined); err != nil {
		log.Fatalf("Failed to generate final report: %v", err)
	}
	fmt.Printf("Run Summary: Processed: %d, Updated: %d, Undetermined Dates: %d\n",
		stats.Processed, stats.Updated, stats.Undetermined)
}
