package pkg

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileOutcome records how one file fared in the reconciliation pass.
type FileOutcome struct {
	Path       string
	Date       string // formatted resolved date, empty when undetermined
	DateSource string
	Zone       string // formatted resolved timezone, empty when undetermined
	ZoneSource string
	Updated    bool
	Note       string // e.g., "dry run", "no creation date determined"
}

// GenerateReport creates a text report summarizing the reconciliation run.
func GenerateReport(reportPath string, outcomes []FileOutcome, processedCount, updatedCount, undeterminedCount int) error {
	// Ensure the directory for the report exists
	reportDir := filepath.Dir(reportPath)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for report '%s': %w", reportDir, err)
	}

	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", reportPath, err)
	}
	defer file.Close()

	_, err = fmt.Fprintf(file, "Media Date Reconciliation Report\n")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(file, "================================\n\n")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(file, "Summary:\n")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(file, "  - Total files scanned: %d\n", processedCount)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(file, "  - Files updated: %d\n", updatedCount)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(file, "  - Files with no determinable creation date: %d\n", undeterminedCount)
	if err != nil {
		return err
	}

	bySource := make(map[string]int)
	for _, o := range outcomes {
		if o.DateSource != "" {
			bySource[o.DateSource]++
		}
	}
	if len(bySource) > 0 {
		_, err = fmt.Fprintf(file, "\nResolved dates by source:\n")
		if err != nil {
			return err
		}
		for _, source := range []string{SourceDateTaken, SourceDateEncoded, SourceExternalTool, SourceFilename, SourceContainer} {
			if bySource[source] > 0 {
				_, err = fmt.Fprintf(file, "  - %s: %d\n", source, bySource[source])
				if err != nil {
					return err
				}
			}
		}
	}

	if len(outcomes) > 0 {
		_, err = fmt.Fprintf(file, "\nDetails:\n")
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			_, err = fmt.Fprintf(file, "  - File: %s\n", o.Path)
			if err != nil {
				return err
			}
			if o.Date != "" {
				_, err = fmt.Fprintf(file, "    Date: %s (source: %s)\n", o.Date, o.DateSource)
				if err != nil {
					return err
				}
			}
			if o.Zone != "" {
				_, err = fmt.Fprintf(file, "    Timezone: %s (source: %s)\n", o.Zone, o.ZoneSource)
				if err != nil {
					return err
				}
			}
			if o.Note != "" {
				_, err = fmt.Fprintf(file, "    Note: %s\n", o.Note)
				if err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(file, "    Updated: %v\n\n", o.Updated)
			if err != nil {
				return err
			}
		}
	}

	fmt.Printf("Report generated at %s\n", reportPath)
	return nil
}
