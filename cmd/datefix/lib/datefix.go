package datefix

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "github.com/vegidio/heif-go" // Register HEIF/HEVC decoder

	"github.com/user/media-datefix/pkg"
)

// Options are the command-line options of the datefix run.
type Options struct {
	SourceDir string
	BackupDir string // when set, files are copied here before being rewritten
	DryRun    bool
	Verbose   bool
}

// Stats summarizes one run.
type Stats struct {
	Processed    int
	Updated      int
	Undetermined int
}

// metadataTool is the slice of pkg.ToolReader the processing loop needs,
// kept narrow so tests can substitute a fake.
type metadataTool interface {
	Read(path string) (pkg.ToolFields, error)
	WriteFields(path string, fields map[string]string) error
}

// Run scans the source directory, reconciles each media file's creation date
// and timezone, and persists the result through exiftool.
func Run(opts Options) (Stats, []pkg.FileOutcome, error) {
	fmt.Printf("Scanning source directory: %s\n", opts.SourceDir)
	files, err := pkg.ScanMediaDirectory(opts.SourceDir)
	if err != nil {
		return Stats{}, nil, fmt.Errorf("failed to scan source directory: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No media files found in source directory.")
		return Stats{}, nil, nil
	}
	fmt.Printf("Found %d media file(s) to process.\n", len(files))

	tool, err := pkg.NewToolReader()
	if err != nil {
		return Stats{}, nil, err
	}
	defer func() {
		if err := tool.Close(); err != nil {
			log.Printf("Warning: failed to close exiftool: %v\n", err)
		}
	}()

	var stats Stats
	var outcomes []pkg.FileOutcome
	for _, path := range files {
		outcome := processFile(tool, path, opts)
		stats.Processed++
		if outcome.Updated {
			stats.Updated++
		}
		if outcome.Date == "" {
			stats.Undetermined++
		}
		outcomes = append(outcomes, outcome)
	}
	return stats, outcomes, nil
}

// processFile harvests one file's candidate values, runs both cascades and
// writes the reconciled result back unless dry-run.
func processFile(tool metadataTool, path string, opts Options) pkg.FileOutcome {
	if opts.Verbose {
		log.Printf("Processing: %s\n", path)
	}
	outcome := pkg.FileOutcome{Path: path}

	candidates, comment := harvestCandidates(tool, path, opts.Verbose)
	res, dateOK := pkg.ResolveDate(candidates)
	zoneRes, zoneOK := pkg.ResolveTimeZone(candidates, res.Date, dateOK)

	date := res.Date
	if zoneOK {
		date = date.WithZone(zoneRes.Zone)
	}
	if dateOK {
		outcome.Date = date.Format()
		outcome.DateSource = res.Source
		if opts.Verbose {
			log.Printf("  - Resolved date (%s): %s\n", res.Source, outcome.Date)
		}
	} else {
		outcome.Note = "no creation date determined"
		if opts.Verbose {
			log.Printf("  - No creation date determined for %s\n", path)
		}
	}
	if zoneOK {
		outcome.Zone = zoneRes.Zone.String()
		outcome.ZoneSource = zoneRes.Source
		if opts.Verbose {
			log.Printf("  - Resolved timezone (%s): %s\n", zoneRes.Source, outcome.Zone)
		}
	}

	desired := desiredTags(res, dateOK, zoneRes, zoneOK, candidates.Tags, path)
	updatedComment := pkg.EmbedTags(comment, desired)

	needsWrite := updatedComment != comment || (dateOK && res.AlwaysStore)
	if !needsWrite {
		return outcome
	}
	if opts.DryRun {
		outcome.Note = joinNote(outcome.Note, "dry run, not written")
		return outcome
	}

	if opts.BackupDir != "" {
		if _, err := pkg.BackupFile(path, opts.BackupDir); err != nil {
			log.Printf("  - Error backing up %s: %v. Skipping write.\n", path, err)
			outcome.Note = joinNote(outcome.Note, "backup failed, not written")
			return outcome
		}
	}

	fields := map[string]string{"Comment": updatedComment}
	if dateOK && res.AlwaysStore && date.Precision() >= pkg.PrecisionSecond {
		fields["AllDates"] = toolDateTime(date)
	}
	if err := tool.WriteFields(path, fields); err != nil {
		log.Printf("  - Error writing metadata for %s: %v\n", path, err)
		outcome.Note = joinNote(outcome.Note, "write failed")
		return outcome
	}
	outcome.Updated = true
	return outcome
}

// harvestCandidates populates the reconciler's candidate bag from every
// reader that applies to the file, plus the existing inline tags decoded
// from the comment field. Reader failures leave candidates absent; they are
// not errors.
func harvestCandidates(tool metadataTool, path string, verbose bool) (pkg.Candidates, string) {
	var c pkg.Candidates

	if pkg.IsImageExtension(path) {
		if dates, err := pkg.ReadExifDates(path); err == nil {
			c.DateTaken = dates.DateTaken
			c.DateEncoded = dates.DateEncoded
		} else if verbose {
			log.Printf("  - No EXIF dates for %s: %v\n", path, err)
		}
		if verbose {
			if w, h, err := pkg.GetImageResolution(path); err == nil {
				log.Printf("  - Resolution: %dx%d\n", w, h)
			}
		}
	}
	if pkg.IsContainerExtension(path) {
		if info, err := pkg.ReadContainerInfo(path); err == nil {
			c.ContainerCreated = info.Created
			c.Duration = info.Duration
		} else if verbose {
			log.Printf("  - No container header for %s: %v\n", path, err)
		}
	}

	var comment string
	if fields, err := tool.Read(path); err == nil {
		c.ToolDateTime = fields.DateTimeOriginal
		c.ToolTimeZone = fields.TimeZone
		if c.Duration == 0 {
			c.Duration = fields.Duration
		}
		comment = fields.Comment
	} else if verbose {
		log.Printf("  - exiftool read failed for %s: %v\n", path, err)
	}
	c.Tags = pkg.ParseTags(comment)

	if d, ok := pkg.FilenameDate(filepath.Base(path)); ok {
		c.FilenameDate = &d
	}
	if created, modified, err := pkg.FileTimes(path); err == nil {
		c.FSCreated = created
		c.FSModified = modified
	}
	return c, comment
}

// desiredTags builds the tag reconciliation map for one file: the resolved
// timezone, the date precision when fine enough to be worth keeping, and the
// originalFilename/uuid identity tags when not already present. Keys absent
// from the map leave existing tags untouched.
func desiredTags(res pkg.DateResolution, dateOK bool, zoneRes pkg.ZoneResolution, zoneOK bool, existing map[string]string, path string) map[string]*string {
	desired := make(map[string]*string)
	if zoneOK {
		if text := zoneRes.Zone.Format(); text != "" {
			desired[pkg.TagTimeZone] = &text
		}
	}
	if dateOK && res.Date.Precision() >= pkg.MinStoredPrecision {
		p := strconv.Itoa(res.Date.Precision())
		desired[pkg.TagDatePrecision] = &p
	}
	if _, ok := existing[pkg.TagOriginalFilename]; !ok {
		name := filepath.Base(path)
		desired[pkg.TagOriginalFilename] = &name
	}
	if _, ok := existing[pkg.TagUUID]; !ok {
		if id, err := pkg.FileIdentity(path); err == nil {
			desired[pkg.TagUUID] = &id
		}
	}
	return desired
}

// toolDateTime renders a DateValue in exiftool's colon-separated layout,
// local representation.
func toolDateTime(d pkg.DateValue) string {
	t := d.ToLocal().Time()
	return fmt.Sprintf("%04d:%02d:%02d %02d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

func joinNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
