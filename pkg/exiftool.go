package pkg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	exiftool "github.com/barasher/go-exiftool"
)

// ToolFields are the values harvested from one file by the external tool:
// the local-tagged "date/time original", the maker-note timezone text (empty
// when absent), the media duration and the free-text comment field carrying
// the inline tags.
type ToolFields struct {
	DateTimeOriginal *DateValue
	TimeZone         string
	Duration         time.Duration
	Comment          string
}

// ToolReader wraps one long-lived exiftool process. Not safe for concurrent
// use; give each worker its own reader.
type ToolReader struct {
	et *exiftool.Exiftool
}

// NewToolReader starts the exiftool process. Callers must Close it.
func NewToolReader() (*ToolReader, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ToolReader{et: et}, nil
}

// Close shuts the exiftool process down.
func (r *ToolReader) Close() error {
	return r.et.Close()
}

// Read extracts the fields this system cares about from one file. A file the
// tool cannot read yields an error; individual missing fields are simply
// left absent.
func (r *ToolReader) Read(path string) (ToolFields, error) {
	metas := r.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return ToolFields{}, fmt.Errorf("exiftool returned no metadata for %s", path)
	}
	meta := metas[0]
	if meta.Err != nil {
		return ToolFields{}, fmt.Errorf("exiftool failed on %s: %w", path, meta.Err)
	}

	var fields ToolFields
	if s, err := meta.GetString("DateTimeOriginal"); err == nil {
		if d, err := parseColonDateTime(s); err == nil {
			fields.DateTimeOriginal = &d
		}
	}
	if s, err := meta.GetString("OffsetTimeOriginal"); err == nil {
		fields.TimeZone = s
	} else if s, err := meta.GetString("TimeZone"); err == nil {
		fields.TimeZone = s
	}
	if s, err := meta.GetString("Comment"); err == nil {
		fields.Comment = s
	}
	if f, err := meta.GetFloat("Duration"); err == nil {
		fields.Duration = time.Duration(f * float64(time.Second))
	} else if s, err := meta.GetString("Duration"); err == nil {
		fields.Duration = parseToolDuration(s)
	}
	return fields, nil
}

// WriteFields writes string fields back through exiftool, following the
// extract / set / write-back sequence the tool expects.
func (r *ToolReader) WriteFields(path string, fields map[string]string) error {
	metas := r.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return fmt.Errorf("exiftool returned no metadata for %s", path)
	}
	meta := metas[0]
	if meta.Err != nil {
		return fmt.Errorf("exiftool failed on %s: %w", path, meta.Err)
	}
	for key, value := range fields {
		meta.SetString(key, value)
	}
	r.et.WriteMetadata(metas)
	if metas[0].Err != nil {
		return fmt.Errorf("failed to write metadata for %s: %w", path, metas[0].Err)
	}
	return nil
}

// parseToolDuration handles the two textual duration renderings exiftool
// produces: "h:mm:ss" and "12.34 s".
func parseToolDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, " s") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(s, " s"), 64); err == nil {
			return time.Duration(f * float64(time.Second))
		}
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	var total time.Duration
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + time.Duration(n)*time.Second
	}
	return total
}
