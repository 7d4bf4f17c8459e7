package pkg

import (
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrNoExifDate is returned when EXIF data is found but no suitable date tag
// is present.
var ErrNoExifDate = fmt.Errorf("no EXIF date tag found")

// PropertyDates are the property-store date fields of an image: DateTaken
// (DateTimeOriginal) is the image-primary field, DateEncoded
// (DateTimeDigitized) the secondary one. Both are local-tagged wall clocks;
// EXIF records no timezone in these fields.
type PropertyDates struct {
	DateTaken   *DateValue
	DateEncoded *DateValue
}

// ReadExifDates extracts the property-store dates from a photo's EXIF data.
// Returns ErrNoExifDate when the EXIF block carries neither date tag.
func ReadExifDates(photoPath string) (PropertyDates, error) {
	file, err := os.Open(photoPath)
	if err != nil {
		return PropertyDates{}, fmt.Errorf("failed to open file %s: %w", photoPath, err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		return PropertyDates{}, fmt.Errorf("failed to decode EXIF data from %s: %w", photoPath, err)
	}

	var dates PropertyDates
	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if d, err := parseExifDateTime(tag); err == nil {
			dates.DateTaken = &d
		}
	}
	if tag, err := x.Get(exif.DateTimeDigitized); err == nil {
		if d, err := parseExifDateTime(tag); err == nil {
			dates.DateEncoded = &d
		}
	}
	if dates.DateTaken == nil && dates.DateEncoded == nil {
		return PropertyDates{}, ErrNoExifDate
	}
	return dates, nil
}

// parseExifDateTime converts an EXIF datetime tag ("YYYY:MM:DD HH:MM:SS",
// with a date-only fallback) to a local-tagged DateValue.
func parseExifDateTime(tag *tiff.Tag) (DateValue, error) {
	if tag == nil {
		return DateValue{}, fmt.Errorf("tag is nil")
	}
	dateStr, err := tag.StringVal() // Handles potential null terminators.
	if err != nil {
		return DateValue{}, fmt.Errorf("failed to get string value from EXIF date tag: %w", err)
	}
	return parseColonDateTime(dateStr)
}

// parseColonDateTime parses the colon-separated datetime form shared by EXIF
// and exiftool output. A date-only value yields day precision.
func parseColonDateTime(dateStr string) (DateValue, error) {
	normalized := dateStr
	if len(normalized) >= 10 && normalized[4] == ':' && normalized[7] == ':' {
		normalized = normalized[:4] + "-" + normalized[5:7] + "-" + normalized[8:]
	}
	d, err := ParseDate(normalized)
	if err != nil {
		return DateValue{}, fmt.Errorf("failed to parse EXIF date string '%s': %w", dateStr, err)
	}
	return d, nil
}
