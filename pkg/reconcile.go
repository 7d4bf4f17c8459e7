package pkg

import "time"

// Fixed tolerances of the fuzzy offset matcher. These are part of the output
// contract and are not configurable.
const (
	// offsetAbsTolerance rejects comparisons between unrelated fields.
	offsetAbsTolerance = 24 * time.Hour
	// offsetRounding snaps a plausible difference to a half-hour boundary.
	offsetRounding = 30 * time.Minute
	// offsetResidualTolerance absorbs seconds-level clock drift.
	offsetResidualTolerance = 60 * time.Second
)

// Date source labels, in cascade priority order.
const (
	SourceDateTaken    = "DateTaken"
	SourceDateEncoded  = "DateEncoded"
	SourceExternalTool = "ExternalTool"
	SourceFilename     = "Filename"
	SourceContainer    = "Container"
)

// Timezone source labels.
const (
	ZoneSourceTag                 = "Tag"
	ZoneSourceExternalTool        = "ExternalTool"
	ZoneSourceContainerVsTool     = "ContainerVsTool"
	ZoneSourceContainerVsFilename = "ContainerVsFilename"
	ZoneSourceContainerVsCreated  = "ContainerVsCreated"
	ZoneSourceContainerVsModified = "ContainerVsModified"
	ZoneSourceLocalDefault        = "LocalDefault"
)

// Candidates is the bag of values harvested from one file's metadata
// sources. Absent values are nil (or zero for the file-system times). The
// bag is consumed by ResolveDate and ResolveTimeZone and discarded; nothing
// here is persisted directly.
type Candidates struct {
	// DateTaken is the property-store "date taken" field (image primary).
	DateTaken *DateValue
	// DateEncoded is the property-store "date encoded" field (audio/video
	// primary).
	DateEncoded *DateValue
	// ContainerCreated is the ISO-media mvhd creation time, UTC-tagged.
	ContainerCreated *DateValue
	// ToolDateTime is the external tool's "date/time original", local-tagged.
	ToolDateTime *DateValue
	// ToolTimeZone is the external tool's maker-note timezone text, if any.
	ToolTimeZone string
	// FilenameDate is the filename-embedded date, if the name carries one.
	FilenameDate *DateValue
	// FSCreated and FSModified are the file-system timestamps. FSCreated is
	// zero on platforms without a birth time.
	FSCreated  time.Time
	FSModified time.Time
	// Duration is the media duration when known, else zero.
	Duration time.Duration
	// Tags is the inline tag set already embedded in the file's free-text
	// field.
	Tags map[string]string
}

// DateResolution is the outcome of the creation-date cascade.
type DateResolution struct {
	Date   DateValue
	Source string
	// AlwaysStore requests that the value be persisted through tag embedding
	// even when no other metadata changed. The property-store sources never
	// set it because they are already canonical.
	AlwaysStore bool
}

// ResolveDate picks the best available creation date. The first source with
// a present value wins. The canonical property-store fields come first; then
// the local-tagged heuristic sources (external tool, filename); the container
// header's UTC wall clock is the last resort, since without a timezone it
// cannot be placed on the local calendar and serves mostly as the UTC anchor
// for offset inference. Absence of every source is a normal outcome, not an
// error.
func ResolveDate(c Candidates) (DateResolution, bool) {
	if c.DateTaken != nil {
		return DateResolution{Date: *c.DateTaken, Source: SourceDateTaken}, true
	}
	if c.DateEncoded != nil {
		return DateResolution{Date: *c.DateEncoded, Source: SourceDateEncoded}, true
	}
	if c.ToolDateTime != nil {
		return DateResolution{Date: *c.ToolDateTime, Source: SourceExternalTool, AlwaysStore: true}, true
	}
	if c.FilenameDate != nil {
		return DateResolution{Date: mergeModTime(*c.FilenameDate, c.FSModified), Source: SourceFilename, AlwaysStore: true}, true
	}
	if c.ContainerCreated != nil {
		return DateResolution{Date: *c.ContainerCreated, Source: SourceContainer, AlwaysStore: true}, true
	}
	return DateResolution{}, false
}

// mergeModTime upgrades a day-precision filename date with the file-system
// modification time-of-day when both fall on the same calendar date. A
// camera that names files by date but not time usually wrote the file the
// same day.
func mergeModTime(d DateValue, modified time.Time) DateValue {
	if d.Precision() != PrecisionDay || modified.IsZero() {
		return d
	}
	m := wallClock(modified)
	y1, mo1, d1 := d.Time().Date()
	y2, mo2, d2 := m.Date()
	if y1 != y2 || mo1 != mo2 || d1 != d2 {
		return d
	}
	t := time.Date(y1, mo1, d1, m.Hour(), m.Minute(), m.Second(), 0, time.UTC)
	return DateValue{t: t, zone: d.Zone(), prec: PrecisionSecond}
}

// ZoneResolution is the outcome of the timezone cascade.
type ZoneResolution struct {
	Zone   TimeZoneValue
	Source string
}

// ResolveTimeZone picks the best available timezone for a file whose
// creation date resolved to date (dateOK false when undetermined). Each
// attempt is independent; the first success wins; failure of all of them
// leaves the timezone undetermined, which is a normal outcome.
//
// A fuzzy offset of exactly zero between the container's UTC clock and a
// camera-local clock is reported as ZoneForceLocal rather than Normal(0):
// the camera most likely has no timezone awareness at all, rather than
// genuinely sitting on UTC. This heuristic is kept as-is for compatibility.
func ResolveTimeZone(c Candidates, date DateValue, dateOK bool) (ZoneResolution, bool) {
	// 1. A previously embedded timezone tag is authoritative.
	if text, ok := c.Tags[TagTimeZone]; ok {
		if z, err := ParseTimeZone(text); err == nil {
			return ZoneResolution{Zone: z, Source: ZoneSourceTag}, true
		}
	}
	// 2. The external tool's maker-note timezone field.
	if c.ToolTimeZone != "" {
		if z, err := ParseTimeZone(c.ToolTimeZone); err == nil {
			return ZoneResolution{Zone: z, Source: ZoneSourceExternalTool}, true
		}
	}
	if c.ContainerCreated != nil {
		utc := c.ContainerCreated.Time()
		// 3. Container UTC vs external-tool local time.
		if c.ToolDateTime != nil {
			if off, ok := tryOffsetWithDuration(c.ToolDateTime.Time(), utc, c.Duration); ok {
				return ZoneResolution{Zone: offsetZone(off), Source: ZoneSourceContainerVsTool}, true
			}
		}
		// 4. Container UTC vs filename-derived local time.
		if c.FilenameDate != nil && c.FilenameDate.Precision() >= PrecisionSecond {
			if off, ok := tryOffsetWithDuration(c.FilenameDate.Time(), utc, c.Duration); ok {
				return ZoneResolution{Zone: offsetZone(off), Source: ZoneSourceContainerVsFilename}, true
			}
		}
		// 5–6. Container UTC vs file-system times. Only a zero offset is
		// trusted here: a file system storing local time as UTC is the one
		// reliable signal, while nonzero offsets say more about the copying
		// computer's clock than about the camera.
		if !c.FSCreated.IsZero() {
			if off, ok := tryOffsetWithDuration(wallClock(c.FSCreated), utc, c.Duration); ok && off == 0 {
				return ZoneResolution{Zone: TimeZoneValue{Kind: ZoneForceLocal}, Source: ZoneSourceContainerVsCreated}, true
			}
		}
		if !c.FSModified.IsZero() {
			if off, ok := tryOffsetWithDuration(wallClock(c.FSModified), utc, c.Duration); ok && off == 0 {
				return ZoneResolution{Zone: TimeZoneValue{Kind: ZoneForceLocal}, Source: ZoneSourceContainerVsModified}, true
			}
		}
	}
	// 7. A local-kind creation date with no UTC anchor at all defaults to
	// ForceLocal.
	if dateOK && !date.IsUTC() && c.ContainerCreated == nil {
		return ZoneResolution{Zone: TimeZoneValue{Kind: ZoneForceLocal}, Source: ZoneSourceLocalDefault}, true
	}
	return ZoneResolution{}, false
}

func offsetZone(offsetMinutes int) TimeZoneValue {
	if offsetMinutes == 0 {
		return TimeZoneValue{Kind: ZoneForceLocal}
	}
	return TimeZoneValue{Kind: ZoneNormal, OffsetMinutes: offsetMinutes}
}

// tryOffset infers the UTC offset separating a local wall clock from a UTC
// wall clock. It rejects differences beyond 24 hours outright, snaps the
// rest to the nearest half hour and rejects a residual above 60 seconds, so
// seconds-level clock drift passes while non-half-hour differences fail.
func tryOffset(local, utc time.Time) (int, bool) {
	diff := local.Sub(utc)
	if diff > offsetAbsTolerance || diff < -offsetAbsTolerance {
		return 0, false
	}
	rounded := diff.Round(offsetRounding)
	residual := diff - rounded
	if residual < 0 {
		residual = -residual
	}
	if residual > offsetResidualTolerance {
		return 0, false
	}
	return int(rounded / time.Minute), true
}

// tryOffsetWithDuration retries a failed direct match against the recording's
// end (and symmetric start) when the media duration is known, since different
// sources timestamp either the start or the end of a recording.
func tryOffsetWithDuration(local, utc time.Time, duration time.Duration) (int, bool) {
	if off, ok := tryOffset(local, utc); ok {
		return off, true
	}
	if duration <= 0 {
		return 0, false
	}
	if off, ok := tryOffset(local, utc.Add(duration)); ok {
		return off, true
	}
	return tryOffset(local, utc.Add(-duration))
}

// wallClock rebuilds t's local calendar fields in the UTC location so that
// field arithmetic against DateValue wall clocks is machine-zone independent.
func wallClock(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
