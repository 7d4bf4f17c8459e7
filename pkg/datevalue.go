package pkg

import (
	"fmt"
	"strings"
	"time"
)

// ErrBadDateFormat is returned when a date string violates the expected
// "YYYY[-MM[-DD[THH[:MM[:SS[.fff]]]]]][offset]" grammar.
var ErrBadDateFormat = fmt.Errorf("unrecognized date format")

// Precision markers: the number of significant decimal digits of a
// timestamp, counted from the year. Sub-second precision runs from 15 (one
// fractional digit) to 21 (100-nanosecond ticks).
const (
	PrecisionYear   = 4
	PrecisionMonth  = 6
	PrecisionDay    = 8
	PrecisionHour   = 10
	PrecisionMinute = 12
	PrecisionSecond = 14
	PrecisionTicks  = 21
)

// MinStoredPrecision is the lowest precision worth persisting as a
// datePrecision inline tag. Year- and month-only dates are too coarse to be
// useful on retrieval.
const MinStoredPrecision = PrecisionDay

// DateValue is an immutable partial-precision timestamp. The calendar fields
// are held as a plain wall clock together with a disposition tag saying
// whether that wall clock is UTC or local; the stored time.Time is not a true
// universal instant until combined with the timezone. Fields beyond the
// precision boundary are normalized at construction (month and day to 1, hour
// to noon, minute/second/fraction to zero), so structural equality and
// formatting ignore them automatically.
type DateValue struct {
	t    time.Time // calendar fields, always held in the UTC location
	utc  bool      // fields are a UTC wall clock rather than a local one
	zone TimeZoneValue
	prec int
}

// NewDateValue builds a DateValue from calendar fields. The precision is
// clamped to [PrecisionYear, PrecisionTicks] and fields beyond it are reset
// to their defaults. Only the wall-clock fields of t are kept; its location
// is ignored in favor of the utc flag.
func NewDateValue(t time.Time, utc bool, zone TimeZoneValue, precision int) DateValue {
	if precision < PrecisionYear {
		precision = PrecisionYear
	}
	if precision > PrecisionTicks {
		precision = PrecisionTicks
	}
	return DateValue{t: normalizeFields(t, precision), utc: utc, zone: zone, prec: precision}
}

// normalizeFields rebuilds t in the UTC location with every field beyond the
// precision boundary replaced by its defaulted value.
func normalizeFields(t time.Time, precision int) time.Time {
	year := t.Year()
	month, day := int(t.Month()), t.Day()
	hour, min, sec := t.Hour(), t.Minute(), t.Second()
	nsec := t.Nanosecond()
	if precision < PrecisionMonth {
		month = 1
	}
	if precision < PrecisionDay {
		day = 1
	}
	if precision < PrecisionHour {
		hour = 12
	}
	if precision < PrecisionMinute {
		min = 0
	}
	if precision < PrecisionSecond {
		sec = 0
	}
	if precision <= PrecisionSecond {
		nsec = 0
	} else {
		// Truncate to the precision's fractional digit count, then to ticks.
		digits := precision - PrecisionSecond
		ticks := nsec / 100
		scale := 1
		for i := 0; i < 7-digits; i++ {
			scale *= 10
		}
		nsec = (ticks / scale) * scale * 100
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, nsec, time.UTC)
}

// Time returns the calendar fields as a time.Time in the UTC location. The
// location carries no meaning; consult IsUTC for the disposition.
func (d DateValue) Time() time.Time { return d.t }

// IsUTC reports whether the stored wall clock is tagged UTC.
func (d DateValue) IsUTC() bool { return d.utc }

// Zone returns the timezone descriptor.
func (d DateValue) Zone() TimeZoneValue { return d.zone }

// Precision returns the significant-digit marker.
func (d DateValue) Precision() int { return d.prec }

// WithZone returns a copy of d carrying the given timezone.
func (d DateValue) WithZone(zone TimeZoneValue) DateValue {
	d.zone = zone
	return d
}

// Equal reports structural equality of calendar fields, disposition,
// timezone and precision. Two values describing the same physical moment
// through different timezone kinds are not equal.
func (d DateValue) Equal(o DateValue) bool {
	return d.t.Equal(o.t) && d.utc == o.utc && d.zone == o.zone && d.prec == o.prec
}

// ToLocal converts a UTC-tagged wall clock to local using a Normal offset.
// Any other combination is returned unchanged.
func (d DateValue) ToLocal() DateValue {
	if d.zone.Kind == ZoneNormal && d.utc {
		d.t = d.t.Add(time.Duration(d.zone.OffsetMinutes) * time.Minute)
		d.utc = false
	}
	return d
}

// ToUtc is the inverse of ToLocal.
func (d DateValue) ToUtc() DateValue {
	if d.zone.Kind == ZoneNormal && !d.utc {
		d.t = d.t.Add(-time.Duration(d.zone.OffsetMinutes) * time.Minute)
		d.utc = true
	}
	return d
}

// ParseDate parses a partial-precision date string. Each level of the
// grammar is optional but requires every separator above it:
//
//	YYYY[-MM[-DD[THH[:MM[:SS[.fraction]]]]]][offset]
//
// A space is accepted in place of the 'T'. A trailing offset is handed to
// ParseTimeZone; its absence means ZoneForceLocal. Any structural violation
// fails with ErrBadDateFormat; no partial value is returned.
func ParseDate(s string) (DateValue, error) {
	fail := func() (DateValue, error) {
		return DateValue{}, fmt.Errorf("%w: %q", ErrBadDateFormat, s)
	}
	year, rest, ok := takeNumber(s, 4)
	if !ok || year < 1 {
		return fail()
	}
	prec := PrecisionYear
	month, day := 1, 1
	hour, min, sec := 12, 0, 0
	ticks := 0

	if strings.HasPrefix(rest, "-") {
		if month, rest, ok = takeNumber(rest[1:], 2); !ok || month < 1 || month > 12 {
			return fail()
		}
		prec = PrecisionMonth
		if strings.HasPrefix(rest, "-") {
			if day, rest, ok = takeNumber(rest[1:], 2); !ok || day < 1 || day > 31 {
				return fail()
			}
			prec = PrecisionDay
			if strings.HasPrefix(rest, "T") || strings.HasPrefix(rest, " ") {
				if hour, rest, ok = takeNumber(rest[1:], 2); !ok || hour > 23 {
					return fail()
				}
				prec = PrecisionHour
				if strings.HasPrefix(rest, ":") {
					if min, rest, ok = takeNumber(rest[1:], 2); !ok || min > 59 {
						return fail()
					}
					prec = PrecisionMinute
					if strings.HasPrefix(rest, ":") {
						if sec, rest, ok = takeNumber(rest[1:], 2); !ok || sec > 59 {
							return fail()
						}
						prec = PrecisionSecond
						if strings.HasPrefix(rest, ".") {
							var digits string
							digits, rest = takeDigits(rest[1:])
							if digits == "" {
								return fail()
							}
							prec = PrecisionSecond + len(digits)
							if prec > PrecisionTicks {
								prec = PrecisionTicks
							}
							ticks = fractionToTicks(digits)
						}
					}
				}
			}
		}
	}

	zone := TimeZoneValue{Kind: ZoneForceLocal}
	utc := false
	if rest != "" {
		z, err := ParseTimeZone(rest)
		if err != nil {
			return fail()
		}
		zone = z
		utc = z.Kind == ZoneForceUtc
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, ticks*100, time.UTC)
	return DateValue{t: t, utc: utc, zone: zone, prec: prec}, nil
}

// Format is the inverse of ParseDate: it emits only the components implied by
// the precision, zero-padded and culture-invariant, then the timezone suffix
// for Normal and ForceUtc kinds. A UTC-tagged wall clock with a Normal zone
// is rendered in local time, so formatting normalizes such values to their
// local representation; this is a documented quirk of the format, kept for
// compatibility, and is applied to a copy rather than the receiver.
func (d DateValue) Format() string {
	v := d.ToLocal()
	var b strings.Builder
	fmt.Fprintf(&b, "%04d", v.t.Year())
	if v.prec >= PrecisionMonth {
		fmt.Fprintf(&b, "-%02d", int(v.t.Month()))
	}
	if v.prec >= PrecisionDay {
		fmt.Fprintf(&b, "-%02d", v.t.Day())
	}
	if v.prec >= PrecisionHour {
		fmt.Fprintf(&b, "T%02d", v.t.Hour())
	}
	if v.prec >= PrecisionMinute {
		fmt.Fprintf(&b, ":%02d", v.t.Minute())
	}
	if v.prec >= PrecisionSecond {
		fmt.Fprintf(&b, ":%02d", v.t.Second())
	}
	if v.prec > PrecisionSecond {
		frac := fmt.Sprintf("%07d", v.t.Nanosecond()/100)
		fmt.Fprintf(&b, ".%s", frac[:v.prec-PrecisionSecond])
	}
	if v.zone.Kind == ZoneNormal || v.zone.Kind == ZoneForceUtc {
		b.WriteString(v.zone.Format())
	}
	return b.String()
}

// String implements fmt.Stringer.
func (d DateValue) String() string { return d.Format() }

// takeNumber consumes exactly width leading digits of s.
func takeNumber(s string, width int) (int, string, bool) {
	if len(s) < width {
		return 0, s, false
	}
	n := 0
	for i := 0; i < width; i++ {
		if !isDigit(s[i]) {
			return 0, s, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, s[width:], true
}

// takeDigits consumes every leading digit of s.
func takeDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// fractionToTicks scales a fractional-second digit string to 100ns ticks,
// truncating anything finer.
func fractionToTicks(digits string) int {
	if len(digits) > 7 {
		digits = digits[:7]
	}
	n := 0
	for i := 0; i < len(digits); i++ {
		n = n*10 + int(digits[i]-'0')
	}
	for i := len(digits); i < 7; i++ {
		n *= 10
	}
	return n
}
