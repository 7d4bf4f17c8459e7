package pkg

import "fmt"

// ErrBadTimeZone is returned when a timezone suffix cannot be parsed.
var ErrBadTimeZone = fmt.Errorf("unrecognized timezone text")

// ZoneKind classifies how a TimeZoneValue relates a stored instant to UTC.
type ZoneKind int

const (
	// ZoneUnknown means no timezone has been determined yet.
	ZoneUnknown ZoneKind = iota
	// ZoneNormal carries a concrete numeric UTC offset.
	ZoneNormal
	// ZoneForceLocal means the timezone is unknown and the instant should be
	// treated as already local to wherever it is interpreted.
	ZoneForceLocal
	// ZoneForceUtc means the instant is explicitly UTC. Offset zero by
	// definition, but semantically distinct from a Normal zero offset.
	ZoneForceUtc
)

// TimeZoneValue is an immutable timezone descriptor. OffsetMinutes is
// meaningful only when Kind is ZoneNormal.
type TimeZoneValue struct {
	Kind          ZoneKind
	OffsetMinutes int
}

// ParseTimeZone parses a textual UTC offset suffix: "Z", "+hh:mm", "-hh:mm",
// "+hh" or "-hh". An explicit zero offset ("Z", "+00:00", "-00") yields
// ZoneForceUtc. Absence of a suffix is not a parse failure; callers treat an
// absent suffix as ZoneForceLocal without calling ParseTimeZone.
func ParseTimeZone(s string) (TimeZoneValue, error) {
	if s == "Z" {
		return TimeZoneValue{Kind: ZoneForceUtc}, nil
	}
	if len(s) < 3 {
		return TimeZoneValue{}, fmt.Errorf("%w: %q", ErrBadTimeZone, s)
	}
	sign := 0
	switch s[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return TimeZoneValue{}, fmt.Errorf("%w: %q", ErrBadTimeZone, s)
	}
	hh, ok := twoDigits(s[1:3])
	if !ok || hh > 23 {
		return TimeZoneValue{}, fmt.Errorf("%w: %q", ErrBadTimeZone, s)
	}
	mm := 0
	switch {
	case len(s) == 3:
		// "+hh" form.
	case len(s) == 6 && s[3] == ':':
		mm, ok = twoDigits(s[4:6])
		if !ok || mm > 59 {
			return TimeZoneValue{}, fmt.Errorf("%w: %q", ErrBadTimeZone, s)
		}
	default:
		return TimeZoneValue{}, fmt.Errorf("%w: %q", ErrBadTimeZone, s)
	}
	minutes := sign * (hh*60 + mm)
	if minutes == 0 {
		return TimeZoneValue{Kind: ZoneForceUtc}, nil
	}
	return TimeZoneValue{Kind: ZoneNormal, OffsetMinutes: minutes}, nil
}

// Format renders the suffix form parsed by ParseTimeZone: "±hh:mm" for a
// Normal offset, "Z" for ForceUtc, and an empty string for ForceLocal and
// Unknown kinds.
func (z TimeZoneValue) Format() string {
	switch z.Kind {
	case ZoneNormal:
		off := z.OffsetMinutes
		sign := "+"
		if off < 0 {
			sign = "-"
			off = -off
		}
		return fmt.Sprintf("%s%02d:%02d", sign, off/60, off%60)
	case ZoneForceUtc:
		return "Z"
	default:
		return ""
	}
}

// String implements fmt.Stringer for logging.
func (z TimeZoneValue) String() string {
	if s := z.Format(); s != "" {
		return s
	}
	if z.Kind == ZoneForceLocal {
		return "local"
	}
	return "unknown"
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
