package pkg

import "time"

// FilenameDate recovers a date embedded at the start of a media filename,
// e.g. "20210601_140000.mp4" or "2021-06-01T14.00.00.jpg". It accepts a run
// of up to 14 leading digits, tolerating '-', '.', '_' and 'T' separators
// between groups. Exactly 8 digits yield a day-precision date, exactly 14 a
// second-precision date and time; any other count is no match. Each field is
// range-validated. The result is a local-tagged wall clock with ZoneForceLocal.
func FilenameDate(name string) (DateValue, bool) {
	digits := make([]byte, 0, 14)
	i := 0
scan:
	for ; i < len(name) && len(digits) < 14; i++ {
		switch c := name[i]; {
		case isDigit(c):
			digits = append(digits, c)
		case c == '-' || c == '.' || c == '_' || c == 'T':
			// separator, keep scanning
		default:
			break scan
		}
	}
	if len(digits) != 8 && len(digits) != 14 {
		return DateValue{}, false
	}
	// A longer digit run is some other numbering scheme, not a timestamp.
	if i < len(name) && isDigit(name[i]) {
		return DateValue{}, false
	}
	num := func(s []byte) int {
		n := 0
		for _, c := range s {
			n = n*10 + int(c-'0')
		}
		return n
	}
	year := num(digits[0:4])
	month := num(digits[4:6])
	day := num(digits[6:8])
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return DateValue{}, false
	}
	hour, min, sec := 12, 0, 0
	prec := PrecisionDay
	if len(digits) == 14 {
		hour = num(digits[8:10])
		min = num(digits[10:12])
		sec = num(digits[12:14])
		if hour > 23 || min > 59 || sec > 59 {
			return DateValue{}, false
		}
		prec = PrecisionSecond
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	return DateValue{t: t, zone: TimeZoneValue{Kind: ZoneForceLocal}, prec: prec}, true
}
