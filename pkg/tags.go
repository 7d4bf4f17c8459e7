package pkg

import (
	"regexp"
	"sort"
	"strings"
)

// Recognized inline tag keys. Unknown keys already present in a text field
// are always passed through untouched.
const (
	TagTimeZone         = "timezone"
	TagDatePrecision    = "datePrecision"
	TagOriginalFilename = "originalFilename"
	TagUUID             = "uuid"
)

// tagPattern matches one inline "&key=value" tag. The key is a run of
// Unicode word characters (letters, marks, decimal digits, connector
// punctuation). The value is either a run of non-whitespace non-quote
// characters or one or more back-to-back quoted segments, each free of bare
// quotes. Compiled once; read-only for the process lifetime.
var tagPattern = regexp.MustCompile(`&([\p{L}\p{M}\p{Nd}\p{Pc}]+)=((?:"[^"]*")+|[^\s"]+)`)

// EncodeTag renders a single inline tag. The value is wrapped in quotes with
// embedded quotes doubled iff it contains ASCII whitespace or a quote;
// otherwise it is emitted verbatim.
func EncodeTag(key, value string) string {
	return "&" + key + "=" + encodeTagValue(value)
}

func encodeTagValue(value string) string {
	if !needsQuoting(value) {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func needsQuoting(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] == '"' || isASCIISpace(value[i]) {
			return true
		}
	}
	return false
}

// DecodeTagValue reverses encodeTagValue on a raw value token: a quoted
// token is stripped of its surrounding quotes and doubled quotes collapse to
// one; anything else is returned unchanged.
func DecodeTagValue(raw string) string {
	if len(raw) < 2 || raw[0] != '"' {
		return raw
	}
	return strings.ReplaceAll(raw[1:len(raw)-1], `""`, `"`)
}

// ParseTags scans free text for inline tags and returns the decoded mapping.
// The first occurrence of a key wins; later duplicates are the ones the
// embedder drops.
func ParseTags(text string) map[string]string {
	tags := make(map[string]string)
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		key := m[1]
		if _, seen := tags[key]; seen {
			continue
		}
		tags[key] = DecodeTagValue(m[2])
	}
	return tags
}

// EmbedTags reconciles the inline tags embedded in text against desired and
// returns the updated text. A desired entry with a nil value removes the
// tag; a differing value replaces it in place; an identical value (or a key
// absent from desired) leaves the original span untouched. Duplicate
// occurrences of a key are removed. Keys from desired never seen in the text
// are appended at the end, sorted case-insensitively. Text around tags is
// copied through verbatim, and the operation is idempotent: re-running it
// with the same desired map on its own output changes nothing.
func EmbedTags(text string, desired map[string]*string) string {
	var out strings.Builder
	handled := make(map[string]bool)
	last := 0
	for _, m := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		key := text[m[2]:m[3]]
		raw := text[m[4]:m[5]]
		out.WriteString(text[last:start])
		last = end

		want, present := desired[key]
		switch {
		case handled[key] || (present && want == nil):
			// Remove the span and repair the surrounding whitespace: trim
			// what was already emitted, swallow the whitespace run that
			// followed the span, and keep exactly one space between the
			// remaining neighbors.
			trimmed := trimTrailingSpace(out.String())
			out.Reset()
			out.WriteString(trimmed)
			for last < len(text) && isASCIISpace(text[last]) {
				last++
			}
			if trimmed != "" && last < len(text) {
				out.WriteString(" ")
			}
		case present && *want != DecodeTagValue(raw):
			out.WriteString(EncodeTag(key, *want))
		default:
			out.WriteString(text[start:end])
		}
		handled[key] = true
	}
	out.WriteString(text[last:])

	var missing []string
	for key, want := range desired {
		if want != nil && !handled[key] {
			missing = append(missing, key)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		a, b := strings.ToLower(missing[i]), strings.ToLower(missing[j])
		if a != b {
			return a < b
		}
		return missing[i] < missing[j]
	})
	result := out.String()
	for _, key := range missing {
		if result != "" && !isASCIISpace(result[len(result)-1]) {
			result += " "
		}
		result += EncodeTag(key, *desired[key])
	}
	return result
}

func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func trimTrailingSpace(s string) string {
	return strings.TrimRight(s, " \t\n\v\f\r")
}
