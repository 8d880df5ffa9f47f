package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingIntRe   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloatRe = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)
)

// LeadingInt parses the integer prefix of s, ignoring leading whitespace and
// anything after the digits: "4" -> 4, " 4 sets" -> 4, "4.5" -> 4.
// ok is false when s does not start with a number.
func LeadingInt(s string) (n int, ok bool) {
	m := leadingIntRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LeadingFloat parses the decimal prefix of s. A comma is accepted as the
// decimal separator: "102,5" -> 102.5, "60kg" -> 60.
func LeadingFloat(s string) (f float64, ok bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	m := leadingFloatRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
