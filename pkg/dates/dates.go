// Package dates parses the designated date column of a record set into
// comparable values. Each record set carries its own candidate formats; a
// value that matches none of them becomes Invalid instead of failing the run.
package dates

import (
	"strings"
	"time"
)

// Date is a parsed date, or the Invalid marker.
type Date struct {
	t     time.Time
	valid bool
}

// Invalid is the marker for a value that did not parse.
var Invalid = Date{}

// Of wraps t as a valid Date.
func Of(t time.Time) Date {
	return Date{t: t, valid: true}
}

// Valid reports whether d holds a parsed date.
func (d Date) Valid() bool {
	return d.valid
}

// Time returns the underlying time; the zero time for Invalid.
func (d Date) Time() time.Time {
	return d.t
}

// Compare orders valid dates chronologically. Invalid sorts before every
// valid date here; callers that want invalid-last handle it themselves.
func (d Date) Compare(other Date) int {
	switch {
	case d.valid && other.valid:
		return d.t.Compare(other.t)
	case d.valid:
		return 1
	case other.valid:
		return -1
	default:
		return 0
	}
}

// Format renders d with layout; Invalid renders as the empty string.
func (d Date) Format(layout string) string {
	if !d.valid {
		return ""
	}
	return d.t.Format(Layout(layout))
}

// Parse tries each format in order and returns the first successful parse.
func Parse(raw string, formats []string) Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Invalid
	}
	for _, f := range formats {
		if t, err := time.Parse(Layout(f), s); err == nil {
			return Of(t)
		}
	}
	return Invalid
}

// Normalizer parses dates for one record set.
type Normalizer struct {
	formats []string
}

// NewNormalizer creates a Normalizer trying formats in order.
func NewNormalizer(formats ...string) *Normalizer {
	return &Normalizer{formats: formats}
}

// Parse parses raw with the normalizer's formats.
func (n *Normalizer) Parse(raw string) Date {
	return Parse(raw, n.formats)
}

// Formats returns the candidate formats.
func (n *Normalizer) Formats() []string {
	return n.formats
}

// strftime directives accepted in configuration, mapped to Go layout tokens.
var directives = map[byte]string{
	'd': "02",
	'm': "01",
	'Y': "2006",
	'y': "06",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'%': "%",
}

// Layout converts a strftime-style pattern ("%d/%m/%Y") to a Go layout.
// Patterns without '%' are returned unchanged and treated as Go layouts.
func Layout(pattern string) string {
	if !strings.Contains(pattern, "%") {
		return pattern
	}
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 == len(pattern) {
			b.WriteByte(c)
			continue
		}
		if tok, ok := directives[pattern[i+1]]; ok {
			b.WriteString(tok)
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ValidLayout reports whether pattern renders and parses a reference date
// back to itself, catching typos such as "%d/%m/%" before a run starts.
func ValidLayout(pattern string) bool {
	layout := Layout(pattern)
	ref := time.Date(2024, time.February, 1, 13, 4, 5, 0, time.UTC)
	text := ref.Format(layout)
	if text == layout {
		return false
	}
	_, err := time.Parse(layout, text)
	return err == nil
}
