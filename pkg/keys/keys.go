// Package keys derives natural join keys from records.
//
// A key is a structured tuple of part values rather than a concatenated
// string, so ("AB", "C") and ("A", "BC") never collide.
package keys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/records"
)

// Part selects one component of a key.
type Part struct {
	// Column is the record column the part reads.
	Column string `yaml:"column" json:"column" mapstructure:"column"`

	// Delimiter, when set, splits the column value and keeps the segment at
	// Index, e.g. the invoice number before "|" in "INV-1|2024".
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty" mapstructure:"delimiter"`
	Index     int    `yaml:"index,omitempty" json:"index,omitempty" mapstructure:"index"`
}

// Spec describes how a key is built: a single column or an ordered list of parts.
type Spec struct {
	Parts []Part `yaml:"parts" json:"parts" mapstructure:"parts"`
}

// Single returns a Spec keyed on one column.
func Single(column string) Spec {
	return Spec{Parts: []Part{{Column: column}}}
}

// Composite returns a Spec that combines the given columns in order.
func Composite(columns ...string) Spec {
	parts := make([]Part, len(columns))
	for i, c := range columns {
		parts[i] = Part{Column: c}
	}
	return Spec{Parts: parts}
}

// Columns returns the columns the spec reads, in part order.
func (s Spec) Columns() []string {
	cols := make([]string, len(s.Parts))
	for i, p := range s.Parts {
		cols[i] = p.Column
	}
	return cols
}

// String renders the spec for logs, e.g. "Raptor Invoice[|0]+Grainger SKU".
func (s Spec) String() string {
	parts := make([]string, len(s.Parts))
	for i, p := range s.Parts {
		if p.Delimiter != "" {
			parts[i] = fmt.Sprintf("%s[%s%d]", p.Column, p.Delimiter, p.Index)
		} else {
			parts[i] = p.Column
		}
	}
	return strings.Join(parts, "+")
}

// Validate checks the spec is usable.
func (s Spec) Validate() error {
	if len(s.Parts) == 0 {
		return errors.NewConfigError("key", "key spec has no parts", nil)
	}
	for i, p := range s.Parts {
		if strings.TrimSpace(p.Column) == "" {
			return errors.NewConfigError("key", fmt.Sprintf("part %d has no column", i), nil)
		}
		if p.Index < 0 {
			return errors.NewConfigError("key", fmt.Sprintf("part %d (%s) has negative index", i, p.Column), nil)
		}
	}
	return nil
}

// Missing returns the spec columns absent from the given column list.
func (s Spec) Missing(columns []string) []string {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	var missing []string
	for _, c := range s.Columns() {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Key is an ordered tuple of key part values.
type Key []string

// Extract derives the key of r. A null column contributes the empty string.
func (s Spec) Extract(r records.Record) Key {
	k := make(Key, len(s.Parts))
	for i, p := range s.Parts {
		k[i] = p.value(r)
	}
	return k
}

func (p Part) value(r records.Record) string {
	text, ok := r.Get(p.Column).Get()
	if !ok {
		return ""
	}
	if p.Delimiter != "" {
		segments := strings.Split(text, p.Delimiter)
		if p.Index >= len(segments) {
			return ""
		}
		text = segments[p.Index]
	}
	return strings.TrimSpace(text)
}

// ID returns an unambiguous string form of the tuple, usable as a map key.
func (k Key) ID() string {
	var b strings.Builder
	for i, part := range k {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(part))
	}
	return b.String()
}

// Concat joins the parts with no separator. It is only a display form: the
// derived key column written back to the sheet uses it.
func (k Key) Concat() string {
	return strings.Join(k, "")
}

// IsBlank reports whether every part is empty.
func (k Key) IsBlank() bool {
	for _, part := range k {
		if part != "" {
			return false
		}
	}
	return true
}

// Compare orders keys part by part.
func (k Key) Compare(other Key) int {
	for i := 0; i < len(k) && i < len(other); i++ {
		if c := strings.Compare(k[i], other[i]); c != 0 {
			return c
		}
	}
	return len(k) - len(other)
}

// String implements fmt.Stringer.
func (k Key) String() string {
	if len(k) == 1 {
		return k[0]
	}
	return "(" + strings.Join(k, ", ") + ")"
}
