// Package records defines the tabular data model shared by every stage of the
// pipeline: nullable cell values, records keyed by column name, and ordered
// record sets that carry their column order.
package records

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Value is a cell value: either a string or null.
type Value struct {
	text  string
	valid bool
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// String returns a non-null value holding s, even when s is empty.
func String(s string) Value {
	return Value{text: s, valid: true}
}

// Parse converts raw cell text to a Value. Text is NFC-normalized and trimmed;
// blank text becomes null, matching the persisted layout where an empty cell
// denotes null.
func Parse(raw string) Value {
	s := CleanText(raw)
	if s == "" {
		return Null()
	}
	return String(s)
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return !v.valid
}

// Get returns the string and whether the value is non-null.
func (v Value) Get() (string, bool) {
	return v.text, v.valid
}

// Text renders the value for persistence; null renders as the empty string.
func (v Value) Text() string {
	return v.text
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if !v.valid {
		return "<null>"
	}
	return v.text
}

// Or returns v when it is non-null and fallback otherwise.
func (v Value) Or(fallback Value) Value {
	if v.valid {
		return v
	}
	return fallback
}

// CleanText NFC-normalizes and trims cell or header text so visually equal
// strings compare equal regardless of how the exporting system encoded them.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Record maps column names to values. Column order lives on the RecordSet.
type Record map[string]Value

// Get returns the value for column, null when the column is absent.
func (r Record) Get(column string) Value {
	return r[column]
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether r and other hold the same values for columns.
func (r Record) Equal(other Record, columns []string) bool {
	for _, c := range columns {
		if r.Get(c) != other.Get(c) {
			return false
		}
	}
	return true
}

// RecordSet is an ordered sequence of records sharing one column list.
type RecordSet struct {
	Columns []string
	Records []Record
}

// New creates an empty RecordSet with the given columns.
func New(columns ...string) RecordSet {
	return RecordSet{Columns: slices.Clone(columns)}
}

// Len returns the number of records.
func (s RecordSet) Len() int {
	return len(s.Records)
}

// IsEmpty reports whether the set has neither columns nor records. An empty
// set is what a brand new destination reads back as.
func (s RecordSet) IsEmpty() bool {
	return len(s.Columns) == 0 && len(s.Records) == 0
}

// HasColumn reports whether column is part of the set's column list.
func (s RecordSet) HasColumn(column string) bool {
	return slices.Contains(s.Columns, column)
}

// Append adds a record to the set.
func (s *RecordSet) Append(r Record) {
	s.Records = append(s.Records, r)
}

// Column returns the values of one column in record order.
func (s RecordSet) Column(column string) []Value {
	out := make([]Value, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Get(column)
	}
	return out
}

// FromRows builds a RecordSet from a header row and data rows, the way a
// spreadsheet or CSV file presents them. Short rows are padded with null, cells
// beyond the header are ignored, and duplicate header names keep the first
// occurrence.
func FromRows(header []string, rows [][]string) RecordSet {
	columns := make([]string, 0, len(header))
	index := make([]int, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := CleanText(h)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, name)
		index = append(index, i)
	}

	set := RecordSet{Columns: columns, Records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		rec := make(Record, len(columns))
		for j, col := range columns {
			if idx := index[j]; idx < len(row) {
				rec[col] = Parse(row[idx])
			} else {
				rec[col] = Null()
			}
		}
		set.Records = append(set.Records, rec)
	}
	return set
}

// Rows renders the set as text rows in column order, header first. Null
// renders as the empty string.
func (s RecordSet) Rows() [][]string {
	out := make([][]string, 0, len(s.Records)+1)
	out = append(out, slices.Clone(s.Columns))
	for _, r := range s.Records {
		row := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			row[i] = r.Get(c).Text()
		}
		out = append(out, row)
	}
	return out
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
