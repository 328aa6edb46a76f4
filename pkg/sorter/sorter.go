// Package sorter orders reconciled rows for write-back: newest date first,
// then the tie-break column and the key ascending. Rows without a valid date
// go last and keep their relative order.
package sorter

import (
	"slices"
	"strings"

	"github.com/agentstation/eccnsync/pkg/reconciler"
	"github.com/agentstation/eccnsync/pkg/schema"
)

type options struct {
	tieBreak    string
	dropInvalid bool
}

// Option configures a sort.
type Option func(*options)

// WithTieBreak sets the column compared when dates are equal. The key is
// always the final tie-break.
func WithTieBreak(column string) Option {
	return func(o *options) {
		o.tieBreak = column
	}
}

// WithDropInvalidDates removes rows whose date did not parse.
func WithDropInvalidDates(drop bool) Option {
	return func(o *options) {
		o.dropInvalid = drop
	}
}

// FromSchema returns the options a schema configures.
func FromSchema(s schema.Schema) []Option {
	return []Option{
		WithTieBreak(s.TieBreak),
		WithDropInvalidDates(s.DropInvalidDates && s.HasDate()),
	}
}

// Sort returns rows in write-back order. The input slice is not modified.
// The order is total and deterministic for any permutation of valid-dated
// rows; rows with invalid dates keep their input order.
func Sort(rows reconciler.Rows, opts ...Option) reconciler.Rows {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	out := make(reconciler.Rows, 0, len(rows))
	for _, row := range rows {
		if o.dropInvalid && !row.Date.Valid() {
			continue
		}
		out = append(out, row)
	}

	slices.SortStableFunc(out, func(a, b reconciler.Row) int {
		return compare(a, b, o.tieBreak)
	})
	return out
}

func compare(a, b reconciler.Row, tieBreak string) int {
	av, bv := a.Date.Valid(), b.Date.Valid()
	switch {
	case !av && !bv:
		return 0
	case !av:
		return 1
	case !bv:
		return -1
	}

	// descending
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	if tieBreak != "" {
		if c := compareText(a, b, tieBreak); c != 0 {
			return c
		}
	}
	return a.Key.Compare(b.Key)
}

// compareText orders a column ascending with null after every value.
func compareText(a, b reconciler.Row, column string) int {
	at, aok := a.Record.Get(column).Get()
	bt, bok := b.Record.Get(column).Get()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	return strings.Compare(at, bt)
}
