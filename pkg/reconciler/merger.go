package reconciler

import (
	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/dates"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/schema"
)

// Merger resolves the field values of a matched source/destination pair.
type Merger interface {
	// Rows merges one matched pair and reports which side supplied each
	// column.
	Rows(source, destination Row) (Row, map[string]authority.Side)
}

// merger implements column-wise field resolution.
type merger struct {
	schema   schema.Schema
	strategy Strategy
}

// newMerger creates a merger for s that asks strategy for column preferences.
func newMerger(s schema.Schema, strategy Strategy) Merger {
	return &merger{schema: s, strategy: strategy}
}

// Rows resolves every column: the preferred side's non-null value wins,
// otherwise the other side's value is used. The date column prefers a value
// that parsed over one that did not.
func (m *merger) Rows(src, dst Row) (Row, map[string]authority.Side) {
	merged := Row{
		Record: make(records.Record, len(m.schema.Columns)),
		Key:    dst.Key,
		Date:   dst.Date,
		Origin: OriginMatched,
	}
	sides := make(map[string]authority.Side, len(m.schema.Columns))

	for _, col := range m.schema.Columns {
		pref := m.strategy.Preferred(col)
		if m.schema.HasDate() && col == m.schema.Date.Column {
			value, date, side := resolveDate(pref, src, dst, col)
			merged.Record[col] = value
			merged.Date = date
			sides[col] = side
			continue
		}
		value, side := resolve(pref, src.Record.Get(col), dst.Record.Get(col))
		merged.Record[col] = value
		sides[col] = side
	}
	return merged, sides
}

// resolve picks the preferred side's value unless it is null.
func resolve(pref authority.Side, src, dst records.Value) (records.Value, authority.Side) {
	first, second := src, dst
	if pref == authority.SideDestination {
		first, second = dst, src
	}
	if !first.IsNull() {
		return first, pref
	}
	return second, pref.Other()
}

// resolveDate applies resolve to parsed dates first, falling back to the raw
// text when neither side parsed.
func resolveDate(pref authority.Side, src, dst Row, col string) (records.Value, dates.Date, authority.Side) {
	first, second := src, dst
	if pref == authority.SideDestination {
		first, second = dst, src
	}
	switch {
	case first.Date.Valid():
		return first.Record.Get(col), first.Date, pref
	case second.Date.Valid():
		return second.Record.Get(col), second.Date, pref.Other()
	}
	value, side := resolve(pref, src.Record.Get(col), dst.Record.Get(col))
	return value, dates.Invalid, side
}
