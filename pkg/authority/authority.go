// Package authority decides which side of a reconciliation owns each column.
// By default the source wins whenever it has a value; columns the team edits
// by hand (remarks, compliance codes) can be handed to the destination.
package authority

import (
	"path/filepath"
	"slices"
)

// Side identifies one of the two record sets being reconciled.
type Side string

const (
	// SideSource is the freshly fetched export.
	SideSource Side = "source"
	// SideDestination is the persisted working copy.
	SideDestination Side = "destination"
)

// IsValid reports whether s names a known side.
func (s Side) IsValid() bool {
	return s == SideSource || s == SideDestination
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideDestination {
		return SideSource
	}
	return SideDestination
}

// Authority determines which side is authoritative for each column.
type Authority interface {
	// Find returns the authority configuration for a column, nil when none matches
	Find(column string) *Field

	// Preferred returns the side whose non-null value wins for column
	Preferred(column string) Side

	// List returns all configured authorities
	List() []Field
}

// Field defines side priority for a column or column pattern.
type Field struct {
	Column   string `json:"column" yaml:"column" mapstructure:"column"`       // e.g. "Remarks", "CRM *"
	Side     Side   `json:"side" yaml:"side" mapstructure:"side"`             // Which side is authoritative
	Priority int    `json:"priority" yaml:"priority" mapstructure:"priority"` // Higher wins when patterns overlap
}

type authorities struct {
	fields []Field
}

// New creates an Authority from the given fields. With no fields every
// column prefers the source.
func New(fields ...Field) Authority {
	return &authorities{fields: slices.Clone(fields)}
}

// Find returns the authority configuration for a specific column
func (a *authorities) Find(column string) *Field {
	return ByColumn(column, a.fields)
}

// Preferred returns the winning side for column.
func (a *authorities) Preferred(column string) Side {
	if f := a.Find(column); f != nil && f.Side.IsValid() {
		return f.Side
	}
	return SideSource
}

// List returns all authorities
func (a *authorities) List() []Field {
	return slices.Clone(a.fields)
}

// ByColumn returns the highest priority authority for a column
func ByColumn(column string, fields []Field) *Field {
	var bestMatch *Field
	bestPriority := 0
	bestLength := -1

	for i, f := range fields {
		if !MatchesPattern(column, f.Column) {
			continue
		}
		// Prioritize by: 1) priority, 2) pattern specificity (length), 3) order
		length := len(f.Column)
		if bestMatch == nil || f.Priority > bestPriority ||
			(f.Priority == bestPriority && length > bestLength) {
			bestMatch = &fields[i]
			bestPriority = f.Priority
			bestLength = length
		}
	}

	return bestMatch
}

// MatchesPattern checks if a column matches a pattern (supports * wildcards)
func MatchesPattern(column, pattern string) bool {
	if column == pattern {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(column) >= len(prefix) && column[:len(prefix)] == prefix
	}

	matched, err := filepath.Match(pattern, column)
	if err != nil {
		return false
	}
	return matched
}

// FilterBySide returns only the authorities for a specific side
func FilterBySide(fields []Field, side Side) []Field {
	var filtered []Field
	for _, f := range fields {
		if f.Side == side {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
