// Package differ provides functionality for comparing record sets and
// describing what a reconciliation changed.
package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/records"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a value was filled in where the destination had none.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a value replaced a different destination value.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a destination value was cleared.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a single column of a row.
type FieldChange struct {
	Column   string         `json:"column" yaml:"column"`
	OldValue string         `json:"old" yaml:"old"`
	NewValue string         `json:"new" yaml:"new"`
	Type     ChangeType     `json:"type" yaml:"type"`
	Side     authority.Side `json:"side,omitempty" yaml:"side,omitempty"` // side the new value came from
}

// RowAdd is a source row appended because its key was unknown.
type RowAdd struct {
	Key    string         `json:"key" yaml:"key"`
	Record records.Record `json:"-" yaml:"-"`
}

// RowUpdate is a destination row that received source values.
type RowUpdate struct {
	Key     string        `json:"key" yaml:"key"`
	Changes []FieldChange `json:"changes" yaml:"changes"`
}

// Changeset represents all changes a reconciliation applies to the destination.
type Changeset struct {
	Added      []RowAdd    `json:"added" yaml:"added"`
	Updated    []RowUpdate `json:"updated" yaml:"updated"`
	Unchanged  int         `json:"unchanged" yaml:"unchanged"`   // matched rows with nothing to apply
	Preserved  int         `json:"preserved" yaml:"preserved"`   // destination-only rows
	Duplicates []string    `json:"duplicates" yaml:"duplicates"` // keys seen more than once in the destination
	Summary    Summary     `json:"summary" yaml:"summary"`
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	RowsAdded     int `json:"rows_added" yaml:"rows_added"`
	RowsUpdated   int `json:"rows_updated" yaml:"rows_updated"`
	FieldsChanged int `json:"fields_changed" yaml:"fields_changed"`
	TotalChanges  int `json:"total_changes" yaml:"total_changes"`
}

// NewChangeset returns an empty changeset.
func NewChangeset() *Changeset {
	return &Changeset{
		Added:   []RowAdd{},
		Updated: []RowUpdate{},
	}
}

// Add records an appended row.
func (c *Changeset) Add(key string, rec records.Record) {
	c.Added = append(c.Added, RowAdd{Key: key, Record: rec})
	c.summarize()
}

// Update records the field changes applied to a matched row. A row with no
// changes only bumps the unchanged counter.
func (c *Changeset) Update(key string, changes []FieldChange) {
	if len(changes) == 0 {
		c.Unchanged++
		return
	}
	c.Updated = append(c.Updated, RowUpdate{Key: key, Changes: changes})
	c.summarize()
}

// Duplicate records a destination key seen more than once. Each key is
// reported once.
func (c *Changeset) Duplicate(key string) {
	for _, k := range c.Duplicates {
		if k == key {
			return
		}
	}
	c.Duplicates = append(c.Duplicates, key)
}

func (c *Changeset) summarize() {
	fields := 0
	for _, u := range c.Updated {
		fields += len(u.Changes)
	}
	c.Summary = Summary{
		RowsAdded:     len(c.Added),
		RowsUpdated:   len(c.Updated),
		FieldsChanged: fields,
		TotalChanges:  len(c.Added) + len(c.Updated),
	}
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c != nil && c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return !c.HasChanges()
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated (%d fields)", len(c.Updated), c.Summary.FieldsChanged))
	}
	if c.Preserved > 0 {
		parts = append(parts, fmt.Sprintf("%d preserved", c.Preserved))
	}
	return fmt.Sprintf("Changeset: %s (Total: %d changes)", strings.Join(parts, ", "), c.Summary.TotalChanges)
}

// Print writes a detailed, human-readable view of the changeset to w.
func (c *Changeset) Print(w io.Writer) {
	_, _ = fmt.Fprintln(w, c.String())
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	if len(c.Added) > 0 {
		_, _ = fmt.Fprintf(w, "\n➕ Added Rows (%d):\n", len(c.Added))
		for _, a := range c.Added {
			_, _ = fmt.Fprintf(w, "  • %s\n", a.Key)
		}
	}

	if len(c.Updated) > 0 {
		_, _ = fmt.Fprintf(w, "\n🔄 Updated Rows (%d):\n", len(c.Updated))
		for _, u := range c.Updated {
			_, _ = fmt.Fprintf(w, "  • %s:\n", u.Key)
			for _, change := range u.Changes {
				_, _ = fmt.Fprintf(w, "    - %s: %q → %q\n", change.Column, change.OldValue, change.NewValue)
			}
		}
	}

	if len(c.Duplicates) > 0 {
		_, _ = fmt.Fprintf(w, "\n⚠️  Duplicate Keys (%d):\n", len(c.Duplicates))
		for _, k := range c.Duplicates {
			_, _ = fmt.Fprintf(w, "  • %s\n", k)
		}
	}
}

// ApplyStrategy represents how to apply changes.
type ApplyStrategy string

const (
	// ApplyAdditive applies additions and updates.
	ApplyAdditive ApplyStrategy = "additive"

	// ApplyUpdatesOnly only applies updates to existing rows.
	ApplyUpdatesOnly ApplyStrategy = "updates-only"

	// ApplyAdditionsOnly only appends new rows.
	ApplyAdditionsOnly ApplyStrategy = "additions-only"
)

// Allows reports whether the strategy lets changes of the given kind through.
func (s ApplyStrategy) Allows(t ChangeType) bool {
	switch s {
	case ApplyUpdatesOnly:
		return t != ChangeTypeAdd
	case ApplyAdditionsOnly:
		return false
	default:
		return true
	}
}

// AllowsRows reports whether new rows may be appended.
func (s ApplyStrategy) AllowsRows() bool {
	return s != ApplyUpdatesOnly
}

// Filter filters the changeset based on the apply strategy.
func (c *Changeset) Filter(strategy ApplyStrategy) *Changeset {
	filtered := NewChangeset()
	filtered.Preserved = c.Preserved
	filtered.Duplicates = c.Duplicates
	filtered.Unchanged = c.Unchanged

	switch strategy {
	case ApplyAdditive:
		return c
	case ApplyUpdatesOnly:
		filtered.Updated = c.Updated
	case ApplyAdditionsOnly:
		filtered.Added = c.Added
		filtered.Unchanged += len(c.Updated)
	}

	filtered.summarize()
	return filtered
}
