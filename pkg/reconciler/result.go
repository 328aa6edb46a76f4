package reconciler

import (
	"fmt"
	"slices"
	"time"

	"github.com/agentstation/eccnsync/pkg/dates"
	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/keys"
	"github.com/agentstation/eccnsync/pkg/records"
)

// Origin tells where an output row came from.
type Origin string

const (
	// OriginDestination is a destination row passed through unchanged.
	OriginDestination Origin = "destination"
	// OriginMatched is a destination row merged with its source counterpart.
	OriginMatched Origin = "matched"
	// OriginSource is a source row appended because its key was unknown.
	OriginSource Origin = "source"
)

// Row is one reconciled record with its key and parsed date.
type Row struct {
	Record records.Record
	Key    keys.Key
	Date   dates.Date
	Origin Origin
}

// Rows is an ordered slice of reconciled rows.
type Rows []Row

// RecordSet converts rows back to a record set over columns.
func (rs Rows) RecordSet(columns []string) records.RecordSet {
	set := records.RecordSet{
		Columns: slices.Clone(columns),
		Records: make([]records.Record, len(rs)),
	}
	for i, row := range rs {
		set.Records[i] = row.Record
	}
	return set
}

// Result represents the outcome of a reconciliation operation.
type Result struct {
	Columns   []string
	Rows      Rows
	Changeset *differ.Changeset
	Metadata  ResultMetadata
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Strategy  Strategy
	Stats     ResultStatistics
}

// ResultStatistics contains statistics about the reconciliation.
type ResultStatistics struct {
	SourceRows               int `json:"source_rows" yaml:"source_rows"`
	DestinationRows          int `json:"destination_rows" yaml:"destination_rows"`
	Matched                  int `json:"matched" yaml:"matched"`
	Updated                  int `json:"updated" yaml:"updated"`
	Added                    int `json:"added" yaml:"added"`
	Preserved                int `json:"preserved" yaml:"preserved"`
	DuplicateSourceKeys      int `json:"duplicate_source_keys" yaml:"duplicate_source_keys"`
	DuplicateDestinationKeys int `json:"duplicate_destination_keys" yaml:"duplicate_destination_keys"`
	InvalidDates             int `json:"invalid_dates" yaml:"invalid_dates"`
}

// NewResult creates a new result with defaults.
func NewResult(columns []string) *Result {
	return &Result{
		Columns:   slices.Clone(columns),
		Rows:      Rows{},
		Changeset: differ.NewChangeset(),
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

func (r *Result) finish(end time.Time) {
	r.Metadata.EndTime = end
	r.Metadata.Duration = end.Sub(r.Metadata.StartTime)
}

// HasChanges returns true if any changes were detected.
func (r *Result) HasChanges() bool {
	return r.Metadata.Stats.Added > 0 || r.Metadata.Stats.Updated > 0
}

// RecordSet returns the reconciled rows as a record set in current order.
func (r *Result) RecordSet() records.RecordSet {
	return r.Rows.RecordSet(r.Columns)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	st := r.Metadata.Stats
	if !r.HasChanges() {
		return fmt.Sprintf("Reconciliation completed. No changes detected (%d rows).", len(r.Rows))
	}
	return fmt.Sprintf("Reconciliation completed. %d added, %d updated, %d preserved (%d rows).",
		st.Added, st.Updated, st.Preserved, len(r.Rows))
}
