// Package reconciler joins a freshly fetched source record set onto the
// persisted destination set. Matched rows receive source values column by
// column, destination-only rows survive untouched and unknown source rows are
// appended. The result is not yet sorted; see package sorter.
package reconciler

import (
	"context"
	"time"

	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/dates"
	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/logging"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/schema"
)

// Reconciler is the main interface for reconciling a source set into a
// destination set.
type Reconciler interface {
	// Reconcile is pure with respect to its inputs: it performs no I/O and
	// does not modify source or destination.
	Reconcile(ctx context.Context, source, destination records.RecordSet) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	schema   schema.Schema
	strategy Strategy
	merger   Merger
	differ   differ.Differ
	tracking bool
}

// New creates a Reconciler for s. The schema is validated up front so a bad
// job definition fails before anything is fetched.
func New(s schema.Schema, opts ...Option) (Reconciler, error) {
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	options, err := newOptions(s, opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		schema:   s,
		strategy: options.strategy,
		merger:   newMerger(s, options.strategy),
		differ:   differ.New(options.differOpts...),
		tracking: options.tracking,
	}, nil
}

// Reconcile performs the left outer join of destination onto source.
func (r *reconciler) Reconcile(ctx context.Context, source, destination records.RecordSet) (*Result, error) {
	logger := logging.FromContext(ctx)
	s := r.schema
	result := NewResult(s.Columns)
	result.Metadata.Strategy = r.strategy

	// Step 1: Source-side transforms, then fail fast on missing key columns
	prepared := s.PrepareSource(source)
	if err := validateKeyColumns(s, prepared, destination); err != nil {
		return nil, err
	}

	// Step 2: Force both sides onto the schema and parse dates per side
	srcRows := r.rows(s.Normalize(prepared), dates.NewNormalizer(s.Date.SourceFormats...), OriginSource)
	dstRows := r.rows(s.Normalize(destination), dates.NewNormalizer(s.Date.DestinationFormats...), OriginDestination)
	result.Metadata.Stats.SourceRows = len(srcRows)
	result.Metadata.Stats.DestinationRows = len(dstRows)

	// Step 3: Index both sides
	srcIndex := r.indexSource(srcRows, result)
	dstTarget, dstKeys := r.indexDestination(dstRows, result)

	logger.Debug().
		Int("source_rows", len(srcRows)).
		Int("destination_rows", len(dstRows)).
		Int("source_keys", len(srcIndex)).
		Int("destination_keys", len(dstKeys)).
		Str("strategy", r.strategy.Type().String()).
		Msg("Indexed record sets")

	// Step 4: Walk the destination in order, merging matched rows
	apply := r.strategy.ApplyStrategy()
	for i, dst := range dstRows {
		id := dst.Key.ID()
		si, matched := srcIndex[id]
		switch {
		case !matched:
			result.Rows = append(result.Rows, dst)
			result.Changeset.Preserved++
			result.Metadata.Stats.Preserved++
		case dstTarget[id] != i:
			// leftover duplicate; receives no source update
			result.Rows = append(result.Rows, dst)
		case !apply.Allows(differ.ChangeTypeUpdate):
			result.Rows = append(result.Rows, dst)
			result.Metadata.Stats.Matched++
			if r.tracking {
				result.Changeset.Update(dst.Key.String(), nil)
			}
		default:
			merged, sides := r.merger.Rows(srcRows[si], dst)
			result.Rows = append(result.Rows, merged)
			result.Metadata.Stats.Matched++

			changes := r.differ.Records(dst.Record, merged.Record, s.Columns)
			for j := range changes {
				changes[j].Side = sides[changes[j].Column]
			}
			if len(changes) > 0 {
				result.Metadata.Stats.Updated++
			}
			if r.tracking {
				result.Changeset.Update(dst.Key.String(), changes)
			}
		}
	}

	// Step 5: Append source rows whose key the destination lacks, as-is
	if apply.AllowsRows() {
		for _, src := range srcRows {
			if dstKeys[src.Key.ID()] {
				continue
			}
			result.Rows = append(result.Rows, src)
			result.Metadata.Stats.Added++
			if r.tracking {
				result.Changeset.Add(src.Key.String(), src.Record)
			}
		}
	}

	if s.HasDate() {
		for _, row := range result.Rows {
			if !row.Date.Valid() {
				result.Metadata.Stats.InvalidDates++
			}
		}
	}

	result.finish(time.Now())
	logger.Info().
		Int("matched", result.Metadata.Stats.Matched).
		Int("updated", result.Metadata.Stats.Updated).
		Int("added", result.Metadata.Stats.Added).
		Int("preserved", result.Metadata.Stats.Preserved).
		Int("duplicate_source_keys", result.Metadata.Stats.DuplicateSourceKeys).
		Int("duplicate_destination_keys", result.Metadata.Stats.DuplicateDestinationKeys).
		Int("invalid_dates", result.Metadata.Stats.InvalidDates).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciled record sets")

	return result, nil
}

// rows extracts keys and parses the date column of a normalized set. Valid
// dates are rewritten in the output format so both sides compare as text;
// invalid ones keep their raw text.
func (r *reconciler) rows(set records.RecordSet, n *dates.Normalizer, origin Origin) []Row {
	s := r.schema
	out := make([]Row, len(set.Records))
	for i, rec := range set.Records {
		row := Row{
			Record: rec.Clone(),
			Key:    s.Key.Extract(rec),
			Date:   dates.Invalid,
			Origin: origin,
		}
		if s.HasDate() {
			if raw, ok := rec.Get(s.Date.Column).Get(); ok {
				row.Date = n.Parse(raw)
			}
			if row.Date.Valid() {
				row.Record[s.Date.Column] = records.String(row.Date.Format(s.Date.OutputFormat))
			}
		}
		out[i] = row
	}
	return out
}

// indexSource maps each key to its first source occurrence. Later
// occurrences are counted but not deduplicated.
func (r *reconciler) indexSource(rows []Row, result *Result) map[string]int {
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		id := row.Key.ID()
		if _, ok := index[id]; ok {
			result.Metadata.Stats.DuplicateSourceKeys++
			continue
		}
		index[id] = i
	}
	return index
}

// indexDestination picks, per key, the destination row that receives the
// source update according to the duplicate policy, and returns the set of
// all destination keys.
func (r *reconciler) indexDestination(rows []Row, result *Result) (map[string]int, map[string]bool) {
	target := make(map[string]int, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		id := row.Key.ID()
		if seen[id] {
			result.Metadata.Stats.DuplicateDestinationKeys++
			result.Changeset.Duplicate(row.Key.String())
			if r.schema.Duplicates == schema.DuplicatesLast {
				target[id] = i
			}
			continue
		}
		seen[id] = true
		target[id] = i
	}
	return target, seen
}

// Sides returns the side each column of s prefers under the given strategy.
func Sides(s schema.Schema, strategy Strategy) map[string]authority.Side {
	out := make(map[string]authority.Side, len(s.Columns))
	for _, c := range s.Columns {
		out[c] = strategy.Preferred(c)
	}
	return out
}
