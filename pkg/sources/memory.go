package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/eccnsync/pkg/records"
)

// MemorySource is a Source backed by a fixed record set.
type MemorySource struct {
	Set records.RecordSet
	Err error
}

// NewMemorySource returns a Source that always yields set.
func NewMemorySource(set records.RecordSet) *MemorySource {
	return &MemorySource{Set: set}
}

// ID returns MemoryID.
func (s *MemorySource) ID() ID { return MemoryID }

// Fetch returns the configured set or error.
func (s *MemorySource) Fetch(ctx context.Context) (records.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return records.RecordSet{}, err
	}
	if s.Err != nil {
		return records.RecordSet{}, s.Err
	}
	return s.Set, nil
}

// MemoryDestination is a Destination holding rows in memory. It records the
// calls it receives so tests can assert the clear-then-write order.
type MemoryDestination struct {
	mu    sync.Mutex
	rows  [][]string
	calls []string

	ReadErr  error
	ClearErr error
	WriteErr error
}

// NewMemoryDestination returns a destination pre-populated with rows
// (header first). No rows means a fresh, empty store.
func NewMemoryDestination(rows ...[]string) *MemoryDestination {
	return &MemoryDestination{rows: cloneRows(rows)}
}

// ID returns MemoryID.
func (d *MemoryDestination) ID() ID { return MemoryID }

// Read parses the stored rows.
func (d *MemoryDestination) Read(ctx context.Context) (records.RecordSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "read")
	if d.ReadErr != nil {
		return records.RecordSet{}, d.ReadErr
	}
	if len(d.rows) == 0 {
		return records.RecordSet{}, nil
	}
	return records.FromRows(d.rows[0], d.rows[1:]), nil
}

// Clear empties the store.
func (d *MemoryDestination) Clear(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "clear")
	if d.ClearErr != nil {
		return d.ClearErr
	}
	d.rows = nil
	return nil
}

// Write stores rows.
func (d *MemoryDestination) Write(ctx context.Context, rows [][]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "write")
	if d.WriteErr != nil {
		return d.WriteErr
	}
	d.rows = cloneRows(rows)
	return nil
}

// Rows returns a copy of the stored rows.
func (d *MemoryDestination) Rows() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneRows(d.rows)
}

// Calls returns the operations received, in order.
func (d *MemoryDestination) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
