package eccnsync

import (
	"context"

	"github.com/agentstation/eccnsync/pkg/reconciler"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/schema"
	"github.com/agentstation/eccnsync/pkg/sorter"
)

// Reconciled is a sorted reconciliation, ready to be written back.
type Reconciled struct {
	// Set is the output in write order.
	Set records.RecordSet
	// Rows carries the key, parsed date and origin of each output row.
	Rows reconciler.Rows
	// Result holds the changeset and statistics.
	Result *reconciler.Result
}

// Reconcile merges source into destination under s and sorts the result.
// It performs no I/O and leaves both inputs untouched, so it can be used
// directly on record sets obtained any other way.
func Reconcile(ctx context.Context, source, destination records.RecordSet, s schema.Schema) (*Reconciled, error) {
	r, err := reconciler.New(s)
	if err != nil {
		return nil, err
	}
	result, err := r.Reconcile(ctx, source, destination)
	if err != nil {
		return nil, err
	}

	rows := sorter.Sort(result.Rows, sorter.FromSchema(s)...)
	result.Rows = rows
	return &Reconciled{
		Set:    rows.RecordSet(result.Columns),
		Rows:   rows,
		Result: result,
	}, nil
}
