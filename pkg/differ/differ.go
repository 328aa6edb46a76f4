package differ

import (
	"github.com/agentstation/eccnsync/pkg/authority"
	"github.com/agentstation/eccnsync/pkg/records"
)

// Differ handles change detection between two versions of a row.
type Differ interface {
	// Records compares an existing destination row with its reconciled
	// version over columns, in column order.
	Records(existing, updated records.Record, columns []string) []FieldChange
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreColumns map[string]bool
	sides         map[string]authority.Side
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreColumns: make(map[string]bool),
		sides:         make(map[string]authority.Side),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Records compares two rows column by column. Values are compared by their
// rendered text, so null and "" are the same cell.
func (diff *differ) Records(existing, updated records.Record, columns []string) []FieldChange {
	var changes []FieldChange
	for _, col := range columns {
		if diff.ignoreColumns[col] {
			continue
		}
		oldVal := existing.Get(col).Text()
		newVal := updated.Get(col).Text()
		if oldVal == newVal {
			continue
		}

		change := FieldChange{
			Column:   col,
			OldValue: oldVal,
			NewValue: newVal,
			Type:     changeType(oldVal, newVal),
		}
		if side, ok := diff.sides[col]; ok {
			change.Side = side
		}
		changes = append(changes, change)
	}
	return changes
}

func changeType(oldVal, newVal string) ChangeType {
	switch {
	case oldVal == "":
		return ChangeTypeAdd
	case newVal == "":
		return ChangeTypeRemove
	default:
		return ChangeTypeUpdate
	}
}
