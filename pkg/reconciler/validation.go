package reconciler

import (
	"fmt"

	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/schema"
)

// validateKeyColumns fails when a key column is absent from an input set.
// A set with neither columns nor rows is an empty export or a fresh
// worksheet and joins as empty.
func validateKeyColumns(s schema.Schema, source, destination records.RecordSet) error {
	for _, side := range []struct {
		name string
		set  records.RecordSet
	}{
		{"source", source},
		{"destination", destination},
	} {
		if side.set.IsEmpty() {
			continue
		}
		if missing := s.Key.Missing(side.set.Columns); len(missing) > 0 {
			return errors.NewConfigError("reconciler",
				fmt.Sprintf("key columns %v missing from %s", missing, side.name), nil)
		}
	}
	return nil
}
