// Package sources defines the two adapter interfaces the reconciliation
// pipeline consumes: a Source that produces the fresh export, and a
// Destination that persists the working copy.
//
// Adapters own their I/O and error translation. A Source fails with
// errors.AuthError or errors.FetchError; a Destination fails with
// errors.AccessError or errors.WriteError. Each call is all-or-nothing from
// the pipeline's point of view.
//
// Example usage:
//
//	src, err := zoho.NewSource(ctx, creds.Zoho, job.ExportURL)
//	if err != nil {
//	    return err
//	}
//	set, err := src.Fetch(ctx)
//	if err != nil {
//	    return err
//	}
package sources

import (
	"context"

	"github.com/agentstation/eccnsync/pkg/records"
)

// ID represents the identifier of an adapter, used in logs and reports.
type ID string

// String returns the string representation of an adapter ID.
func (id ID) String() string {
	return string(id)
}

// Known adapter kinds.
const (
	ZohoID      ID = "zoho"
	SheetsID    ID = "google_sheets"
	XMLFileID   ID = "xml_file"
	CSVFileID   ID = "csv_file"
	MemoryID    ID = "memory"
	UndefinedID ID = ""
)

// Source produces the authoritative record set.
type Source interface {
	// ID returns the adapter identifier
	ID() ID

	// Fetch retrieves the full export as flat records
	Fetch(ctx context.Context) (records.RecordSet, error)
}

// Destination reads and fully replaces the persisted record set.
type Destination interface {
	// ID returns the adapter identifier
	ID() ID

	// Read returns the current content; a fresh store reads as an empty set
	Read(ctx context.Context) (records.RecordSet, error)

	// Clear removes all existing content
	Clear(ctx context.Context) error

	// Write stores rows, header first, starting at the top of the store
	Write(ctx context.Context, rows [][]string) error
}
