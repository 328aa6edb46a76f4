// Package writeback replaces the destination's content with the reconciled
// record set: clear, then write the header and every row. An empty set is
// never written, so a failed or empty export cannot erase the sheet.
package writeback

import (
	"context"
	"time"

	"github.com/agentstation/eccnsync/pkg/errors"
	"github.com/agentstation/eccnsync/pkg/logging"
	"github.com/agentstation/eccnsync/pkg/records"
	"github.com/agentstation/eccnsync/pkg/sources"
)

// Status is the outcome of a write-back.
type Status string

const (
	// StatusWritten means the destination now holds the record set.
	StatusWritten Status = "written"
	// StatusNoOp means the record set was empty and the destination was left alone.
	StatusNoOp Status = "no-op"
	// StatusSkipped means a dry run rendered the rows without touching the destination.
	StatusSkipped Status = "skipped"
)

// Outcome reports what a write-back did.
type Outcome struct {
	Status   Status        `json:"status" yaml:"status"`
	Rows     int           `json:"rows" yaml:"rows"` // data rows, header excluded
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Coordinator performs full-replace writes against one destination.
type Coordinator struct {
	dst    sources.Destination
	dryRun bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDryRun makes Write render rows without clearing or writing.
func WithDryRun(dryRun bool) Option {
	return func(c *Coordinator) {
		c.dryRun = dryRun
	}
}

// New creates a Coordinator for dst.
func New(dst sources.Destination, opts ...Option) *Coordinator {
	c := &Coordinator{dst: dst}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render converts set to text rows, header first, null as "".
func Render(set records.RecordSet) [][]string {
	return set.Rows()
}

// Write replaces the destination content with set. A failure after the
// clear is a WriteError with Cleared set: the destination is empty until the
// next successful run.
func (c *Coordinator) Write(ctx context.Context, set records.RecordSet) (*Outcome, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	if set.Len() == 0 {
		logger.Warn().
			Str("destination", c.dst.ID().String()).
			Msg("Nothing to write, leaving destination untouched")
		return &Outcome{Status: StatusNoOp}, nil
	}

	rows := Render(set)
	if c.dryRun {
		logger.Info().
			Int("rows", set.Len()).
			Msg("Dry run, destination not modified")
		return &Outcome{Status: StatusSkipped, Rows: set.Len(), Duration: time.Since(start)}, nil
	}

	if err := c.dst.Clear(ctx); err != nil {
		return nil, err
	}
	logger.Debug().Str("destination", c.dst.ID().String()).Msg("Cleared destination")

	if err := c.dst.Write(ctx, rows); err != nil {
		return nil, markCleared(c.dst.ID(), err)
	}

	outcome := &Outcome{Status: StatusWritten, Rows: set.Len(), Duration: time.Since(start)}
	logger.Info().
		Str("destination", c.dst.ID().String()).
		Int("rows", outcome.Rows).
		Dur("duration", outcome.Duration).
		Msg("Wrote destination")
	return outcome, nil
}

func markCleared(id sources.ID, err error) error {
	var writeErr *errors.WriteError
	if errors.As(err, &writeErr) {
		writeErr.Cleared = true
		return err
	}
	return &errors.WriteError{
		Resource:  id.String(),
		Operation: "write",
		Cleared:   true,
		Err:       err,
	}
}
