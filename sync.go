package eccnsync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/pkg/constants"
	"github.com/agentstation/eccnsync/pkg/differ"
	"github.com/agentstation/eccnsync/pkg/logging"
	"github.com/agentstation/eccnsync/pkg/reconciler"
	"github.com/agentstation/eccnsync/pkg/writeback"
)

// Report describes one job run.
type Report struct {
	Job       string                      `json:"job" yaml:"job"`
	RunID     string                      `json:"run_id" yaml:"run_id"`
	Strategy  string                      `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Stats     reconciler.ResultStatistics `json:"stats" yaml:"stats"`
	Changeset *differ.Changeset           `json:"changeset,omitempty" yaml:"changeset,omitempty"`
	Outcome   *writeback.Outcome          `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Duration  time.Duration               `json:"duration" yaml:"duration"`
	Error     string                      `json:"error,omitempty" yaml:"error,omitempty"`
}

// SyncOption configures a single Sync call.
type SyncOption func(*SyncOptions)

// SyncOptions holds per-run settings.
type SyncOptions struct {
	DryRun  bool
	Timeout time.Duration
}

// NewSyncOptions returns options with defaults applied.
func NewSyncOptions(opts ...SyncOption) *SyncOptions {
	o := &SyncOptions{Timeout: constants.SyncTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDryRun reconciles and reports without clearing or writing the worksheet.
func WithDryRun(dryRun bool) SyncOption {
	return func(o *SyncOptions) {
		o.DryRun = dryRun
	}
}

// WithTimeout bounds a single job run. Zero disables the bound.
func WithTimeout(d time.Duration) SyncOption {
	return func(o *SyncOptions) {
		o.Timeout = d
	}
}

// Sync runs one job. Any failure before the write leaves the worksheet as it was.
func (c *client) Sync(ctx context.Context, job jobs.Job, opts ...SyncOption) (*Report, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}
	options := NewSyncOptions(opts...)
	start := time.Now()

	report := &Report{Job: job.Name, RunID: logging.RunID(ctx)}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
		ctx = logging.WithRunID(ctx, report.RunID)
	}
	ctx = logging.WithJob(ctx, job.Name)
	logger := logging.FromContext(ctx)

	fail := func(err error) (*Report, error) {
		report.Duration = time.Since(start)
		report.Error = err.Error()
		logger.Error().Err(err).Dur("duration", report.Duration).Msg("Job failed")
		return report, err
	}

	// Step 1: Setup context with timeout
	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {}
	}
	defer cancel()

	// Step 2: Validate the job before any I/O
	if err := job.Validate(); err != nil {
		return fail(err)
	}

	// Step 3: Build adapters
	src, err := c.options.sourceFactory(ctx, job)
	if err != nil {
		return fail(err)
	}
	dst, err := c.options.destinationFactory(ctx, job)
	if err != nil {
		return fail(err)
	}

	// Step 4: Fetch the export, then read the worksheet
	fresh, err := src.Fetch(ctx)
	if err != nil {
		return fail(err)
	}
	logger.Info().Str("source", src.ID().String()).Int("rows", fresh.Len()).Msg("Fetched source")

	existing, err := dst.Read(ctx)
	if err != nil {
		return fail(err)
	}
	logger.Info().Str("destination", dst.ID().String()).Int("rows", existing.Len()).Msg("Read destination")

	// Step 5: Reconcile and sort
	rec, err := Reconcile(ctx, fresh, existing, job.Schema)
	if err != nil {
		return fail(err)
	}
	report.Strategy = rec.Result.Metadata.Strategy.Type().String()
	report.Stats = rec.Result.Metadata.Stats
	report.Changeset = rec.Result.Changeset

	if rec.Result.Changeset.HasChanges() {
		logger.Info().
			Int("added", rec.Result.Changeset.Summary.RowsAdded).
			Int("updated", rec.Result.Changeset.Summary.RowsUpdated).
			Int("fields", rec.Result.Changeset.Summary.FieldsChanged).
			Msg("Changes detected")
	} else {
		logger.Info().Msg("No changes detected")
	}

	// Step 6: Full replace of the destination
	outcome, err := writeback.New(dst, writeback.WithDryRun(options.DryRun)).Write(ctx, rec.Set)
	report.Outcome = outcome
	if err != nil {
		return fail(err)
	}
	report.Duration = time.Since(start)

	// Step 7: Notify hooks only once the rows are persisted
	if outcome.Status == writeback.StatusWritten {
		c.hooks.trigger(job.Name, rec.Result.Changeset)
	}

	logger.Info().
		Str("status", string(outcome.Status)).
		Int("rows", outcome.Rows).
		Dur("duration", report.Duration).
		Msg("Job completed")
	return report, nil
}

// SyncAll runs list sequentially under one run ID.
func (c *client) SyncAll(ctx context.Context, list []jobs.Job, opts ...SyncOption) ([]*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}

	reports := make([]*Report, 0, len(list))
	var first error
	for _, job := range list {
		report, err := c.Sync(ctx, job, opts...)
		reports = append(reports, report)
		if err != nil && first == nil {
			first = err
		}
	}
	return reports, first
}
