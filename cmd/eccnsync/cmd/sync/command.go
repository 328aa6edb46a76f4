// Package sync provides the sync command: run jobs against the live export
// and their Google Sheets worksheets.
package sync

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/eccnsync"
	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/internal/output"
	"github.com/agentstation/eccnsync/pkg/constants"
	"github.com/agentstation/eccnsync/pkg/errors"
)

// AppContext defines the interface that the sync command needs from the app.
type AppContext interface {
	Catalog() (*jobs.Catalog, error)
	Client() (eccnsync.Client, error)
	Context(ctx context.Context) context.Context
	DryRun() bool
	Logger() *zerolog.Logger
	OutputFormat() output.Format
}

// Flags holds the sync command flags.
type Flags struct {
	All     bool
	DryRun  bool
	Changes bool
	Timeout time.Duration
}

// NewCommand creates the sync command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "sync [job...]",
		GroupID: "core",
		Short:   "Reconcile worksheets with the invoice export",
		Long: `Sync runs reconciliation jobs end to end.

For each job the export is fetched, the worksheet is read, the two tables
are merged by key and the sorted result replaces the worksheet. Jobs run
one after another; a failing job does not stop the rest.`,
		Example: `  eccnsync sync mcm                  # Sync one job
  eccnsync sync --all                # Sync every configured job
  eccnsync sync --all --dry-run      # Show what would change
  eccnsync sync grainger -o json     # Machine-readable report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !flags.All {
				return errors.NewValidationError("job", "", "name at least one job or pass --all")
			}
			if len(args) > 0 && flags.All {
				return errors.NewValidationError("job", args[0], "job names cannot be combined with --all")
			}
			if !cmd.Flags().Changed("dry-run") {
				flags.DryRun = app.DryRun()
			}
			return Run(cmd.Context(), app, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.All, "all", false, "sync every configured job")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "reconcile and report without writing")
	cmd.Flags().BoolVar(&flags.Changes, "changes", false, "print per-row changes after the summary")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", constants.SyncTimeout, "time limit for each job (0 disables)")

	return cmd
}

// Run syncs the named jobs, or every job when names is empty, and prints
// the reports. The first job error is returned after all reports print.
func Run(ctx context.Context, app AppContext, names []string, flags *Flags) error {
	catalog, err := app.Catalog()
	if err != nil {
		return err
	}
	selected, err := catalog.Select(names...)
	if err != nil {
		return err
	}
	client, err := app.Client()
	if err != nil {
		return err
	}

	logger := app.Logger()
	logger.Info().
		Int("jobs", len(selected)).
		Bool("dry_run", flags.DryRun).
		Msg("Starting sync")

	reports, runErr := client.SyncAll(app.Context(ctx), selected,
		eccnsync.WithDryRun(flags.DryRun),
		eccnsync.WithTimeout(flags.Timeout),
	)

	if err := Print(app.OutputFormat(), reports, flags.Changes || flags.DryRun); err != nil {
		return err
	}
	return runErr
}

// Print writes reports in format. Table output is a summary row per job,
// optionally followed by each job's changes.
func Print(format output.Format, reports []*eccnsync.Report, changes bool) error {
	formatter := output.NewFormatter(format)
	if format != output.FormatTable {
		return formatter.Format(os.Stdout, reports)
	}

	if err := formatter.Format(os.Stdout, output.ReportsToTableData(reports)); err != nil {
		return err
	}
	if !changes {
		return nil
	}
	for _, r := range reports {
		if r == nil || r.Changeset == nil || r.Changeset.IsEmpty() {
			continue
		}
		fmt.Printf("\n%s: %s\n", r.Job, r.Changeset.String())
		if err := formatter.Format(os.Stdout, output.ChangesetToTableData(r.Changeset)); err != nil {
			return err
		}
	}
	return nil
}
