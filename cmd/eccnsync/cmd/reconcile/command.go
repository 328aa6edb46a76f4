// Package reconcile provides the reconcile command, which runs a job's
// merge against local files instead of the live services.
package reconcile

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/eccnsync"
	synccmd "github.com/agentstation/eccnsync/cmd/eccnsync/cmd/sync"
	"github.com/agentstation/eccnsync/internal/filestore"
	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/internal/output"
	"github.com/agentstation/eccnsync/pkg/sources"
)

// AppContext defines the interface that the reconcile command needs from the app.
type AppContext interface {
	Catalog() (*jobs.Catalog, error)
	ClientWithOptions(opts ...eccnsync.Option) (eccnsync.Client, error)
	Context(ctx context.Context) context.Context
	Logger() *zerolog.Logger
	OutputFormat() output.Format
}

// Flags holds the reconcile command flags.
type Flags struct {
	Job         string
	Source      string
	Destination string
	Output      string
	DryRun      bool
}

// NewCommand creates the reconcile command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "reconcile",
		GroupID: "core",
		Short:   "Reconcile local export and worksheet files",
		Long: `Reconcile applies a job's schema to local files.

The source is an analytics XML export, or a CSV file with a header row.
The destination is a CSV worksheet snapshot; a missing file is an empty
worksheet. The merged, sorted table is written to --output, or back over
the destination when --output is not given.`,
		Example: `  eccnsync reconcile --job mcm --source export.xml --destination mcm.csv
  eccnsync reconcile --job grainger --source g.xml --destination g.csv --output merged.csv
  eccnsync reconcile --job mcm --source export.xml --destination mcm.csv --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Job, "job", "", "job whose schema to apply")
	cmd.Flags().StringVar(&flags.Source, "source", "", "export file (XML, or CSV with a header row)")
	cmd.Flags().StringVar(&flags.Destination, "destination", "", "worksheet CSV file")
	cmd.Flags().StringVar(&flags.Output, "output", "", "write the result here instead of over --destination")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "reconcile and report without writing")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("destination")

	return cmd
}

// Run reconciles the files named in flags under the job's schema.
func Run(ctx context.Context, app AppContext, flags *Flags) error {
	catalog, err := app.Catalog()
	if err != nil {
		return err
	}
	job, err := catalog.Get(flags.Job)
	if err != nil {
		return err
	}

	client, err := app.ClientWithOptions(
		eccnsync.WithSourceFactory(func(context.Context, jobs.Job) (sources.Source, error) {
			return filestore.NewSource(flags.Source), nil
		}),
		eccnsync.WithDestinationFactory(func(context.Context, jobs.Job) (sources.Destination, error) {
			return filestore.NewDestination(flags.Destination, flags.Output), nil
		}),
	)
	if err != nil {
		return err
	}

	app.Logger().Debug().
		Str("job", job.Name).
		Str("source", flags.Source).
		Str("destination", flags.Destination).
		Str("output", flags.Output).
		Msg("Reconciling files")

	report, runErr := client.Sync(app.Context(ctx), job, eccnsync.WithDryRun(flags.DryRun))
	if report != nil {
		if err := synccmd.Print(app.OutputFormat(), []*eccnsync.Report{report}, true); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if !flags.DryRun {
		target := flags.Output
		if target == "" {
			target = flags.Destination
		}
		_, _ = os.Stderr.WriteString("Wrote " + target + "\n")
	}
	return nil
}
