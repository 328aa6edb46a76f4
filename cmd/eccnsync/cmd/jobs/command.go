// Package jobs provides the jobs command for inspecting configured jobs.
package jobs

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/internal/output"
)

// AppContext defines the interface that jobs commands need from the app.
type AppContext interface {
	Catalog() (*jobs.Catalog, error)
	Logger() *zerolog.Logger
	OutputFormat() output.Format
}

// NewCommand creates the jobs command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		GroupID: "management",
		Short:   "List configured jobs",
		Long: `Jobs lists the built-in jobs merged with any jobs defined in the
config file. Use "jobs show <name>" to see a job's columns and the role
each one plays in reconciliation.`,
		Example: `  eccnsync jobs              # List jobs
  eccnsync jobs show mcm     # Show the mcm schema
  eccnsync jobs -o yaml      # Dump every job definition`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			catalog, err := app.Catalog()
			if err != nil {
				return err
			}
			format := app.OutputFormat()
			formatter := output.NewFormatter(format)
			if format != output.FormatTable {
				return formatter.Format(os.Stdout, catalog.List())
			}
			return formatter.Format(os.Stdout, output.JobsToTableData(catalog.List()))
		},
	}

	cmd.AddCommand(NewShowCommand(app))

	return cmd
}

// NewShowCommand creates the jobs show subcommand.
func NewShowCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a job's schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			catalog, err := app.Catalog()
			if err != nil {
				return err
			}
			job, err := catalog.Get(args[0])
			if err != nil {
				return err
			}

			format := app.OutputFormat()
			formatter := output.NewFormatter(format)
			if format != output.FormatTable {
				return formatter.Format(os.Stdout, job)
			}

			fmt.Printf("%s: %s\n", job.Name, job.Description)
			sheet := job.Sheet.Worksheet
			if job.Sheet.SpreadsheetTitle != "" {
				sheet = job.Sheet.SpreadsheetTitle + " / " + sheet
			}
			fmt.Printf("Worksheet: %s\n\n", sheet)
			return formatter.Format(os.Stdout, output.SchemaToTableData(job.Schema))
		},
	}
}
