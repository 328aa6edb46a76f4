// Package auth provides the auth command for checking configured credentials.
package auth

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/eccnsync/internal/auth"
	"github.com/agentstation/eccnsync/internal/config"
	"github.com/agentstation/eccnsync/internal/output"
)

// AppContext defines the interface that auth commands need from the app.
type AppContext interface {
	Settings() (*config.Config, error)
	Logger() *zerolog.Logger
	OutputFormat() output.Format
}

// NewCommand creates the auth command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		GroupID: "management",
		Short:   "Check export and Google credentials",
	}
	cmd.AddCommand(NewStatusCommand(app))
	return cmd
}

// NewStatusCommand creates the auth status subcommand.
func NewStatusCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials are configured",
		Long: `Display whether the analytics OAuth client and the Google service
account are configured.

The command reads environment variables and credential files but does
not exchange any token, so a configured status does not prove the
credentials are accepted.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			settings, err := app.Settings()
			if err != nil {
				return err
			}
			statuses := auth.NewChecker().Check(settings.Credentials)
			return printStatuses(app.OutputFormat(), statuses)
		},
	}
}

func printStatuses(format output.Format, statuses []*auth.Status) error {
	formatter := output.NewFormatter(format)
	if format != output.FormatTable {
		return formatter.Format(os.Stdout, statuses)
	}

	rows := make([][]string, 0, len(statuses))
	configured := 0
	for _, s := range statuses {
		if s.State == auth.StateConfigured {
			configured++
		}
		account := s.Account
		if account == "" {
			account = "-"
		}
		rows = append(rows, []string{s.Service, s.State.String(), account, s.Summary})
	}
	data := output.Data{
		Headers: []string{"Service", "Status", "Account", "Details"},
		Rows:    rows,
	}
	if err := formatter.Format(os.Stdout, data); err != nil {
		return err
	}
	fmt.Printf("\n%d of %d services configured\n", configured, len(statuses))
	return nil
}
