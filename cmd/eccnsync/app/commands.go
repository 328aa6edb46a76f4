package app

import (
	"github.com/spf13/cobra"

	authcmd "github.com/agentstation/eccnsync/cmd/eccnsync/cmd/auth"
	jobscmd "github.com/agentstation/eccnsync/cmd/eccnsync/cmd/jobs"
	"github.com/agentstation/eccnsync/cmd/eccnsync/cmd/reconcile"
	synccmd "github.com/agentstation/eccnsync/cmd/eccnsync/cmd/sync"
	"github.com/agentstation/eccnsync/cmd/eccnsync/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(synccmd.NewCommand(a))
	rootCmd.AddCommand(reconcile.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(jobscmd.NewCommand(a))
	rootCmd.AddCommand(authcmd.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
