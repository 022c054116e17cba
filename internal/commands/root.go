package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/movingwise/reconcile/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "reconcile",
		Short:   "Movingwise weekly statement reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newWeekCommand())
	rootCmd.AddCommand(newLoadCommand())
	rootCmd.AddCommand(newSetStateCommand())
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newDistributeCommand())
	rootCmd.AddCommand(newLogCommand())

	return rootCmd
}
