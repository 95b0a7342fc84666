package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "charguess",
		Short: "Character guessing game server",
		Long: `charguess runs the character guessing game engine.

Characters are presented to chat conversations as they flow, and players
guess their names to collect coins, XP and streaks. The serve command runs
the HTTP event API; the play command runs a local console session.`,
		SilenceUsage: true,
	}

	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPlayCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
