// Package cli provides the Cobra command structure for bracketlens.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/bastndev/bracketlens/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root bracketlens command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "bracketlens",
		Short: "Scope-aware bracket annotations for source files",
		Long: `bracketlens parses source files into a tree of bracket scopes and
annotates each closing bracket with the line range it closes and a
header inferred from the surrounding code.

It understands per-language comment and string syntax, so brackets
inside dead text never produce scopes, and it flags unmatched brackets
so broken nesting is visible at a glance.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newAnnotateCommand())
	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
