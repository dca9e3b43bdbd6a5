// Package cli provides the Cobra command structure for gocharset.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gocharset/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gocharset command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gocharset",
		Short: "Detect and convert the character encoding of text files",
		Long: `gocharset finds out which character encoding text files use and converts
them to another one.

Detection looks at byte-order marks, validates UTF-8 and falls back to
statistical analysis for legacy encodings. Files are processed in parallel,
results are cached between runs, and conversions are written atomically
with optional backups.`,
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

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(newDetectCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newRestoreCommand())
	rootCmd.AddCommand(newCharsetsCommand())
	rootCmd.AddCommand(newCacheCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
