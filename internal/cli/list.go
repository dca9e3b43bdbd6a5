package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gocharset/internal/logging"
	"github.com/yaklabco/gocharset/internal/ui/pretty"
	"github.com/yaklabco/gocharset/pkg/config"
	"github.com/yaklabco/gocharset/pkg/runner"
)

func newListCommand() *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List the files a run would process",
		Long: `List the files detect and convert would process, after applying
include and exclude patterns. Paths that cannot be read are reported on
stderr.

Examples:
  gocharset list                       # Files under the current directory
  gocharset list -x vendor -x '*.min.js'
  gocharset list --format json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, flags)
		},
	}

	addScanFlags(cmd, flags)
	return cmd
}

// listOutput is the JSON shape of the list command.
type listOutput struct {
	Files  []string `json:"files"`
	Errors []string `json:"errors,omitempty"`
}

func runList(cmd *cobra.Command, args []string, flags *scanFlags) error {
	var cliCfg config.Config
	if err := flags.apply(cmd, &cliCfg); err != nil {
		return err
	}

	workDir, err := workingDir()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, workDir, &cliCfg)
	if err != nil {
		return err
	}

	listed, err := runner.ListFiles(commandContext(cmd), runOptions(cfg, args, workDir))
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	files := make([]string, len(listed.Files))
	for i, path := range listed.Files {
		files[i] = relativeTo(path, workDir)
	}

	logging.Default().Debug("listed files",
		logging.FieldFilesListed, len(files),
		logging.FieldFilesErrored, len(listed.Errors),
	)

	out := cmd.OutOrStdout()
	switch cfg.Format {
	case config.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(listOutput{Files: files, Errors: listed.Errors}); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case config.FormatSummary:
		fmt.Fprintf(out, "%d files, %d errors\n", len(files), len(listed.Errors))
	default:
		for _, path := range files {
			fmt.Fprintln(out, path)
		}
	}

	if cfg.Format != config.FormatJSON {
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), cmd.ErrOrStderr()))
		for _, msg := range listed.Errors {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.Error.Render(msg))
		}
	}

	if len(listed.Errors) > 0 {
		return ErrPartial
	}
	return nil
}

// relativeTo shortens path relative to dir when it lies below it.
func relativeTo(path, dir string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return path
	}
	return rel
}
