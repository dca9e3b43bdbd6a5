package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gocharset/internal/logging"
	"github.com/yaklabco/gocharset/internal/ui/pretty"
	"github.com/yaklabco/gocharset/pkg/fsutil"
)

func newRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <files...>",
		Short: "Undo conversions from their backups",
		Long: `Put files back from the backup convert made before rewriting them,
then remove the backup. Files without a backup are reported and left alone.

Examples:
  gocharset restore notes.txt
  gocharset restore docs/*.txt`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: runRestore,
	}

	return cmd
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	logger := logging.Default()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), cmd.OutOrStdout()))
	out := cmd.OutOrStdout()

	failed := 0
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}

		restored, err := fsutil.RestoreBackup(ctx, path, fsutil.BackupModeSidecar)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n",
				styles.FilePath.Render(arg), styles.Error.Render(err.Error()))
		case restored:
			fmt.Fprintf(out, "%s  %s\n", styles.FilePath.Render(arg), styles.Success.Render("restored"))
			logger.Debug("restored from backup", logging.FieldPath, path)
		default:
			failed++
			fmt.Fprintf(out, "%s  %s\n", styles.FilePath.Render(arg), styles.Dim.Render("no backup"))
		}
	}

	if failed > 0 {
		return ErrPartial
	}
	return nil
}
