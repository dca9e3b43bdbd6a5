package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gocharset/internal/configloader"
	"github.com/yaklabco/gocharset/internal/logging"
	"github.com/yaklabco/gocharset/pkg/analysis"
	"github.com/yaklabco/gocharset/pkg/charsets"
	"github.com/yaklabco/gocharset/pkg/config"
	"github.com/yaklabco/gocharset/pkg/convert"
	"github.com/yaklabco/gocharset/pkg/fsutil"
	"github.com/yaklabco/gocharset/pkg/runner"
)

type convertFlags struct {
	scanFlags

	to        string
	from      string
	dryRun    bool
	noBackups bool
	fallback  string
}

func newConvertCommand() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert files to another character encoding",
		Long:  convertLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags)
		},
	}

	addScanFlags(cmd, &flags.scanFlags)
	cmd.Flags().StringVarP(&flags.to, "to", "t", "", "target charset (default: last used, initially UTF-8)")
	cmd.Flags().StringVarP(&flags.from, "from", "f", "", "source charset (default: detect per file)")
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "report what would change without writing")
	cmd.Flags().BoolVar(&flags.noBackups, "no-backups", false, "do not keep a backup of converted files")
	cmd.Flags().StringVar(&flags.fallback, "fallback", "", "charset assumed when statistical detection is unsure")

	return cmd
}

const convertLongDescription = `Convert files to another character encoding.

The source encoding of every file is detected unless --from is given.
Files already in the target encoding are left alone. Every rewritten file
is first copied to <file>.gocharset.bak unless backups are disabled, and
is replaced atomically. A file changed by someone else during conversion
is not overwritten.

The target encoding defaults to the one used last; a successful
conversion remembers --to in the user configuration.

Examples:
  gocharset convert --to UTF-8 docs/          # Convert a directory
  gocharset convert --from windows-1252 a.txt # Skip detection
  gocharset convert -n --to ISO-8859-15 .     # Dry run
  gocharset restore docs/readme.txt           # Undo from the backup`

func runConvert(cmd *cobra.Command, args []string, flags *convertFlags) error {
	logger := logging.Default()
	ctx := commandContext(cmd)

	var cliCfg config.Config
	if err := flags.apply(cmd, &cliCfg); err != nil {
		return err
	}
	cliCfg.DryRun = flags.dryRun
	cliCfg.NoBackups = flags.noBackups
	cliCfg.Fallback = flags.fallback
	// Conversion detects from the bytes it has already read.
	cliCfg.NoCache = true

	workDir, err := workingDir()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, workDir, &cliCfg)
	if err != nil {
		return err
	}

	targetName := flags.to
	if targetName == "" {
		targetName = cfg.LastCharset
	}
	target, err := charsets.Lookup(targetName)
	if err != nil {
		return usageError(fmt.Errorf("target charset: %w", err))
	}

	rep, err := newReporter(cmd, cfg)
	if err != nil {
		return err
	}

	progress := newProgress(cmd, cfg, "converting")
	det, closeCache := newDetector(cfg, logger, nil)
	defer closeCache()

	conv, err := convert.New(convert.Options{
		Detector: det,
		Jobs:     cfg.Jobs,
		Backups:  backupConfig(cfg),
		DryRun:   cfg.DryRun,
		From:     flags.from,
		Logger:   logger,
		Progress: progress.callback(),
	})
	if err != nil {
		return usageError(err)
	}

	listed, err := det.ListFiles(ctx, runOptions(cfg, args, workDir))
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	results, err := conv.Run(ctx, listed.Files, target.Name)
	if err != nil {
		return usageError(err)
	}

	var entryErr error
	report := analysis.Conversions(results, listed.Errors, analysis.Options{
		IncludeByCharset: true,
		SortBy:           analysis.SortByCount,
		SortDesc:         true,
		WorkingDir:       workDir,
		OnEntry: func(entry analysis.Entry) {
			if entryErr == nil {
				entryErr = rep.Entry(entry)
			}
		},
	})
	progress.done()
	if entryErr != nil {
		return fmt.Errorf("report results: %w", entryErr)
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(runner.ErrCancelled, err)
	}

	if err := rep.Finish(ctx, report); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	logger.Debug("conversion finished",
		logging.FieldTo, target.Name,
		logging.FieldFilesConverted, report.Totals.Converted,
		logging.FieldFilesErrored, report.Totals.Errored,
		logging.FieldDuration, report.Duration,
	)

	if flags.to != "" && !cfg.DryRun && !report.Totals.HasErrors() && !convert.SameCharset(cfg.LastCharset, target.Name) {
		rememberTarget(cmd, target.Name)
	}

	if ExitCodeFromReport(report) != ExitSuccess {
		return ErrPartial
	}
	return nil
}

// rememberTarget stores the target as last_charset in the user config.
// Failing to save is not fatal.
func rememberTarget(cmd *cobra.Command, name string) {
	logger := logging.Default()

	path, err := configloader.SaveUserValue(commandContext(cmd), "", "last_charset", name)
	if err != nil {
		logger.Warn("could not remember target charset", logging.FieldCharset, name, logging.FieldError, err)
		return
	}
	logger.Debug("remembered target charset", logging.FieldCharset, name, logging.FieldPath, path)
}

func backupConfig(cfg *config.Config) fsutil.BackupConfig {
	return fsutil.BackupConfig{
		Enabled: cfg.BackupsEnabled(),
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}
