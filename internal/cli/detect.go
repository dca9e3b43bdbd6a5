package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gocharset/internal/logging"
	"github.com/yaklabco/gocharset/pkg/analysis"
	"github.com/yaklabco/gocharset/pkg/config"
	"github.com/yaklabco/gocharset/pkg/detector"
	"github.com/yaklabco/gocharset/pkg/reporter"
	"github.com/yaklabco/gocharset/pkg/runner"
)

type detectFlags struct {
	scanFlags

	fallback      string
	minConfidence int
	noCache       bool
}

func newDetectCommand() *cobra.Command {
	flags := &detectFlags{}

	cmd := &cobra.Command{
		Use:   "detect [paths...]",
		Short: "Detect the character encoding of files",
		Long:  detectLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, flags)
		},
	}

	addScanFlags(cmd, &flags.scanFlags)
	cmd.Flags().StringVar(&flags.fallback, "fallback", "", "charset reported when statistical detection is unsure")
	cmd.Flags().IntVar(&flags.minConfidence, "min-confidence", 0, "statistical score (1-100) below which the fallback wins")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "bypass the detection cache")

	return cmd
}

const detectLongDescription = `Detect the character encoding of files.

Paths may be files or directories; directories are scanned recursively.
With no paths the current directory is scanned. Every file gets one line
with the detected charset, the confidence and how it was found.

Examples:
  gocharset detect                     # Scan current directory
  gocharset detect docs/ notes.txt     # Scan a directory and a file
  gocharset detect -i '*.txt' -j 8     # Only .txt files, 8 workers
  gocharset detect --format json       # Machine-readable report
  gocharset detect --format summary    # Totals per charset`

func runDetect(cmd *cobra.Command, args []string, flags *detectFlags) error {
	logger := logging.Default()

	var cliCfg config.Config
	if err := flags.apply(cmd, &cliCfg); err != nil {
		return err
	}
	cliCfg.Fallback = flags.fallback
	cliCfg.MinConfidence = flags.minConfidence
	cliCfg.NoCache = flags.noCache

	workDir, err := workingDir()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, workDir, &cliCfg)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		logging.FieldJobs, cfg.Jobs,
		logging.FieldMaxBytes, cfg.MaxBytes,
		"fallback", cfg.Fallback,
		"cache", cfg.CacheEnabled(),
	)

	rep, err := newReporter(cmd, cfg)
	if err != nil {
		return err
	}

	progress := newProgress(cmd, cfg, "detecting")
	det, closeCache := newDetector(cfg, logger, progress.callback())
	defer closeCache()

	report, err := detect(cmd, det, rep, runOptions(cfg, args, workDir))
	progress.done()
	if err != nil {
		return err
	}

	if err := rep.Finish(commandContext(cmd), report); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	logger.Debug("detection finished",
		logging.FieldFilesListed, report.Totals.Files,
		logging.FieldFilesDetected, report.Totals.Detected,
		logging.FieldFilesErrored, report.Totals.Errored,
		logging.FieldDuration, report.Duration,
	)

	if ExitCodeFromReport(report) != ExitSuccess {
		return ErrPartial
	}
	return nil
}

// detect lists the inputs, streams every result to rep and returns the
// aggregated report.
func detect(cmd *cobra.Command, det *detector.Detector, rep reporter.Reporter, opts runner.Options) (*analysis.Report, error) {
	ctx := commandContext(cmd)

	listed, err := det.ListFiles(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	var entryErr error
	report := analysis.Detections(det.AsyncDetect(ctx, listed.Files), listed.Errors, analysis.Options{
		IncludeByCharset: true,
		SortBy:           analysis.SortByCount,
		SortDesc:         true,
		WorkingDir:       opts.WorkingDir,
		OnEntry: func(entry analysis.Entry) {
			if entryErr == nil {
				entryErr = rep.Entry(entry)
			}
		},
	})
	if entryErr != nil {
		return nil, fmt.Errorf("report results: %w", entryErr)
	}
	if err := ctx.Err(); err != nil {
		return report, errors.Join(runner.ErrCancelled, err)
	}

	return report, nil
}
