package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gocharset/internal/configloader"
	"github.com/yaklabco/gocharset/internal/logging"
	"github.com/yaklabco/gocharset/pkg/cache"
	"github.com/yaklabco/gocharset/pkg/config"
	"github.com/yaklabco/gocharset/pkg/detector"
	"github.com/yaklabco/gocharset/pkg/fsutil"
	"github.com/yaklabco/gocharset/pkg/reporter"
	"github.com/yaklabco/gocharset/pkg/runner"
	"github.com/yaklabco/gocharset/pkg/sniff"
)

// scanFlags are shared by the commands that walk a file tree.
type scanFlags struct {
	include    []string
	exclude    []string
	jobs       int
	maxBytes   int
	skipHidden bool
	skipVendor bool
	format     string
}

func addScanFlags(cmd *cobra.Command, flags *scanFlags) {
	cmd.Flags().StringSliceVarP(&flags.include, "include", "i", nil, "only files whose base name matches these globs")
	cmd.Flags().StringSliceVarP(&flags.exclude, "exclude", "x", nil, "skip files and directories matching these globs")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().IntVar(&flags.maxBytes, "max-bytes", 0, "bytes inspected per file (0 = config default)")
	cmd.Flags().BoolVar(&flags.skipHidden, "skip-hidden", false, "skip dot-files and dot-directories")
	cmd.Flags().BoolVar(&flags.skipVendor, "skip-vendored", false, "skip vendored and generated files (node_modules, *.min.js, ...)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, summary")
}

// apply copies explicitly set flags onto cfg, the CLI configuration layer.
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	format := config.OutputFormat(f.format)
	if !format.IsValid() {
		return usageError(fmt.Errorf("invalid format %q: must be text, json or summary", f.format))
	}
	cfg.Format = format

	if cmd.Flags().Changed("include") {
		cfg.Include = f.include
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Exclude = f.exclude
	}
	cfg.Jobs = f.jobs
	cfg.MaxBytes = f.maxBytes
	cfg.SkipHidden = f.skipHidden
	cfg.SkipVendored = f.skipVendor
	return nil
}

// runOptions builds the file listing options for paths. Backup and lock
// files written by convert are never listed.
func runOptions(cfg *config.Config, paths []string, workDir string) runner.Options {
	exclude := slices.Concat(cfg.Exclude, []string{"*" + fsutil.BackupSuffix, "*" + fsutil.LockSuffix})
	return runner.Options{
		Paths:        paths,
		WorkingDir:   workDir,
		IncludeGlobs: cfg.Include,
		ExcludeGlobs: exclude,
		SkipHidden:   cfg.SkipHidden,
		SkipVendored: cfg.SkipVendored,
	}
}

// commandContext returns the command context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig resolves the layered configuration with cliCfg on top.
func loadConfig(cmd *cobra.Command, workDir string, cliCfg *config.Config) (*config.Config, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	result, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, configError(fmt.Errorf("load configuration: %w", err))
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldConfig, result.LoadedFrom)
	}

	return result.Config, nil
}

// colorMode reads the persistent --color flag.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}

func newReporter(cmd *cobra.Command, cfg *config.Config) (reporter.Reporter, error) {
	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, usageError(err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Color:       colorMode(cmd),
		ShowSummary: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create reporter: %w", err)
	}
	return rep, nil
}

// openCache opens the detection cache when enabled. A cache that cannot be
// opened is logged and skipped; detection works without it.
func openCache(cfg *config.Config, logger *log.Logger) *cache.Store {
	if !cfg.CacheEnabled() {
		return nil
	}

	path := cfg.Cache.Path
	if path == "" {
		var err error
		path, err = cache.DefaultPath()
		if err != nil {
			logger.Warn("detection cache unavailable", logging.FieldError, err)
			return nil
		}
	}

	store, err := cache.Open(path)
	if err != nil {
		logger.Warn("detection cache unavailable", logging.FieldPath, path, logging.FieldError, err)
		return nil
	}
	return store
}

// newDetector builds a detector from cfg. The returned close func releases
// the cache, if one was opened.
func newDetector(cfg *config.Config, logger *log.Logger, progress func(done, total int)) (*detector.Detector, func()) {
	opts := detector.Options{
		Jobs:     cfg.Jobs,
		MaxBytes: cfg.MaxBytes,
		Sniff: sniff.Options{
			Fallback:      cfg.Fallback,
			MinConfidence: cfg.MinConfidence,
		},
		Logger:   logger,
		Progress: progress,
	}

	store := openCache(cfg, logger)
	if store == nil {
		return detector.New(opts), func() {}
	}

	opts.Cache = store
	return detector.New(opts), func() {
		if err := store.Close(); err != nil {
			logger.Warn("close detection cache", logging.FieldError, err)
		}
	}
}

// progressLine redraws "label done/total" on a terminal.
type progressLine struct {
	mu     sync.Mutex
	w      io.Writer
	label  string
	active bool
}

// newProgress returns a progress line on stderr, or nil when stderr is not
// a terminal or the text format already streams one line per file.
func newProgress(cmd *cobra.Command, cfg *config.Config, label string) *progressLine {
	if cfg.Format == config.FormatText {
		return nil
	}
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return &progressLine{w: f, label: label}
}

// update is a runner progress callback.
func (p *progressLine) update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = true
	fmt.Fprintf(p.w, "\r%s %s/%s", p.label, humanize.Comma(int64(done)), humanize.Comma(int64(total)))
}

// clear erases the line once the run is over.
func (p *progressLine) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		fmt.Fprint(p.w, "\r\033[K")
		p.active = false
	}
}

// callback returns p.update, or nil for a nil progress line.
func (p *progressLine) callback() func(done, total int) {
	if p == nil {
		return nil
	}
	return p.update
}

func (p *progressLine) done() {
	if p != nil {
		p.clear()
	}
}

// workingDir returns the process working directory.
func workingDir() (string, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return workDir, nil
}
