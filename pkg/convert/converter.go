package convert

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yaklabco/gocharset/internal/logging"
	"github.com/yaklabco/gocharset/pkg/charsets"
	"github.com/yaklabco/gocharset/pkg/detector"
	"github.com/yaklabco/gocharset/pkg/fsutil"
	"github.com/yaklabco/gocharset/pkg/runner"
)

// Outcome describes what happened to one file.
type Outcome struct {
	// From is the source charset, detected or given.
	From string `json:"from"`

	// To is the target charset.
	To string `json:"to"`

	// Changed reports whether the file was rewritten, or would be in a dry run.
	Changed bool `json:"changed"`

	// Skipped reports that the file already was in the target charset.
	Skipped bool `json:"skipped,omitempty"`

	// DryRun reports that nothing was written.
	DryRun bool `json:"dryRun,omitempty"`

	BytesIn  int64 `json:"bytesIn"`
	BytesOut int64 `json:"bytesOut"`

	// Backup is the backup file path, if one exists.
	Backup string `json:"backup,omitempty"`
}

// Options configures a Converter.
type Options struct {
	// Detector detects source charsets. Nil builds one with default
	// settings and Jobs workers.
	Detector *detector.Detector

	// Jobs is the worker count. 0 means runtime.NumCPU().
	Jobs int

	// Backups controls backup creation before a file is rewritten.
	Backups fsutil.BackupConfig

	// DryRun computes outcomes without touching any file.
	DryRun bool

	// From forces the source charset instead of detecting it.
	From string

	// Logger receives debug output. Nil means logging.Default().
	Logger *log.Logger

	// Progress is called after every delivered result.
	Progress func(done, total int)
}

// Converter rewrites files into a target charset in parallel.
type Converter struct {
	detector *detector.Detector
	backups  fsutil.BackupConfig
	dryRun   bool
	from     string
	logger   *log.Logger

	runner *runner.Runner[Outcome]
}

// targetKey carries the target charset of one Run to its tasks.
type targetKey struct{}

// New creates a Converter. It fails if Options.From is not a known charset.
func New(opts Options) (*Converter, error) {
	var from string
	if opts.From != "" {
		source, err := charsets.Lookup(opts.From)
		if err != nil {
			return nil, fmt.Errorf("source charset: %w", err)
		}
		from = source.Name
	}

	det := opts.Detector
	if det == nil {
		det = detector.New(detector.Options{Jobs: opts.Jobs, Logger: opts.Logger})
	}

	c := &Converter{
		detector: det,
		backups:  opts.Backups,
		dryRun:   opts.DryRun,
		from:     from,
		logger:   logging.OrDefault(opts.Logger),
	}
	c.runner = runner.New(c.convertTask,
		runner.WithJobs(opts.Jobs),
		runner.WithProgress(opts.Progress),
	)
	return c, nil
}

// Run converts paths to the charset named to and streams one result per
// path. It fails up front if to is not a known charset.
func (c *Converter) Run(ctx context.Context, paths []string, to string) (<-chan runner.ResultItem[Outcome], error) {
	target, err := charsets.Lookup(to)
	if err != nil {
		return nil, fmt.Errorf("target charset: %w", err)
	}

	logger := c.logger.With(logging.FieldRunID, uuid.NewString())
	logger.Debug("conversion started",
		logging.FieldFiles, len(paths),
		logging.FieldTo, target.Name,
		logging.FieldDryRun, c.dryRun,
		logging.FieldJobs, c.runner.Jobs(),
	)

	ctx = logging.WithLogger(ctx, logger)
	ctx = context.WithValue(ctx, targetKey{}, target)
	return c.runner.Submit(ctx, runner.TasksFromPaths(paths)), nil
}

// Cancel stops all active runs.
func (c *Converter) Cancel() {
	c.runner.Cancel()
}

// Reset re-arms the converter after Cancel.
func (c *Converter) Reset() {
	c.runner.Reset()
}

// Completed returns the number of results delivered since the last Reset.
func (c *Converter) Completed() int64 {
	return c.runner.Completed()
}

func (c *Converter) convertTask(ctx context.Context, w *runner.Worker, task runner.Task) (Outcome, error) {
	target, ok := ctx.Value(targetKey{}).(charsets.Charset)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: no target charset", runner.ErrTaskFailure)
	}

	return c.convertFile(ctx, w, task.Path, target)
}

func (c *Converter) convertFile(ctx context.Context, w *runner.Worker, path string, target charsets.Charset) (Outcome, error) {
	logger := logging.FromContext(ctx).With(logging.FieldPath, path)

	lock, err := fsutil.Lock(ctx, path)
	if err != nil {
		return Outcome{}, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("unlock failed", logging.FieldError, err)
		}
	}()

	content, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		From:    c.from,
		To:      target.Name,
		BytesIn: int64(len(content)),
		DryRun:  c.dryRun,
	}

	if outcome.From == "" {
		guess := c.detector.DetectBytes(w, content)
		if guess.Inconclusive() {
			return Outcome{}, ErrInconclusive
		}
		outcome.From = guess.Name
	}

	if SameCharset(outcome.From, target.Name) {
		outcome.Skipped = true
		outcome.BytesOut = outcome.BytesIn
		logger.Debug("already in target charset", logging.FieldCharset, outcome.From)
		return outcome, nil
	}

	converted, err := Convert(content, outcome.From, target.Name)
	if err != nil {
		return Outcome{}, err
	}
	outcome.BytesOut = int64(len(converted))
	outcome.Changed = true

	if c.dryRun {
		outcome.Backup = fsutil.BackupPath(path, c.backups.Mode)
		if !c.backups.Active() {
			outcome.Backup = ""
		}
		return outcome, nil
	}

	backup, _, err := fsutil.CreateBackup(ctx, path, c.backups)
	if err != nil {
		return Outcome{}, err
	}
	outcome.Backup = backup

	modified, err := fsutil.CheckModified(ctx, snap)
	if err != nil {
		return Outcome{}, err
	}
	if modified {
		return Outcome{}, ErrModified
	}

	if err := fsutil.WriteAtomic(ctx, path, converted, snap.Mode); err != nil {
		return Outcome{}, err
	}

	logger.Debug("converted",
		logging.FieldFrom, outcome.From,
		logging.FieldTo, outcome.To,
		logging.FieldBytesIn, outcome.BytesIn,
		logging.FieldBytesOut, outcome.BytesOut,
		logging.FieldBackup, outcome.Backup,
	)
	return outcome, nil
}
