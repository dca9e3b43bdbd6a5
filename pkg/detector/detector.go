// Package detector runs charset detection over many files in parallel.
//
// A Detector expands input paths with runner.ListFiles, fans the files out
// over a runner.Runner and gives every worker its own sniff.Sniffer. Results
// stream back unordered as runner.ResultItem values.
package detector

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yaklabco/gocharset/internal/logging"
	"github.com/yaklabco/gocharset/pkg/cache"
	"github.com/yaklabco/gocharset/pkg/runner"
	"github.com/yaklabco/gocharset/pkg/sniff"
)

// Cache stores guesses between runs. *cache.Store implements it.
type Cache interface {
	Get(ctx context.Context, key cache.Key) (sniff.Guess, bool, error)
	Put(ctx context.Context, key cache.Key, guess sniff.Guess) error
}

// Options configures a Detector.
type Options struct {
	// Jobs is the worker count. 0 means runtime.NumCPU().
	Jobs int

	// MaxBytes caps how much of each file is inspected.
	// 0 means sniff.DefaultMaxBytes.
	MaxBytes int

	// Sniff configures every worker's sniffer.
	Sniff sniff.Options

	// Cache, if set, is consulted before reading a file.
	Cache Cache

	// Logger receives debug output. Nil means logging.Default().
	Logger *log.Logger

	// Progress is called after every delivered result.
	Progress func(done, total int)
}

// Detector detects the charset of files. It is safe for concurrent use.
type Detector struct {
	maxBytes int
	settings string
	cache    Cache
	logger   *log.Logger

	pool   *pool
	runner *runner.Runner[sniff.Guess]
}

// New creates a Detector.
func New(opts Options) *Detector {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = sniff.DefaultMaxBytes
	}

	d := &Detector{
		maxBytes: maxBytes,
		settings: opts.Sniff.Fingerprint(),
		cache:    opts.Cache,
		logger:   logging.OrDefault(opts.Logger),
		pool:     newPool(opts.Sniff),
	}
	d.runner = runner.New(d.detectTask,
		runner.WithJobs(opts.Jobs),
		runner.WithProgress(opts.Progress),
	)
	return d
}

// ListFiles expands paths without detecting anything, so callers can preview
// the file set first.
func (d *Detector) ListFiles(ctx context.Context, opts runner.Options) (*runner.ListFilesResult, error) {
	return runner.ListFiles(ctx, opts)
}

// AsyncDetect starts detection for paths and returns the result stream,
// which is closed when every path has a result or the run is cancelled.
func (d *Detector) AsyncDetect(ctx context.Context, paths []string) <-chan runner.ResultItem[sniff.Guess] {
	runID := uuid.NewString()
	logger := d.logger.With(logging.FieldRunID, runID)
	logger.Debug("detection started",
		logging.FieldFiles, len(paths),
		logging.FieldJobs, d.runner.Jobs(),
		logging.FieldMaxBytes, d.maxBytes,
	)

	return d.runner.Submit(logging.WithLogger(ctx, logger), runner.TasksFromPaths(paths))
}

// DetectFile detects one file on the calling goroutine. w selects the
// worker-local sniffer to use; nil uses a throwaway one.
func (d *Detector) DetectFile(ctx context.Context, w *runner.Worker, path string) (sniff.Guess, error) {
	if w == nil {
		w = runner.NewWorker(-1)
		defer w.Close()
	}
	if err := ctx.Err(); err != nil {
		return sniff.Guess{}, fmt.Errorf("%w: %w", runner.ErrCancelled, err)
	}
	return d.detect(logging.WithLogger(ctx, d.logger), w, path)
}

// DetectBytes classifies all of content, which is already in memory, with
// w's sniffer. MaxBytes does not apply. nil w uses a throwaway sniffer.
func (d *Detector) DetectBytes(w *runner.Worker, content []byte) sniff.Guess {
	if w == nil {
		w = runner.NewWorker(-1)
		defer w.Close()
	}
	return d.pool.forWorker(w).Detect(content, len(content))
}

// Cancel stops all active runs. See runner.Runner.Cancel.
func (d *Detector) Cancel() {
	d.runner.Cancel()
}

// Reset re-arms the detector after Cancel.
func (d *Detector) Reset() {
	d.runner.Reset()
}

// Completed returns the number of results delivered since the last Reset.
func (d *Detector) Completed() int64 {
	return d.runner.Completed()
}

// Jobs returns the resolved worker count.
func (d *Detector) Jobs() int {
	return d.runner.Jobs()
}

// SniffersCreated returns how many sniffers the detector has built.
func (d *Detector) SniffersCreated() int64 {
	return d.pool.Created()
}

func (d *Detector) detectTask(ctx context.Context, w *runner.Worker, task runner.Task) (sniff.Guess, error) {
	return d.detect(ctx, w, task.Path)
}

func (d *Detector) detect(ctx context.Context, w *runner.Worker, path string) (sniff.Guess, error) {
	logger := logging.FromContext(ctx).With(logging.FieldPath, path, logging.FieldWorker, w.ID())

	file, err := os.Open(path)
	if err != nil {
		return sniff.Guess{}, runner.NewPathError(path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return sniff.Guess{}, runner.NewPathError(path, err)
	}
	if info.IsDir() {
		return sniff.Guess{}, &runner.PathError{Path: path, Err: fmt.Errorf("%w: is a directory", runner.ErrPathUnreadable)}
	}

	key := cache.Key{
		Path:     path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		MaxBytes: d.maxBytes,
		Settings: d.settings,
	}
	if guess, ok := d.lookup(ctx, logger, key); ok {
		logger.Debug("detected", logging.FieldCharset, guess.Name, logging.FieldCacheHit, true)
		return guess, nil
	}

	guess, err := d.pool.forWorker(w).DetectReader(file, d.maxBytes)
	if err != nil {
		return sniff.Guess{}, runner.NewPathError(path, unwrapRead(err))
	}

	logger.Debug("detected",
		logging.FieldCharset, guess.Name,
		logging.FieldConfidence, guess.Confidence,
		logging.FieldMethod, guess.Method,
		logging.FieldCacheHit, false,
	)

	if d.cache != nil {
		if err := d.cache.Put(ctx, key, guess); err != nil {
			logger.Warn("cache write failed", logging.FieldError, err)
		}
	}

	return guess, nil
}

// lookup consults the cache. Failures are logged and count as misses.
func (d *Detector) lookup(ctx context.Context, logger *log.Logger, key cache.Key) (sniff.Guess, bool) {
	if d.cache == nil {
		return sniff.Guess{}, false
	}

	guess, ok, err := d.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", logging.FieldError, err)
		return sniff.Guess{}, false
	}
	return guess, ok
}

// unwrapRead strips the sniffer's "read:" prefix so the reason reads like a
// listing error.
func unwrapRead(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
