package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// errNotRegular is reported for explicit inputs that are neither a directory
// nor a regular file.
var errNotRegular = errors.New("not a regular file")

// ListFiles expands opts.Paths into a flat list of regular files.
//
// Directories are enumerated recursively in lexical order. Directory
// symlinks are followed, but each directory is visited at most once per
// canonical path, so symlink cycles terminate. Files are deduplicated by
// canonical path, keeping the first occurrence, and every listed file was
// opened successfully during the scan.
//
// Per-path failures (missing inputs, unreadable directories or files) are
// collected in ListFilesResult.Errors and never abort the scan. The returned
// error is reserved for invalid glob patterns and context cancellation.
func ListFiles(ctx context.Context, opts Options) (*ListFilesResult, error) {
	filter, err := NewFilter(opts.IncludeGlobs, opts.ExcludeGlobs)
	if err != nil {
		return nil, err
	}

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	lst := &lister{
		ctx:       ctx,
		filter:    filter,
		opts:      opts,
		seenDirs:  make(map[string]struct{}),
		seenFiles: make(map[string]struct{}),
		result:    &ListFilesResult{},
	}

	for _, input := range opts.effectivePaths() {
		if err := lst.checkCancelled(); err != nil {
			return nil, err
		}

		absPath := input
		if !filepath.IsAbs(input) {
			absPath = filepath.Join(workDir, input)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			lst.fail(input, err)
			continue
		}

		switch {
		case info.IsDir():
			if err := lst.walk(absPath, absPath); err != nil {
				return nil, err
			}
		case info.Mode().IsRegular():
			lst.addFile(absPath)
		default:
			lst.fail(input, errNotRegular)
		}
	}

	return lst.result, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}

	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// lister holds the state of a single ListFiles call.
type lister struct {
	ctx    context.Context
	filter *Filter
	opts   Options

	// seenDirs holds canonical directory paths already enumerated.
	seenDirs map[string]struct{}

	// seenFiles holds canonical file paths already emitted or rejected.
	seenFiles map[string]struct{}

	result *ListFilesResult
}

func (l *lister) checkCancelled() error {
	if err := l.ctx.Err(); err != nil {
		return fmt.Errorf("list files: %w: %w", ErrCancelled, err)
	}
	return nil
}

// walk enumerates dir, which lies below the input root, recursively.
func (l *lister) walk(root, dir string) error {
	if err := l.checkCancelled(); err != nil {
		return err
	}

	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		l.fail(dir, err)
		return nil
	}
	if _, ok := l.seenDirs[canonical]; ok {
		return nil
	}
	l.seenDirs[canonical] = struct{}{}

	// os.ReadDir returns the entries read before a failure, so a partially
	// readable directory still contributes what it can.
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.fail(dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if l.opts.SkipHidden && strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		mode := entry.Type()

		if mode&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil {
				// Broken symlink, skip silently.
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			if l.filter.Excluded(name) || l.vendored(root, path, true) {
				continue
			}
			if err := l.walk(root, path); err != nil {
				return err
			}
		case mode.IsRegular():
			if l.vendored(root, path, false) {
				continue
			}
			l.addFile(path)
		}
	}

	return nil
}

// vendored reports whether SkipVendored drops path. enry matches
// slash-separated paths relative to the repository root, and directory rules
// end in a slash.
func (l *lister) vendored(root, path string, isDir bool) bool {
	if !l.opts.SkipVendored {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if isDir {
		return enry.IsVendor(rel + "/")
	}
	return enry.IsVendor(rel) || enry.IsGenerated(rel, nil)
}

// addFile applies the filter, deduplicates by canonical path and verifies
// that the file can be opened.
func (l *lister) addFile(path string) {
	if !l.filter.Match(filepath.Base(path)) {
		return
	}

	key, err := filepath.EvalSymlinks(path)
	if err != nil {
		key = path
	}
	if _, ok := l.seenFiles[key]; ok {
		return
	}
	l.seenFiles[key] = struct{}{}

	file, err := os.Open(path)
	if err != nil {
		l.fail(path, err)
		return
	}
	_ = file.Close()

	l.result.Files = append(l.result.Files, path)
}

// fail records a path-level failure as "<path>: <reason>".
func (l *lister) fail(path string, err error) {
	l.result.Errors = append(l.result.Errors, NewPathError(path, err).Error())
}

// classify maps a filesystem error to one of the package sentinels, keeping
// the operating system's reason when it adds information.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrPathNotFound
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: permission denied", ErrPathUnreadable)
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%w: %w", ErrPathUnreadable, pathErr.Err)
	}
	return fmt.Errorf("%w: %w", ErrPathUnreadable, err)
}
