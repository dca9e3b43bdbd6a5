// Package runner expands input paths into file lists and fans per-file work
// out across a bounded pool of workers.
package runner

// Options controls how ListFiles expands input paths.
type Options struct {
	// Paths are the user-specified paths (files or directories) to expand.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// IncludeGlobs are base-name patterns a file must match to be listed.
	// Empty means "match everything".
	IncludeGlobs []string

	// ExcludeGlobs are base-name patterns that drop a file, or prune a
	// directory, even when an include pattern matches.
	ExcludeGlobs []string

	// SkipHidden drops dot-files and dot-directories found below an input root.
	SkipHidden bool

	// SkipVendored drops vendored directories and files, and files known to
	// be generated, found below an input root. Paths are classified with
	// go-enry's linguist rules relative to that root.
	SkipVendored bool
}

// effectivePaths returns the paths to expand, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

// Option configures a Runner.
type Option func(*settings)

type settings struct {
	jobs     int
	progress func(done, total int)
}

// WithJobs sets the number of workers. 0 or negative means runtime.NumCPU().
func WithJobs(jobs int) Option {
	return func(s *settings) {
		s.jobs = jobs
	}
}

// WithProgress registers a callback invoked after every delivered result with
// the number of results delivered so far in that run and the run's task count.
// It is called from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(done, total int)) Option {
	return func(s *settings) {
		s.progress = fn
	}
}
