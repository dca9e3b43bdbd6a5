package runner

import (
	"errors"
	"fmt"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrPathNotFound indicates an input path or file does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrPathUnreadable indicates a directory or file could not be opened or read.
	ErrPathUnreadable = errors.New("path unreadable")

	// ErrTaskFailure indicates an unexpected failure while processing one task.
	ErrTaskFailure = errors.New("task failed")

	// ErrCancelled indicates the operation stopped because its context ended.
	ErrCancelled = errors.New("cancelled")
)

// Task is a unit of work submitted to a Runner. Only the path crosses
// goroutine boundaries; workers open and read the file themselves.
type Task struct {
	Path string
}

// TasksFromPaths builds one Task per path, preserving order.
func TasksFromPaths(paths []string) []Task {
	tasks := make([]Task, len(paths))
	for i, path := range paths {
		tasks[i] = Task{Path: path}
	}
	return tasks
}

// ResultItem is the outcome of one Task.
// Exactly one of Payload and Err is meaningful: when Err is set, Payload is
// the zero value.
type ResultItem[T any] struct {
	// SourcePath is the path of the task that produced this item.
	SourcePath string

	// Payload is the task result.
	Payload T

	// Err is set if the task failed.
	Err error
}

// OK reports whether the item carries a payload rather than an error.
func (r ResultItem[T]) OK() bool {
	return r.Err == nil
}

// ListFilesResult is the flattened output of ListFiles.
type ListFilesResult struct {
	// Files are existing, readable regular files in discovery order,
	// deduplicated by canonical path.
	Files []string

	// Errors are human-readable path-level failures formatted as "<path>: <reason>".
	Errors []string
}

// PathError records a path that could not be listed.
type PathError struct {
	Path string
	Err  error
}

// NewPathError wraps a filesystem error for path, mapping it onto
// ErrPathNotFound or ErrPathUnreadable.
func NewPathError(path string, err error) *PathError {
	return &PathError{Path: path, Err: classify(err)}
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
