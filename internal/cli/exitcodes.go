package cli

import (
	"errors"

	"github.com/yaklabco/gocharset/pkg/analysis"
)

// Exit codes for gocharset.
const (
	// ExitSuccess indicates every file was processed.
	ExitSuccess = 0

	// ExitFailure indicates the command could not run at all.
	ExitFailure = 1

	// ExitPartial indicates the run finished but some files failed.
	ExitPartial = 3

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65
)

// ErrPartial is returned when a run completed but some files failed.
var ErrPartial = errors.New("some files could not be processed")

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: ExitInvalidUsage, err: err}
}

func configError(err error) error {
	return &exitError{code: ExitConfigError, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, ErrPartial) {
		return ExitPartial
	}
	var coded *exitError
	if errors.As(err, &coded) {
		return coded.code
	}
	return ExitFailure
}

// ExitCodeFromReport determines the exit code for a finished run.
func ExitCodeFromReport(report *analysis.Report) int {
	if report == nil || !report.Totals.HasErrors() {
		return ExitSuccess
	}
	return ExitPartial
}
