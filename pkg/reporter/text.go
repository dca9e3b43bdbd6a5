package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/gocharset/internal/ui/pretty"
	"github.com/yaklabco/gocharset/pkg/analysis"
)

// TextReporter prints one styled line per file as results arrive.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Entry implements Reporter. Each line is flushed immediately so output
// keeps pace with the workers.
func (r *TextReporter) Entry(entry analysis.Entry) error {
	if entry.Target != "" || entry.Skipped {
		fmt.Fprint(r.bw, r.styles.FormatConversion(entry))
	} else {
		fmt.Fprint(r.bw, r.styles.FormatDetection(entry))
	}
	if err := r.bw.Flush(); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

// Finish implements Reporter.
func (r *TextReporter) Finish(_ context.Context, report *analysis.Report) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("write report: %w", flushErr)
		}
	}()

	for _, listErr := range report.ListErrors {
		fmt.Fprintln(r.bw, r.styles.Error.Render("error: ")+listErr)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(report))
	}

	return nil
}
