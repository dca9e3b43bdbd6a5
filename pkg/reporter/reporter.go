// Package reporter writes detection and conversion results.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/gocharset/pkg/analysis"
)

// Compile-time interface checks.
var (
	_ Reporter = (*rendererFacade)(nil)
	_ Reporter = (*TextReporter)(nil)
)

// Reporter writes results as they arrive and a closing report.
type Reporter interface {
	// Entry is called once per file, in arrival order.
	Entry(entry analysis.Entry) error

	// Finish writes the output for the completed run.
	Finish(ctx context.Context, report *analysis.Report) error
}

// rendererFacade bridges a Renderer, which only sees the final report, to
// the Reporter interface.
type rendererFacade struct {
	renderer Renderer
}

// Entry implements Reporter. Renderers wait for the full report.
func (f *rendererFacade) Entry(analysis.Entry) error {
	return nil
}

// Finish implements Reporter.
func (f *rendererFacade) Finish(ctx context.Context, report *analysis.Report) error {
	if err := f.renderer.Render(ctx, report); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	// Default writers if not specified
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}
	if opts.ErrorWriter == nil {
		opts.ErrorWriter = DefaultOptions().ErrorWriter
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatText:
		return NewTextReporter(opts), nil
	case FormatJSON:
		return &rendererFacade{renderer: NewJSONRenderer(opts)}, nil
	case FormatSummary:
		return &rendererFacade{renderer: NewSummaryRenderer(opts)}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
