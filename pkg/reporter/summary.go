package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/yaklabco/gocharset/internal/ui/pretty"
	"github.com/yaklabco/gocharset/pkg/analysis"
)

// summaryTableWidth bounds the charset table.
const summaryTableWidth = 80

// SummaryRenderer formats results as a per-charset table plus totals.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if len(report.ByCharset) > 0 {
		title := "Charsets"
		if report.Kind == analysis.KindConvert {
			title = "Source charsets"
		}
		fmt.Fprintln(r.out, r.styles.Bold.Render(title))
		fmt.Fprint(r.out, r.charsetTable(report))
	}

	for _, listErr := range report.ListErrors {
		fmt.Fprintln(r.out, r.styles.Error.Render("error: ")+listErr)
	}
	for _, entry := range report.Entries {
		if entry.Failed() {
			fmt.Fprintf(r.out, "%s %s: %s\n", r.styles.Error.Render("error:"), entry.Path, entry.Error)
		}
	}

	_, err := fmt.Fprint(r.out, r.styles.FormatSummary(report))
	return err
}

func (r *SummaryRenderer) charsetTable(report *analysis.Report) string {
	succeeded := report.Totals.Files - report.Totals.Errored

	rows := make([]pretty.TableRow, 0, len(report.ByCharset))
	for _, group := range report.ByCharset {
		share := 0.0
		if succeeded > 0 {
			share = float64(group.Files) * 100 / float64(succeeded)
		}
		rows = append(rows, pretty.TableRow{Cells: []string{
			group.Charset,
			strconv.Itoa(group.Files),
			fmt.Sprintf("%.0f%%", share),
		}})
	}

	table := pretty.NewTableFormatter(r.styles, summaryTableWidth)
	return table.Format([]string{"CHARSET", "FILES", "SHARE"}, rows)
}
