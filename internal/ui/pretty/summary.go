package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/gocharset/pkg/analysis"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int) string {
	if n == 1 {
		return wordFile
	}
	return wordFiles
}

// FormatSummaryOneLine formats report totals as a single line.
// Example: "12 files: 10 detected, 1 unknown, 1 error".
func (s *Styles) FormatSummaryOneLine(report *analysis.Report) string {
	totals := report.Totals
	if totals.Files == 0 && totals.ListErrors == 0 {
		return s.Dim.Render("No files found") + "\n"
	}

	var parts []string
	if report.Kind == analysis.KindConvert {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d converted", totals.Converted)))
		if totals.Skipped > 0 {
			parts = append(parts, s.Dim.Render(fmt.Sprintf("%d already in target", totals.Skipped)))
		}
	} else {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d detected", totals.Detected)))
		if totals.Unknown > 0 {
			parts = append(parts, s.Warning.Render(fmt.Sprintf("%d unknown", totals.Unknown)))
		}
	}

	if totals.Errored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d failed", totals.Errored)))
	}
	if totals.ListErrors > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d unlisted", totals.ListErrors)))
	}

	return fmt.Sprintf("%d %s: %s\n", totals.Files, plural(totals.Files), strings.Join(parts, ", "))
}

// FormatSummary formats report totals as a summary block.
func (s *Styles) FormatSummary(report *analysis.Report) string {
	totals := report.Totals
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files:             " + s.SummaryValue.Render(strconv.Itoa(totals.Files)) + "\n")

	if report.Kind == analysis.KindConvert {
		builder.WriteString("  Converted:         " + s.Success.Render(strconv.Itoa(totals.Converted)) + "\n")
		builder.WriteString("  Already in target: " + s.SummaryValue.Render(strconv.Itoa(totals.Skipped)) + "\n")
		builder.WriteString("  Bytes:             " +
			s.SummaryValue.Render(humanize.Bytes(uint64(max(totals.BytesIn, 0)))+" -> "+humanize.Bytes(uint64(max(totals.BytesOut, 0)))) + "\n")
	} else {
		builder.WriteString("  Detected:          " + s.Success.Render(strconv.Itoa(totals.Detected)) + "\n")
		if totals.Unknown > 0 {
			builder.WriteString("  Unknown:           " + s.Warning.Render(strconv.Itoa(totals.Unknown)) + "\n")
		}
	}

	if totals.Errored > 0 {
		builder.WriteString("  Failed:            " + s.Error.Render(strconv.Itoa(totals.Errored)) + "\n")
	}
	if totals.ListErrors > 0 {
		builder.WriteString("  Listing errors:    " + s.Error.Render(strconv.Itoa(totals.ListErrors)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case totals.HasErrors():
		builder.WriteString(s.Failure.Render("Completed with errors"))
	case totals.Unknown > 0:
		builder.WriteString(s.Warning.Render("Completed, some files undetermined"))
	default:
		builder.WriteString(s.Success.Render("Completed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
