package pretty

import (
	"strings"
	"unicode/utf8"
)

// Table formatting constants.
const (
	tablePadding     = 2
	minLastColumn    = 10
	heavySeparator   = "="
	defaultTermWidth = 100
	ellipsis         = "…"
)

// TableRow is one row of cells. Highlighted rows use Styles.TableHighlight.
type TableRow struct {
	Cells       []string
	Highlighted bool
}

// TableFormatter formats rows as an aligned plain-text table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter. termWidth <= 0 means
// 100 columns.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

// Format renders headers and rows. Every column but the last is as wide as
// its widest cell; the last column is truncated to fit the terminal.
func (t *TableFormatter) Format(headers []string, rows []TableRow) string {
	if len(headers) == 0 {
		return ""
	}

	widths := t.columnWidths(headers, rows)

	var builder strings.Builder
	builder.WriteString(t.styles.TableHeader.Render(t.line(headers, widths)))
	builder.WriteString("\n")
	builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, sum(widths)+tablePadding*(len(widths)-1))))
	builder.WriteString("\n")

	for _, row := range rows {
		line := t.line(row.Cells, widths)
		if row.Highlighted {
			line = t.styles.TableHighlight.Render(line)
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}

	return builder.String()
}

func (t *TableFormatter) columnWidths(headers []string, rows []TableRow) []int {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range rows {
		for i, cell := range row.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	last := len(widths) - 1
	fixed := sum(widths[:last]) + tablePadding*last
	widths[last] = max(min(widths[last], t.termWidth-fixed), minLastColumn)
	return widths
}

// line pads cells before any styling is applied.
func (t *TableFormatter) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if i == len(widths)-1 {
			parts[i] = truncate(cell, width)
			continue
		}
		parts[i] = cell + strings.Repeat(" ", width-utf8.RuneCountInString(cell))
	}
	return strings.TrimRight(strings.Join(parts, strings.Repeat(" ", tablePadding)), " ")
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + ellipsis
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
