package pretty

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/gocharset/pkg/analysis"
	"github.com/yaklabco/gocharset/pkg/sniff"
)

// FormatDetection formats one detection entry as a single line:
//
//	path  charset  (confidence%, method)
func (s *Styles) FormatDetection(entry analysis.Entry) string {
	if entry.Failed() {
		return s.formatFailure(entry)
	}

	charset := s.Charset.Render(entry.Charset)
	if entry.Charset == sniff.Unknown {
		charset = s.Unknown.Render(entry.Charset)
	}

	details := []string{fmt.Sprintf("%d%%", entry.Confidence), entry.Method}
	if entry.BOM && entry.Method != string(sniff.MethodBOM) {
		details = append(details, "bom")
	}
	if entry.Truncated {
		details = append(details, "prefix")
	}

	return fmt.Sprintf("%s  %s  %s\n",
		s.FilePath.Render(entry.Path),
		charset,
		s.Confidence.Render("("+strings.Join(details, ", ")+")"),
	)
}

// FormatConversion formats one conversion entry as a single line:
//
//	path  from -> to  (size)
func (s *Styles) FormatConversion(entry analysis.Entry) string {
	if entry.Failed() {
		return s.formatFailure(entry)
	}

	transition := s.Charset.Render(entry.Charset) + s.Arrow.Render(" -> ") + s.Charset.Render(entry.Target)

	var status string
	switch {
	case entry.Skipped:
		status = s.Dim.Render("already " + entry.Target)
		transition = s.Charset.Render(entry.Charset)
	case entry.DryRun:
		status = s.Info.Render("would convert") + " " + s.Dim.Render(sizeChange(entry.BytesIn, entry.BytesOut))
	default:
		status = s.Success.Render("converted") + " " + s.Dim.Render(sizeChange(entry.BytesIn, entry.BytesOut))
	}

	line := fmt.Sprintf("%s  %s  %s", s.FilePath.Render(entry.Path), transition, status)
	if entry.Backup != "" && !entry.Skipped {
		line += s.Dim.Render("  backup: " + entry.Backup)
	}
	return line + "\n"
}

func (s *Styles) formatFailure(entry analysis.Entry) string {
	return fmt.Sprintf("%s: %s\n",
		s.FilePath.Render(entry.Path),
		s.Error.Render("error: "+entry.Error),
	)
}

// sizeChange renders "(1.2 kB -> 1.3 kB)".
func sizeChange(in, out int64) string {
	return fmt.Sprintf("(%s -> %s)", humanize.Bytes(uint64(max(in, 0))), humanize.Bytes(uint64(max(out, 0))))
}
