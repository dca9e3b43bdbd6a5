// Package analysis turns result streams into reports that renderers share.
package analysis

import (
	"cmp"
	"errors"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/gocharset/pkg/convert"
	"github.com/yaklabco/gocharset/pkg/runner"
	"github.com/yaklabco/gocharset/pkg/sniff"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// makeRelativePath converts an absolute path to a relative path from workDir.
// If workDir is empty or conversion fails, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil {
		return absPath
	}
	return relPath
}

// errorMessage drops the path prefix of a runner.PathError, which the entry
// already carries.
func errorMessage(err error) string {
	var pathErr *runner.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

// builder holds temporary state while a stream is drained.
type builder struct {
	opts      Options
	report    *Report
	byCharset map[string]*CharsetAnalysis
	started   time.Time
}

func newBuilder(kind Kind, listErrors []string, opts Options) *builder {
	return &builder{
		opts: opts,
		report: &Report{
			Kind:       kind,
			Entries:    []Entry{},
			ListErrors: slices.Clone(listErrors),
			Totals:     Totals{ListErrors: len(listErrors)},
			Version:    ReportVersion,
			Timestamp:  time.Now(),
		},
		byCharset: make(map[string]*CharsetAnalysis),
		started:   time.Now(),
	}
}

func (b *builder) add(entry Entry) {
	entry.Path = makeRelativePath(entry.Path, b.opts.WorkingDir)
	if b.opts.OnEntry != nil {
		b.opts.OnEntry(entry)
	}

	totals := &b.report.Totals
	totals.Files++
	b.report.Entries = append(b.report.Entries, entry)

	if entry.Failed() {
		totals.Errored++
		return
	}

	if entry.Charset == sniff.Unknown {
		totals.Unknown++
	} else {
		totals.Detected++
	}

	ca, ok := b.byCharset[entry.Charset]
	if !ok {
		ca = &CharsetAnalysis{Charset: entry.Charset}
		b.byCharset[entry.Charset] = ca
	}
	ca.Files++
	if b.opts.IncludePaths {
		ca.Paths = append(ca.Paths, entry.Path)
	}
}

func (b *builder) finish() *Report {
	b.report.Duration = time.Since(b.started)

	slices.SortFunc(b.report.Entries, func(left, right Entry) int {
		return cmp.Compare(left.Path, right.Path)
	})

	if b.opts.IncludeByCharset {
		groups := make([]CharsetAnalysis, 0, len(b.byCharset))
		for _, ca := range b.byCharset {
			slices.Sort(ca.Paths)
			groups = append(groups, *ca)
		}
		sortCharsetAnalysis(groups, b.opts.SortBy, b.opts.SortDesc)
		b.report.ByCharset = groups
	}

	return b.report
}

// Detections drains a detection stream into a Report. listErrors are the
// listing failures that preceded the run.
func Detections(ch <-chan runner.ResultItem[sniff.Guess], listErrors []string, opts Options) *Report {
	b := newBuilder(KindDetect, listErrors, opts)

	for item := range ch {
		entry := Entry{Path: item.SourcePath}
		if item.Err != nil {
			entry.Error = errorMessage(item.Err)
		} else {
			guess := item.Payload
			entry.Charset = guess.Name
			entry.Confidence = guess.Confidence
			entry.Method = string(guess.Method)
			entry.BOM = guess.BOM
			entry.Truncated = guess.Truncated
		}
		b.add(entry)
	}

	return b.finish()
}

// Conversions drains a conversion stream into a Report.
func Conversions(ch <-chan runner.ResultItem[convert.Outcome], listErrors []string, opts Options) *Report {
	b := newBuilder(KindConvert, listErrors, opts)

	for item := range ch {
		entry := Entry{Path: item.SourcePath}
		if item.Err != nil {
			entry.Error = errorMessage(item.Err)
			b.add(entry)
			continue
		}

		outcome := item.Payload
		entry.Charset = outcome.From
		entry.Target = outcome.To
		entry.Changed = outcome.Changed
		entry.Skipped = outcome.Skipped
		entry.DryRun = outcome.DryRun
		entry.BytesIn = outcome.BytesIn
		entry.BytesOut = outcome.BytesOut
		entry.Backup = outcome.Backup
		b.add(entry)

		totals := &b.report.Totals
		if outcome.Changed {
			totals.Converted++
		}
		if outcome.Skipped {
			totals.Skipped++
		}
		totals.BytesIn += outcome.BytesIn
		totals.BytesOut += outcome.BytesOut
	}

	return b.finish()
}

func sortCharsetAnalysis(groups []CharsetAnalysis, sortBy SortField, desc bool) {
	slices.SortFunc(groups, func(left, right CharsetAnalysis) int {
		if sortBy == SortByAlpha {
			// Alphabetical sorting is always ascending (A-Z)
			return cmp.Compare(left.Charset, right.Charset)
		}

		result := cmp.Compare(left.Files, right.Files)
		if desc {
			result = -result
		}
		if result == 0 {
			result = cmp.Compare(left.Charset, right.Charset)
		}
		return result
	})
}
