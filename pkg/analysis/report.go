package analysis

import "time"

// Kind names the operation a Report describes.
type Kind string

// Report kinds.
const (
	KindDetect  Kind = "detect"
	KindConvert Kind = "convert"
)

// Report contains pre-computed views of one detection or conversion run.
// Computed once, used by all renderers.
type Report struct {
	// Kind is the operation that produced the report.
	Kind Kind `json:"kind"`

	// Entries holds one entry per file, sorted by path.
	Entries []Entry `json:"files"`

	// ByCharset groups successful entries by (source) charset.
	ByCharset []CharsetAnalysis `json:"byCharset,omitempty"`

	// ListErrors are path-level failures from file listing.
	ListErrors []string `json:"listErrors,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary"`

	// Version is the report format version.
	Version string `json:"version"`

	// Timestamp is when the analysis was performed.
	Timestamp time.Time `json:"timestamp"`

	// Duration is how long the run took to drain.
	Duration time.Duration `json:"durationNs"`
}

// Entry is the outcome for a single file.
type Entry struct {
	Path string `json:"path"`

	// Charset is the detected, or source, charset.
	Charset    string `json:"charset,omitempty"`
	Confidence int    `json:"confidence,omitempty"`
	Method     string `json:"method,omitempty"`
	BOM        bool   `json:"bom,omitempty"`
	Truncated  bool   `json:"truncated,omitempty"`

	// Conversion fields.
	Target   string `json:"target,omitempty"`
	Changed  bool   `json:"changed,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
	DryRun   bool   `json:"dryRun,omitempty"`
	BytesIn  int64  `json:"bytesIn,omitempty"`
	BytesOut int64  `json:"bytesOut,omitempty"`
	Backup   string `json:"backup,omitempty"`

	// Error is set when the file failed.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the entry carries an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Files      int `json:"files"`
	Detected   int `json:"detected"`
	Unknown    int `json:"unknown"`
	Errored    int `json:"errored"`
	Converted  int `json:"converted,omitempty"`
	Skipped    int `json:"skipped,omitempty"`
	ListErrors int `json:"listErrors"`

	BytesIn  int64 `json:"bytesIn,omitempty"`
	BytesOut int64 `json:"bytesOut,omitempty"`
}

// HasErrors reports whether any file or listed path failed.
func (t Totals) HasErrors() bool {
	return t.Errored > 0 || t.ListErrors > 0
}

// CharsetAnalysis contains aggregated data for a single charset.
type CharsetAnalysis struct {
	Charset string   `json:"charset"`
	Files   int      `json:"files"`
	Paths   []string `json:"paths,omitempty"`
}
