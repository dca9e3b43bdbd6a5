package analysis

// SortField specifies how to sort the ByCharset view.
type SortField string

const (
	// SortByCount sorts by file count (descending by default).
	SortByCount SortField = "count"
	// SortByAlpha sorts alphabetically.
	SortByAlpha SortField = "alpha"
)

// IsValid returns true if the sort field is valid.
func (s SortField) IsValid() bool {
	switch s {
	case SortByCount, SortByAlpha:
		return true
	default:
		return false
	}
}

// Options configures the analysis functions.
type Options struct {
	// IncludeByCharset includes the per-charset grouping.
	IncludeByCharset bool

	// IncludePaths lists file paths under each charset.
	IncludePaths bool

	// SortBy specifies how to sort ByCharset.
	SortBy SortField

	// SortDesc sorts in descending order (highest first).
	SortDesc bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string

	// OnEntry, if set, is called with every entry as soon as it arrives,
	// from the draining goroutine.
	OnEntry func(Entry)
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		IncludeByCharset: true,
		SortBy:           SortByCount,
		SortDesc:         true,
	}
}
