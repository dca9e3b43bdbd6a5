// Package config defines the configuration types for gocharset.
// These are plain data structures; discovery and layering live in
// internal/configloader.
package config

// Default values.
const (
	DefaultMaxBytes      = 256 * 1024
	DefaultFallback      = "ISO-8859-1"
	DefaultMinConfidence = 10
	DefaultLastCharset   = "UTF-8"
	DefaultBackupMode    = "sidecar"
)

// OutputFormat specifies how results are printed.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatSummary OutputFormat = "summary"
)

// IsValid reports whether f is a known format.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatSummary:
		return true
	default:
		return false
	}
}

// CacheConfig controls the detection cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Path is the SQLite database file. Empty means the per-user cache dir.
	Path string `mapstructure:"path" yaml:"path,omitempty" json:"path,omitempty"`
}

// BackupsConfig controls backups when converting files.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode" json:"mode"` // "sidecar" or "none"
}

// Config is the root configuration structure.
type Config struct {
	// Jobs is the number of parallel workers; 0 means one per CPU.
	Jobs int `mapstructure:"jobs" yaml:"jobs" json:"jobs"`

	// MaxBytes caps how much of each file is inspected.
	MaxBytes int `mapstructure:"max_bytes" yaml:"max_bytes" json:"max_bytes"`

	// Include and Exclude are base-name glob patterns.
	Include []string `mapstructure:"include" yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// SkipHidden ignores dot-files and dot-directories.
	SkipHidden bool `mapstructure:"skip_hidden" yaml:"skip_hidden" json:"skip_hidden"`

	// SkipVendored ignores vendored and generated files (node_modules,
	// vendor, *.min.js and the like).
	SkipVendored bool `mapstructure:"skip_vendored" yaml:"skip_vendored" json:"skip_vendored"`

	// Fallback is reported for legacy text the statistical detector is not
	// sure about.
	Fallback string `mapstructure:"fallback" yaml:"fallback" json:"fallback"`

	// MinConfidence is the statistical score (1-100) below which Fallback wins.
	MinConfidence int `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`

	// LastCharset is the most recent conversion target, used as the default
	// for the next one.
	LastCharset string `mapstructure:"last_charset" yaml:"last_charset" json:"last_charset"`

	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache" json:"cache"`
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups" json:"backups"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"-" yaml:"-" json:"-"`

	// DryRun reports conversions without writing files.
	DryRun bool `mapstructure:"-" yaml:"-" json:"-"`

	// NoCache bypasses the detection cache for one run.
	NoCache bool `mapstructure:"-" yaml:"-" json:"-"`

	// NoBackups disables backups for one run.
	NoBackups bool `mapstructure:"-" yaml:"-" json:"-"`
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		Jobs:          0,
		MaxBytes:      DefaultMaxBytes,
		Fallback:      DefaultFallback,
		MinConfidence: DefaultMinConfidence,
		LastCharset:   DefaultLastCharset,
		Cache: CacheConfig{
			Enabled: true,
		},
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    DefaultBackupMode,
		},
		Format: FormatText,
	}
}

// CacheEnabled reports whether this run should use the detection cache.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled && !c.NoCache
}

// BackupsEnabled reports whether this run should write backups.
func (c *Config) BackupsEnabled() bool {
	return c.Backups.Enabled && !c.NoBackups && c.Backups.Mode != "none"
}
