package configloader

import (
	"slices"

	"github.com/yaklabco/gocharset/pkg/config"
)

// merge layers override on top of base and returns a new Config.
//
// It is used for CLI flags, where an unset flag is the zero value:
//   - Scalars: override wins when non-zero.
//   - Booleans: override can only switch a setting on.
//   - Slices: override replaces base when non-nil.
//
// File layers are decoded directly onto the running Config instead (see
// config.DecodeInto), so a file can also switch a boolean off.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override.Clone()
	}
	if override == nil {
		return base.Clone()
	}

	result := base.Clone()

	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.MaxBytes != 0 {
		result.MaxBytes = override.MaxBytes
	}
	if override.Fallback != "" {
		result.Fallback = override.Fallback
	}
	if override.MinConfidence != 0 {
		result.MinConfidence = override.MinConfidence
	}
	if override.LastCharset != "" {
		result.LastCharset = override.LastCharset
	}
	if override.Cache.Path != "" {
		result.Cache.Path = override.Cache.Path
	}
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Format != "" {
		result.Format = override.Format
	}

	if override.SkipHidden {
		result.SkipHidden = true
	}
	if override.SkipVendored {
		result.SkipVendored = true
	}
	if override.DryRun {
		result.DryRun = true
	}
	if override.NoCache {
		result.NoCache = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}

	if override.Include != nil {
		result.Include = slices.Clone(override.Include)
	}
	if override.Exclude != nil {
		result.Exclude = slices.Clone(override.Exclude)
	}

	return result
}

// MergeAll merges configurations in order, later ones taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
