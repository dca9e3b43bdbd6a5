package configloader

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/gocharset/pkg/config"
)

// envVarPrefix is the prefix for all gocharset environment variables.
const envVarPrefix = "GOCHARSET_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"JOBS":            {field: "jobs", typ: envTypeInt, help: "Number of parallel workers (0 = auto)"},
	"MAX_BYTES":       {field: "max_bytes", typ: envTypeInt, help: "Bytes inspected per file"},
	"INCLUDE":         {field: "include", typ: envTypeSlice, help: "Comma-separated include globs"},
	"EXCLUDE":         {field: "exclude", typ: envTypeSlice, help: "Comma-separated exclude globs"},
	"SKIP_HIDDEN":     {field: "skip_hidden", typ: envTypeBool, help: "Skip dot-files and dot-directories"},
	"SKIP_VENDORED":   {field: "skip_vendored", typ: envTypeBool, help: "Skip vendored and generated files"},
	"FALLBACK":        {field: "fallback", typ: envTypeString, help: "Charset reported for uncertain legacy text"},
	"MIN_CONFIDENCE":  {field: "min_confidence", typ: envTypeInt, help: "Statistical confidence threshold (1-100)"},
	"LAST_CHARSET":    {field: "last_charset", typ: envTypeString, help: "Default conversion target"},
	"CACHE_ENABLED":   {field: "cache.enabled", typ: envTypeBool, help: "Use the detection cache"},
	"CACHE_PATH":      {field: "cache.path", typ: envTypeString, help: "Detection cache database file"},
	"BACKUPS_ENABLED": {field: "backups.enabled", typ: envTypeBool, help: "Back up files before converting"},
	"BACKUPS_MODE":    {field: "backups.mode", typ: envTypeString, help: "Backup mode: sidecar or none"},
	"FORMAT":          {field: "format", typ: envTypeString, help: "Output format: text, json or summary"},
	"DRY_RUN":         {field: "dry_run", typ: envTypeBool, help: "Report conversions without writing"},
	"NO_CACHE":        {field: "no_cache", typ: envTypeBool, help: "Bypass the detection cache"},
}

// LoadFromEnv applies GOCHARSET_* environment overrides to cfg.
func LoadFromEnv(cfg *config.Config) error {
	return loadFromEnv(cfg, os.LookupEnv)
}

func loadFromEnv(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range slices.Sorted(maps.Keys(envMappings)) {
		envVar := envVarPrefix + suffix
		value, ok := lookup(envVar)
		if !ok || value == "" {
			continue
		}

		if err := applyEnvValue(cfg, envMappings[suffix], value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, strings.TrimSpace(value))
	case envTypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue splits a comma-separated value, dropping empty items.
func parseSliceValue(value string) []string {
	var result []string
	for part := range strings.SplitSeq(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "fallback":
		cfg.Fallback = value
	case "last_charset":
		cfg.LastCharset = value
	case "cache.path":
		cfg.Cache.Path = value
	case "backups.mode":
		cfg.Backups.Mode = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "skip_hidden":
		cfg.SkipHidden = value
	case "skip_vendored":
		cfg.SkipVendored = value
	case "cache.enabled":
		cfg.Cache.Enabled = value
	case "backups.enabled":
		cfg.Backups.Enabled = value
	case "dry_run":
		cfg.DryRun = value
	case "no_cache":
		cfg.NoCache = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	case "max_bytes":
		cfg.MaxBytes = value
	case "min_confidence":
		cfg.MinConfidence = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "include":
		cfg.Include = value
	case "exclude":
		cfg.Exclude = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the environment variable for a config field, or "".
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns every supported environment variable with a
// description.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.help
	}
	return vars
}
