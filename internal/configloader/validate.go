package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/gocharset/pkg/charsets"
	"github.com/yaklabco/gocharset/pkg/config"
	"github.com/yaklabco/gocharset/pkg/runner"
)

// Limits checked by Validate.
const (
	maxMaxBytes      = 64 << 20
	smallMaxBytes    = 1024
	maxConfidenceCap = 100
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "backups.mode").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	switch {
	case cfg.MaxBytes <= 0:
		result.fail("max_bytes", cfg.MaxBytes, "max_bytes must be > 0")
	case cfg.MaxBytes > maxMaxBytes:
		result.fail("max_bytes", cfg.MaxBytes, "max_bytes must be <= %d", maxMaxBytes)
	case cfg.MaxBytes < smallMaxBytes:
		result.warn("max_bytes", cfg.MaxBytes, "inspecting fewer than %d bytes makes legacy charsets hard to tell apart", smallMaxBytes)
	}

	if cfg.MinConfidence < 0 || cfg.MinConfidence > maxConfidenceCap {
		result.fail("min_confidence", cfg.MinConfidence, "min_confidence must be between 0 and %d", maxConfidenceCap)
	}

	validateCharset(result, "fallback", cfg.Fallback)
	validateCharset(result, "last_charset", cfg.LastCharset)

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json, summary", cfg.Format)
	}

	if cfg.Backups.Mode != "" && !IsValidBackupMode(cfg.Backups.Mode) {
		result.fail("backups.mode", cfg.Backups.Mode, "invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}

	if cfg.Cache.Path != "" && !filepath.IsAbs(cfg.Cache.Path) {
		result.warn("cache.path", cfg.Cache.Path, "relative cache path resolves against the working directory")
	}

	validateGlobs(result, "include", cfg.Include)
	validateGlobs(result, "exclude", cfg.Exclude)

	return result
}

func validateCharset(result *ValidationResult, field, name string) {
	if name == "" {
		return
	}
	if _, err := charsets.Lookup(name); err != nil {
		result.fail(field, name, "unknown charset %q; run 'gocharset charsets' for the list", name)
	}
}

func validateGlobs(result *ValidationResult, field string, patterns []string) {
	for i, pattern := range patterns {
		if _, err := runner.NewFilter([]string{pattern}, nil); err != nil {
			result.fail(fmt.Sprintf("%s[%d]", field, i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

// IsValidBackupMode returns true if the backup mode is valid.
func IsValidBackupMode(mode string) bool {
	return mode == "sidecar" || mode == "none"
}
