// Package convert re-encodes files from one charset to another.
package convert

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gocharset/pkg/charsets"
	"github.com/yaklabco/gocharset/pkg/sniff"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrUnrepresentable indicates the text holds a character the target
	// charset cannot encode.
	ErrUnrepresentable = errors.New("character not representable in target charset")

	// ErrInvalidSource indicates the input is not valid in its source charset.
	ErrInvalidSource = errors.New("invalid input for source charset")

	// ErrModified indicates the file changed while it was being converted.
	ErrModified = errors.New("file modified during conversion")

	// ErrInconclusive indicates the source charset could not be detected and
	// none was given.
	ErrInconclusive = errors.New("source charset could not be detected")
)

// Convert transcodes src from one charset to another through UTF-8.
//
// A byte-order mark matching from is dropped. Targets whose byte order is
// not fixed (UTF-16, UTF-32) get a BOM. Conversion is strict: characters
// the target cannot represent fail with ErrUnrepresentable instead of being
// replaced.
func Convert(src []byte, from, to string) ([]byte, error) {
	source, err := charsets.Lookup(from)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	target, err := charsets.Lookup(to)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	if name, n := sniff.DetectBOM(src); n > 0 && strings.EqualFold(name, source.Name) {
		src = src[n:]
	}

	if strings.EqualFold(source.Name, "UTF-8") && !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, source.Name)
	}

	text, err := source.Encoding().NewDecoder().Bytes(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSource, source.Name, err)
	}

	out, err := target.Encoding().NewEncoder().Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnrepresentable, target.Name, err)
	}

	return out, nil
}

// SameCharset reports whether two names resolve to the same charset.
func SameCharset(a, b string) bool {
	return strings.EqualFold(charsets.Canonical(a), charsets.Canonical(b))
}
