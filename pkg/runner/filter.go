package runner

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gobwas/glob"
)

// foldCase reports whether base-name matching ignores case, following the
// host filesystem convention.
//
//nolint:gochecknoglobals // Read-only platform flag.
var foldCase = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// Filter decides which base names are kept.
// A name is kept iff (no include patterns OR it matches at least one include
// pattern) AND it matches no exclude pattern.
type Filter struct {
	include  []glob.Glob
	exclude  []glob.Glob
	foldCase bool
}

// NewFilter compiles include and exclude patterns.
// Patterns use github.com/gobwas/glob syntax: *, ?, [a-z], {a,b}.
func NewFilter(include, exclude []string) (*Filter, error) {
	return newFilter(include, exclude, foldCase)
}

func newFilter(include, exclude []string, fold bool) (*Filter, error) {
	f := &Filter{foldCase: fold}

	var err error
	if f.include, err = compileGlobs(include, fold); err != nil {
		return nil, err
	}
	if f.exclude, err = compileGlobs(exclude, fold); err != nil {
		return nil, err
	}

	return f, nil
}

func compileGlobs(patterns []string, fold bool) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if fold {
			pattern = strings.ToLower(pattern)
		}
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		globs = append(globs, compiled)
	}
	return globs, nil
}

// Match reports whether a file with the given base name is kept.
func (f *Filter) Match(name string) bool {
	name = f.normalize(name)

	if matchAny(f.exclude, name) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	return matchAny(f.include, name)
}

// Excluded reports whether the base name matches an exclude pattern.
// It is used to prune directories during expansion.
func (f *Filter) Excluded(name string) bool {
	return matchAny(f.exclude, f.normalize(name))
}

func (f *Filter) normalize(name string) string {
	if f.foldCase {
		return strings.ToLower(name)
	}
	return name
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
