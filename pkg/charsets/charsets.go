// Package charsets is the registry of character encodings gocharset can read
// and write. It is built from golang.org/x/text and names every encoding by
// its preferred MIME name, with IANA and WHATWG labels as aliases.
package charsets

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// ErrUnknownCharset indicates a name that matches no supported encoding.
var ErrUnknownCharset = errors.New("unknown charset")

// Charset is one supported encoding.
type Charset struct {
	// Name is the canonical name: the preferred MIME name where one exists.
	Name string `json:"name"`

	// Aliases are other accepted names, without Name itself.
	Aliases []string `json:"aliases,omitempty"`

	enc encoding.Encoding
}

// Encoding returns the x/text encoding, or nil for a zero Charset.
func (c Charset) Encoding() encoding.Encoding {
	return c.enc
}

// Label returns the name followed by its aliases, separated by " / ".
func (c Charset) Label() string {
	return strings.Join(append([]string{c.Name}, c.Aliases...), " / ")
}

// Matches reports whether name equals the canonical name or an alias,
// ignoring case.
func (c Charset) Matches(name string) bool {
	if strings.EqualFold(c.Name, name) {
		return true
	}
	for _, alias := range c.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

type registry struct {
	list   []Charset
	byName map[string]int
}

//nolint:gochecknoglobals // Built once, read-only afterwards.
var (
	registryOnce sync.Once
	shared       *registry
)

func load() *registry {
	registryOnce.Do(func() {
		shared = build()
	})
	return shared
}

func sources() [][]encoding.Encoding {
	return [][]encoding.Encoding{
		unicode.All,
		utf32.All,
		charmap.All,
		japanese.All,
		korean.All,
		simplifiedchinese.All,
		traditionalchinese.All,
	}
}

func build() *registry {
	reg := &registry{byName: make(map[string]int)}

	for _, group := range sources() {
		for _, enc := range group {
			name := nameOf(enc)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := reg.byName[key]; dup {
				continue
			}
			reg.byName[key] = len(reg.list)
			reg.list = append(reg.list, Charset{Name: name, Aliases: aliasesOf(enc, name), enc: enc})
		}
	}

	slices.SortFunc(reg.list, func(a, b Charset) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	for i, c := range reg.list {
		reg.byName[strings.ToLower(c.Name)] = i
	}

	return reg
}

// nameOf returns the canonical name of enc: MIME, then IANA, then WHATWG,
// then the x/text description.
func nameOf(enc encoding.Encoding) string {
	for _, index := range []*ianaindex.Index{ianaindex.MIME, ianaindex.IANA} {
		if name, err := index.Name(enc); err == nil && name != "" {
			return name
		}
	}
	if name, err := htmlindex.Name(enc); err == nil && name != "" {
		return name
	}
	if s, ok := enc.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

func aliasesOf(enc encoding.Encoding, name string) []string {
	var candidates []string
	if iana, err := ianaindex.IANA.Name(enc); err == nil {
		candidates = append(candidates, iana)
	}
	if web, err := htmlindex.Name(enc); err == nil {
		candidates = append(candidates, web)
	}
	if s, ok := enc.(fmt.Stringer); ok {
		candidates = append(candidates, s.String())
	}

	var aliases []string
	seen := map[string]bool{strings.ToLower(name): true}
	for _, alias := range candidates {
		key := strings.ToLower(alias)
		if alias == "" || seen[key] {
			continue
		}
		seen[key] = true
		aliases = append(aliases, alias)
	}
	return aliases
}

// List returns every supported charset sorted case-insensitively by name.
// The slice is a copy and may be modified by the caller.
func List() []Charset {
	return slices.Clone(load().list)
}

// Filter returns the charsets whose Label contains query, ignoring case.
// An empty query returns list unchanged.
func Filter(list []Charset, query string) []Charset {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list
	}

	var out []Charset
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Label()), query) {
			out = append(out, c)
		}
	}
	return out
}

// Lookup resolves an IANA, MIME or WHATWG name, or any registered alias,
// ignoring case.
func Lookup(name string) (Charset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Charset{}, fmt.Errorf("%w: empty name", ErrUnknownCharset)
	}

	reg := load()
	if idx, ok := reg.byName[strings.ToLower(name)]; ok {
		return reg.list[idx], nil
	}

	// Some detectors spell names with extra hyphens, e.g. "GB-18030".
	for _, candidate := range []string{name, strings.ReplaceAll(name, "-", "")} {
		if enc := resolve(candidate); enc != nil {
			canonical := nameOf(enc)
			if idx, ok := reg.byName[strings.ToLower(canonical)]; ok {
				return reg.list[idx], nil
			}
			return Charset{Name: canonical, enc: enc}, nil
		}

		for _, c := range reg.list {
			if c.Matches(candidate) {
				return c, nil
			}
		}
	}

	return Charset{}, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

func resolve(name string) encoding.Encoding {
	// IANA knows names x/text does not implement and reports them with a
	// nil encoding and no error.
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc
	}
	return nil
}

// Canonical returns the canonical name for name, or name itself when it is
// not a known charset.
func Canonical(name string) string {
	c, err := Lookup(name)
	if err != nil {
		return name
	}
	return c.Name
}

// IsUnicode reports whether the charset is one of the UTF encodings.
func IsUnicode(name string) bool {
	return strings.HasPrefix(strings.ToUpper(Canonical(name)), "UTF-")
}
