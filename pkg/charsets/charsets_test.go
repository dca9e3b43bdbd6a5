package charsets_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocharset/pkg/charsets"
)

func TestList_SortedAndUnique(t *testing.T) {
	t.Parallel()

	list := charsets.List()
	require.NotEmpty(t, list)

	seen := make(map[string]bool)
	for i, c := range list {
		key := strings.ToLower(c.Name)
		assert.False(t, seen[key], "duplicate charset %s", c.Name)
		seen[key] = true

		assert.NotNil(t, c.Encoding(), "charset %s has no encoding", c.Name)

		if i > 0 {
			prev := strings.ToLower(list[i-1].Name)
			assert.LessOrEqual(t, prev, key, "list not sorted at %s", c.Name)
		}

		for _, alias := range c.Aliases {
			assert.NotEqual(t, key, strings.ToLower(alias), "alias repeats name for %s", c.Name)
		}
	}

	for _, want := range []string{"utf-8", "utf-16le", "utf-16be", "utf-32le", "iso-8859-1", "windows-1252", "shift_jis", "gb18030", "big5", "euc-kr"} {
		assert.True(t, seen[want], "missing %s", want)
	}
}

func TestList_ReturnsCopy(t *testing.T) {
	t.Parallel()

	first := charsets.List()
	first[0].Name = "mutated"

	assert.NotEqual(t, "mutated", charsets.List()[0].Name)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "canonical", input: "UTF-8", want: "UTF-8"},
		{name: "case insensitive", input: "iso-8859-1", want: "ISO-8859-1"},
		{name: "iana alias", input: "latin1", want: "ISO-8859-1"},
		{name: "whatwg label", input: "utf8", want: "UTF-8"},
		{name: "shift jis", input: "shift_jis", want: "Shift_JIS"},
		{name: "hyphenated detector name", input: "GB-18030", want: "GB18030"},
		{name: "windows codepage", input: "windows-1252", want: "windows-1252"},
		{name: "surrounding space", input: "  UTF-16LE ", want: "UTF-16LE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := charsets.Lookup(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name)
			assert.NotNil(t, c.Encoding())
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	t.Parallel()

	_, err := charsets.Lookup("no-such-charset")
	require.ErrorIs(t, err, charsets.ErrUnknownCharset)

	_, err = charsets.Lookup("")
	require.ErrorIs(t, err, charsets.ErrUnknownCharset)
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ISO-8859-1", charsets.Canonical("latin1"))
	assert.Equal(t, "ISO-8859-1", charsets.Canonical("ISO-8859-1"))
	assert.Equal(t, "ISO-8859-2", charsets.Canonical("latin2"))
	assert.Equal(t, "ISO-8859-1", charsets.Canonical("ISO_8859-1:1987"))
	assert.Equal(t, "bogus", charsets.Canonical("bogus"))
}

func TestLookup_KeepsIANANameAsAlias(t *testing.T) {
	t.Parallel()

	c, err := charsets.Lookup("ISO-8859-2")
	require.NoError(t, err)
	assert.Equal(t, "ISO-8859-2", c.Name)
	assert.Contains(t, c.Aliases, "ISO_8859-2:1987")
}

func TestIsUnicode(t *testing.T) {
	t.Parallel()

	assert.True(t, charsets.IsUnicode("utf8"))
	assert.True(t, charsets.IsUnicode("UTF-16BE"))
	assert.False(t, charsets.IsUnicode("ISO-8859-1"))
}

func TestLabel(t *testing.T) {
	t.Parallel()

	c := charsets.Charset{Name: "ISO-8859-1", Aliases: []string{"latin1", "l1"}}
	assert.Equal(t, "ISO-8859-1 / latin1 / l1", c.Label())
	assert.True(t, c.Matches("L1"))
	assert.False(t, c.Matches("l2"))
}

func TestFilter(t *testing.T) {
	t.Parallel()

	list := charsets.List()

	assert.Len(t, charsets.Filter(list, ""), len(list))
	assert.Empty(t, charsets.Filter(list, "zzz-nothing"))

	matches := charsets.Filter(list, "8859-1")
	require.NotEmpty(t, matches)
	for _, c := range matches {
		assert.Contains(t, strings.ToLower(c.Label()), "8859-1")
	}

	upper := charsets.Filter(list, "SHIFT")
	lower := charsets.Filter(list, "shift")
	assert.Equal(t, len(lower), len(upper))
}
