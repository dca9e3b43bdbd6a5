package sniff_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/yaklabco/gocharset/pkg/sniff"
)

func TestDetect_BOM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "utf-8", input: []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, want: "UTF-8"},
		{name: "utf-8 with garbage after", input: []byte{0xEF, 0xBB, 0xBF, 0x80, 0xFF, 0x00}, want: "UTF-8"},
		{name: "utf-16le", input: []byte{0xFF, 0xFE, 'h', 0x00}, want: "UTF-16LE"},
		{name: "utf-16be", input: []byte{0xFE, 0xFF, 0x00, 'h'}, want: "UTF-16BE"},
		{name: "utf-32le before utf-16le", input: []byte{0xFF, 0xFE, 0x00, 0x00, 'h', 0, 0, 0}, want: "UTF-32LE"},
		{name: "utf-32be", input: []byte{0x00, 0x00, 0xFE, 0xFF}, want: "UTF-32BE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sniff.New(sniff.Options{}).Detect(tt.input, 0)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, 100, got.Confidence)
			assert.Equal(t, sniff.MethodBOM, got.Method)
			assert.True(t, got.BOM)
		})
	}
}

func TestDetect_ASCIIIsUTF8(t *testing.T) {
	t.Parallel()

	got := sniff.New(sniff.Options{}).Detect([]byte("plain old ascii\n\tline two\r\n"), 0)
	assert.Equal(t, "UTF-8", got.Name)
	assert.Equal(t, 90, got.Confidence)
	assert.Equal(t, sniff.MethodUTF8, got.Method)
	assert.False(t, got.BOM)
}

func TestDetect_MultibyteUTF8(t *testing.T) {
	t.Parallel()

	got := sniff.New(sniff.Options{}).Detect([]byte("grüße, 日本語, 🎉"), 0)
	assert.Equal(t, "UTF-8", got.Name)
	assert.Equal(t, 99, got.Confidence)
}

func TestDetect_Empty(t *testing.T) {
	t.Parallel()

	got := sniff.New(sniff.Options{}).Detect(nil, 0)
	assert.Equal(t, "UTF-8", got.Name)
	assert.Equal(t, 50, got.Confidence)
	assert.Equal(t, 0, got.Inspected)
}

func TestDetect_InvalidUTF8IsNotUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "lone continuation at start", input: append([]byte{0x80}, "abc def ghi"...)},
		{name: "overlong slash", input: []byte("path\xC0\xAFname")},
		{name: "overlong three byte", input: []byte("x\xE0\x80\x80y")},
		{name: "surrogate", input: []byte("x\xED\xA0\x80y")},
		{name: "above U+10FFFF", input: []byte("x\xF4\x90\x80\x80y")},
		{name: "truncated sequence inside buffer", input: []byte("x\xE2\x82y")},
		{name: "incomplete tail without truncation", input: []byte("price \xE2\x82")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sniff.New(sniff.Options{}).Detect(tt.input, 0)
			assert.NotEqual(t, "UTF-8", got.Name)
		})
	}
}

func TestDetect_TruncatedTailTolerated(t *testing.T) {
	t.Parallel()

	// "€" is E2 82 AC; the cap cuts it after two bytes.
	input := []byte("price: €")
	limit := len(input) - 1

	got := sniff.New(sniff.Options{}).Detect(input, limit)
	assert.Equal(t, "UTF-8", got.Name)
	assert.True(t, got.Truncated)
	assert.Equal(t, limit, got.Inspected)
}

func TestDetect_OnlyPrefixInspected(t *testing.T) {
	t.Parallel()

	// The invalid byte sits past the cap, so it is never seen.
	input := append([]byte(strings.Repeat("a", 64)), 0xFF)

	got := sniff.New(sniff.Options{}).Detect(input, 64)
	assert.Equal(t, "UTF-8", got.Name)
	assert.True(t, got.Truncated)
	assert.Equal(t, 64, got.Inspected)
}

func TestDetect_UTF16WithoutBOM(t *testing.T) {
	t.Parallel()

	text := "Hello, world. This is UTF-16 text without a byte order mark."

	le, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)
	be, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	s := sniff.New(sniff.Options{})

	gotLE := s.Detect(le, 0)
	assert.Equal(t, "UTF-16LE", gotLE.Name)
	assert.Equal(t, sniff.MethodUTF16, gotLE.Method)
	assert.Equal(t, 70, gotLE.Confidence)

	gotBE := s.Detect(be, 0)
	assert.Equal(t, "UTF-16BE", gotBE.Name)
}

func TestDetect_BinaryIsUnknown(t *testing.T) {
	t.Parallel()

	binary := []byte{
		0x7F, 'E', 'L', 'F', 0x02, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x3E, 0x00, 0x01, 0x00, 0x00, 0x00,
		0xFF, 0xE8, 0x90, 0xC3,
	}

	got := sniff.New(sniff.Options{}).Detect(binary, 0)
	assert.Equal(t, sniff.Unknown, got.Name)
	assert.Equal(t, sniff.MethodBinary, got.Method)
	assert.True(t, got.Inconclusive())
}

func TestDetect_ASCIIWithNULIsUTF8(t *testing.T) {
	t.Parallel()

	got := sniff.New(sniff.Options{}).Detect([]byte("ab\x00cd"), 0)
	assert.Equal(t, "UTF-8", got.Name)
	assert.Equal(t, 90, got.Confidence)
	assert.Equal(t, sniff.MethodUTF8, got.Method)
}

func TestDetect_ControlBytesAreUnknown(t *testing.T) {
	t.Parallel()

	input := bytes.Repeat([]byte{0x01, 0x02, 'a', 0x90}, 32)

	got := sniff.New(sniff.Options{}).Detect(input, 0)
	assert.Equal(t, sniff.Unknown, got.Name)
}

func TestDetect_LegacyEncoding(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("Le cœur déçu mais l'âme plutôt naïve, Louÿs rêva de crapaüter en canoë au delà des îles. ", 8)
	latin, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	got := sniff.New(sniff.Options{}).Detect(latin, 0)
	assert.NotEqual(t, "UTF-8", got.Name)
	assert.NotEqual(t, sniff.Unknown, got.Name)
	assert.Contains(t, []sniff.Method{sniff.MethodStatistical, sniff.MethodFallback}, got.Method)
	assert.LessOrEqual(t, got.Confidence, 80)
}

func TestDetect_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := [][]byte{
		[]byte("ascii"),
		[]byte("caf\xe9 cr\xe8me br\xfbl\xe9e, na\xefve fa\xe7ade"),
		{0x00, 0x01, 0x02},
		[]byte("日本語"),
	}

	s := sniff.New(sniff.Options{})
	fresh := sniff.New(sniff.Options{})

	for _, in := range inputs {
		first := s.Detect(in, 0)
		for range 3 {
			assert.Equal(t, first, s.Detect(in, 0))
		}
		assert.Equal(t, first, fresh.Detect(in, 0))
	}
}

func TestDetect_FallbackOption(t *testing.T) {
	t.Parallel()

	// A single high byte gives chardet nothing to work with.
	s := sniff.New(sniff.Options{Fallback: "windows-1252", MinConfidence: 100})
	got := s.Detect([]byte("x\xe9"), 0)

	assert.Equal(t, "windows-1252", got.Name)
	assert.Equal(t, sniff.MethodFallback, got.Method)
	assert.Equal(t, 10, got.Confidence)
}

func TestDetectReader(t *testing.T) {
	t.Parallel()

	s := sniff.New(sniff.Options{})

	got, err := s.DetectReader(strings.NewReader("hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", got.Name)
	assert.Equal(t, 5, got.Inspected)
	assert.False(t, got.Truncated)

	got, err = s.DetectReader(strings.NewReader(strings.Repeat("z", 100)), 10)
	require.NoError(t, err)
	assert.True(t, got.Truncated)
	assert.Equal(t, 10, got.Inspected)

	// Exactly at the cap is not truncated.
	got, err = s.DetectReader(strings.NewReader(strings.Repeat("z", 10)), 10)
	require.NoError(t, err)
	assert.False(t, got.Truncated)
}

func TestDetectBOM(t *testing.T) {
	t.Parallel()

	name, size := sniff.DetectBOM([]byte{0xEF, 0xBB, 0xBF, 'a'})
	assert.Equal(t, "UTF-8", name)
	assert.Equal(t, 3, size)

	name, size = sniff.DetectBOM([]byte("abc"))
	assert.Empty(t, name)
	assert.Zero(t, size)

	assert.Equal(t, []byte{0xFE, 0xFF}, sniff.BOMFor("UTF-16BE"))
	assert.Nil(t, sniff.BOMFor("ISO-8859-1"))
}
