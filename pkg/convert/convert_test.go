package convert

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocharset/pkg/charsets"
)

func TestConvert_Latin1RoundTrip(t *testing.T) {
	t.Parallel()

	latin1 := []byte{'c', 'a', 'f', 0xE9}

	utf8Text, err := Convert(latin1, "ISO-8859-1", "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "café", string(utf8Text))

	back, err := Convert(utf8Text, "utf8", "latin1")
	require.NoError(t, err)
	assert.Equal(t, latin1, back)
}

func TestConvert_StripsSourceBOM(t *testing.T) {
	t.Parallel()

	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("héllo")...)

	out, err := Convert(src, "UTF-8", "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 0xE9, 'l', 'l', 'o'}, out)
}

func TestConvert_UTF16LE(t *testing.T) {
	t.Parallel()

	src := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}

	out, err := Convert(src, "UTF-16LE", "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(out))

	encoded, err := Convert([]byte("hi"), "UTF-8", "UTF-16LE")
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 0x00, 'i', 0x00}, encoded)
}

func TestConvert_UTF16WithoutByteOrderGetsBOM(t *testing.T) {
	t.Parallel()

	out, err := Convert([]byte("hi"), "UTF-8", "UTF-16")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte{0xFE, 0xFF}), "got % X", out)
}

func TestConvert_Unrepresentable(t *testing.T) {
	t.Parallel()

	_, err := Convert([]byte("price: 5€ ✓"), "UTF-8", "ISO-8859-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrepresentable)
}

func TestConvert_InvalidUTF8Source(t *testing.T) {
	t.Parallel()

	_, err := Convert([]byte{'a', 0x80, 'b'}, "UTF-8", "ISO-8859-1")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestConvert_UnknownCharsets(t *testing.T) {
	t.Parallel()

	_, err := Convert([]byte("x"), "klingon-8", "UTF-8")
	require.ErrorIs(t, err, charsets.ErrUnknownCharset)

	_, err = Convert([]byte("x"), "UTF-8", "klingon-8")
	require.ErrorIs(t, err, charsets.ErrUnknownCharset)
}

func TestConvert_ShiftJIS(t *testing.T) {
	t.Parallel()

	sjis, err := Convert([]byte("日本語"), "UTF-8", "Shift_JIS")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("日本語"), sjis)

	back, err := Convert(sjis, "shift_jis", "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "日本語", string(back))
}

func TestSameCharset(t *testing.T) {
	t.Parallel()

	assert.True(t, SameCharset("utf8", "UTF-8"))
	assert.True(t, SameCharset("latin1", "ISO-8859-1"))
	assert.False(t, SameCharset("UTF-8", "UTF-16LE"))
}
