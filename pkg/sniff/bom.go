package sniff

import "bytes"

type byteOrderMark struct {
	charset string
	prefix  []byte
}

// boms is ordered so that UTF-32LE is tried before UTF-16LE, whose mark is
// a prefix of it.
//
//nolint:gochecknoglobals // Read-only lookup table.
var boms = []byteOrderMark{
	{charset: "UTF-32LE", prefix: []byte{0xFF, 0xFE, 0x00, 0x00}},
	{charset: "UTF-32BE", prefix: []byte{0x00, 0x00, 0xFE, 0xFF}},
	{charset: "UTF-8", prefix: []byte{0xEF, 0xBB, 0xBF}},
	{charset: "UTF-16LE", prefix: []byte{0xFF, 0xFE}},
	{charset: "UTF-16BE", prefix: []byte{0xFE, 0xFF}},
}

// DetectBOM returns the charset announced by a leading byte-order mark and
// the mark's length, or "" and 0 when buf has none.
func DetectBOM(buf []byte) (string, int) {
	for _, bom := range boms {
		if bytes.HasPrefix(buf, bom.prefix) {
			return bom.charset, len(bom.prefix)
		}
	}
	return "", 0
}

// BOMFor returns the byte-order mark of a Unicode charset, or nil.
func BOMFor(charset string) []byte {
	for _, bom := range boms {
		if bom.charset == charset {
			return bom.prefix
		}
	}
	return nil
}
