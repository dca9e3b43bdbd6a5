package sniff

// validUTF8 checks b against the UTF-8 encoding rules of RFC 3629: no
// overlong forms, no surrogates, nothing above U+10FFFF.
//
// An incomplete sequence at the very end is accepted only when truncated is
// set, since the cut may have fallen inside a character. multibyte reports
// whether any non-ASCII sequence was seen.
func validUTF8(b []byte, truncated bool) (valid, multibyte bool) {
	n := len(b)
	for i := 0; i < n; {
		lead := b[i]
		if lead < 0x80 {
			i++
			continue
		}

		size, lo, hi := sequenceRange(lead)
		if size == 0 {
			return false, multibyte
		}

		for j := 1; j < size; j++ {
			if i+j >= n {
				return truncated, true
			}
			c := b[i+j]
			if j == 1 {
				if c < lo || c > hi {
					return false, multibyte
				}
			} else if c < 0x80 || c > 0xBF {
				return false, multibyte
			}
		}

		multibyte = true
		i += size
	}
	return true, multibyte
}

// sequenceRange returns the sequence length for a lead byte and the allowed
// range of the first continuation byte. size is 0 for invalid leads.
func sequenceRange(lead byte) (size int, lo, hi byte) {
	const lo8, hi8 = 0x80, 0xBF

	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		return 2, lo8, hi8
	case lead == 0xE0:
		// Excludes overlong three-byte forms.
		return 3, 0xA0, hi8
	case lead == 0xED:
		// Excludes surrogates U+D800..U+DFFF.
		return 3, lo8, 0x9F
	case lead >= 0xE1 && lead <= 0xEF:
		return 3, lo8, hi8
	case lead == 0xF0:
		return 4, 0x90, hi8
	case lead >= 0xF1 && lead <= 0xF3:
		return 4, lo8, hi8
	case lead == 0xF4:
		// Caps at U+10FFFF.
		return 4, lo8, 0x8F
	default:
		// Continuation bytes, C0, C1 and F5..FF.
		return 0, 0, 0
	}
}
