// Package sniff classifies the character encoding of a byte buffer from its
// content alone.
//
// Detection runs in fixed order: byte-order mark, BOM-less UTF-16, strict
// UTF-8 validation, binary screening, then statistical detection with
// github.com/saintfish/chardet. Only a bounded prefix of the input is
// inspected.
//
// A Sniffer owns mutable scratch state and is not safe for concurrent use.
// Give each worker its own instance.
package sniff

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/saintfish/chardet"

	"github.com/yaklabco/gocharset/pkg/charsets"
)

// DefaultMaxBytes is the inspection cap used when none is given.
const DefaultMaxBytes = 256 * 1024

// Defaults for Options.
const (
	DefaultFallback      = "ISO-8859-1"
	DefaultMinConfidence = 10
)

// Heuristic thresholds.
const (
	confidenceBOM      = 100
	confidenceUTF8     = 99
	confidenceASCII    = 90
	confidenceEmpty    = 50
	confidenceUTF16    = 70
	confidenceMaxStats = 80
	confidenceFallback = 10

	utf16MinSample   = 4
	utf16DominantNUL = 0.70
	utf16SparseNUL   = 0.10
	maxControlRatio  = 0.10
)

// Options configures a Sniffer.
type Options struct {
	// Fallback is reported when statistical detection is not confident.
	// Empty means DefaultFallback.
	Fallback string

	// MinConfidence is the chardet score (0-100) below which Fallback wins.
	// Zero means DefaultMinConfidence.
	MinConfidence int
}

// Sniffer detects encodings. It reuses its read buffer and byte histogram
// between calls.
type Sniffer struct {
	fallback      string
	minConfidence int

	detector *chardet.Detector
	scratch  []byte
	hist     [256]int
}

// resolved fills in defaults and canonicalises the fallback name.
func (o Options) resolved() Options {
	if o.Fallback == "" {
		o.Fallback = DefaultFallback
	}
	o.Fallback = charsets.Canonical(o.Fallback)
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	return o
}

// Fingerprint identifies the settings that influence a Guess. Options that
// resolve to the same settings share a fingerprint.
func (o Options) Fingerprint() string {
	r := o.resolved()
	return fmt.Sprintf("fallback=%s;min_confidence=%d", r.Fallback, r.MinConfidence)
}

// New creates a Sniffer.
func New(opts Options) *Sniffer {
	opts = opts.resolved()
	return &Sniffer{
		fallback:      opts.Fallback,
		minConfidence: opts.MinConfidence,
		detector:      chardet.NewTextDetector(),
	}
}

// Reset drops the scratch buffer so a long-lived sniffer can give its memory back.
func (s *Sniffer) Reset() {
	s.scratch = nil
	clear(s.hist[:])
}

// DetectReader reads up to maxBytes from r into the sniffer's scratch buffer
// and classifies them. maxBytes <= 0 means DefaultMaxBytes.
func (s *Sniffer) DetectReader(r io.Reader, maxBytes int) (Guess, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	// One extra byte tells a file of exactly maxBytes from a longer one.
	want := maxBytes + 1
	if cap(s.scratch) < want {
		s.scratch = make([]byte, want)
	}
	buf := s.scratch[:want]

	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Guess{}, fmt.Errorf("read: %w", err)
	}

	return s.Detect(buf[:n], maxBytes), nil
}

// Detect classifies buf, inspecting at most maxBytes of it.
// maxBytes <= 0 means DefaultMaxBytes.
func (s *Sniffer) Detect(buf []byte, maxBytes int) Guess {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	truncated := len(buf) > maxBytes
	if truncated {
		buf = buf[:maxBytes]
	}

	guess := s.classify(buf, truncated)
	guess.Inspected = len(buf)
	guess.Truncated = truncated
	return guess
}

func (s *Sniffer) classify(buf []byte, truncated bool) Guess {
	if name, _ := DetectBOM(buf); name != "" {
		return Guess{Name: name, Confidence: confidenceBOM, Method: MethodBOM, BOM: true}
	}

	if len(buf) == 0 {
		return Guess{Name: "UTF-8", Confidence: confidenceEmpty, Method: MethodUTF8}
	}

	s.fillHistogram(buf)

	// ASCII-range UTF-16 is also valid UTF-8, so a NUL parity pattern has to
	// win before strict validation.
	if s.hist[0] > 0 {
		if name := utf16ByParity(buf); name != "" {
			return Guess{Name: name, Confidence: confidenceUTF16, Method: MethodUTF16}
		}
	}

	if valid, multibyte := validUTF8(buf, truncated); valid {
		if multibyte {
			return Guess{Name: "UTF-8", Confidence: confidenceUTF8, Method: MethodUTF8}
		}
		return Guess{Name: "UTF-8", Confidence: confidenceASCII, Method: MethodUTF8}
	}

	if s.hist[0] > 0 || s.controlRatio(len(buf)) > maxControlRatio {
		return Guess{Name: Unknown, Method: MethodBinary}
	}

	return s.statistical(buf)
}

func (s *Sniffer) fillHistogram(buf []byte) {
	clear(s.hist[:])
	for _, b := range buf {
		s.hist[b]++
	}
}

// controlRatio is the share of C0 control bytes other than common
// whitespace and ESC.
func (s *Sniffer) controlRatio(total int) float64 {
	var controls int
	for b := range 0x20 {
		switch b {
		case '\t', '\n', '\v', '\f', '\r', 0x1B:
			continue
		}
		controls += s.hist[b]
	}
	controls += s.hist[0x7F]
	return float64(controls) / float64(total)
}

// statistical asks chardet for its best non-Unicode answer.
func (s *Sniffer) statistical(buf []byte) Guess {
	results, err := s.detector.DetectAll(buf)
	if err == nil {
		for _, res := range results {
			// Strict validation already ruled UTF-8 out and UTF-16/32
			// are decided by the earlier steps.
			if strings.HasPrefix(strings.ToUpper(res.Charset), "UTF-") {
				continue
			}
			if res.Confidence < s.minConfidence {
				break
			}
			return Guess{
				Name:       charsets.Canonical(res.Charset),
				Confidence: min(res.Confidence, confidenceMaxStats),
				Method:     MethodStatistical,
			}
		}
	}

	return Guess{Name: s.fallback, Confidence: confidenceFallback, Method: MethodFallback}
}

// utf16ByParity recognises BOM-less UTF-16 from NUL bytes clustered on one
// byte parity, as produced by mostly-Latin text. It returns "" otherwise.
func utf16ByParity(buf []byte) string {
	if len(buf) < utf16MinSample {
		return ""
	}

	var evenNUL, oddNUL int
	for i, b := range buf {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			evenNUL++
		} else {
			oddNUL++
		}
	}

	evens := (len(buf) + 1) / 2
	odds := len(buf) / 2
	evenShare := float64(evenNUL) / float64(evens)
	oddShare := float64(oddNUL) / float64(odds)

	switch {
	case evenShare >= utf16DominantNUL && oddShare < utf16SparseNUL:
		return "UTF-16BE"
	case oddShare >= utf16DominantNUL && evenShare < utf16SparseNUL:
		return "UTF-16LE"
	default:
		return ""
	}
}
