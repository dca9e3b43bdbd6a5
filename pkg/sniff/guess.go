package sniff

import "fmt"

// Unknown is the Guess.Name reported when detection is inconclusive, for
// example for binary content.
const Unknown = "unknown"

// Method names the detection step that produced a Guess.
type Method string

// Detection methods, in the order the sniffer tries them.
const (
	MethodBOM         Method = "bom"
	MethodUTF8        Method = "utf8"
	MethodUTF16       Method = "utf16"
	MethodBinary      Method = "binary"
	MethodStatistical Method = "statistical"
	MethodFallback    Method = "fallback"
)

// Guess is the outcome of sniffing one buffer.
type Guess struct {
	// Name is the canonical charset name, or Unknown.
	Name string `json:"charset"`

	// Confidence is a 0-100 score.
	Confidence int `json:"confidence"`

	// Method is the step that decided.
	Method Method `json:"method"`

	// BOM reports whether the input starts with a byte-order mark.
	BOM bool `json:"bom,omitempty"`

	// Inspected is the number of bytes examined.
	Inspected int `json:"inspected"`

	// Truncated reports whether the input was longer than the inspection cap.
	Truncated bool `json:"truncated,omitempty"`
}

// Inconclusive reports whether no charset could be determined.
func (g Guess) Inconclusive() bool {
	return g.Name == Unknown || g.Name == ""
}

func (g Guess) String() string {
	return fmt.Sprintf("%s (%d%%, %s)", g.Name, g.Confidence, g.Method)
}
