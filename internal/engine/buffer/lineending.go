package buffer

import "strings"

// LineEnding specifies the terminator of a line.
type LineEnding uint8

const (
	LineEndingNone LineEnding = iota // Last line, no terminator
	LineEndingLF                     // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "LF"
	case LineEndingCRLF:
		return "CRLF"
	case LineEndingCR:
		return "CR"
	default:
		return "none"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingLF:
		return "\n"
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return ""
	}
}

// ParseLineEnding parses an end_of_line style value ("lf", "crlf", "cr"),
// ignoring case. It also accepts the literal sequences used by host settings.
func ParseLineEnding(s string) (LineEnding, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lf", "\n":
		return LineEndingLF, true
	case "crlf", "\r\n":
		return LineEndingCRLF, true
	case "cr", "\r":
		return LineEndingCR, true
	default:
		return LineEndingNone, false
	}
}

// LineEndingCounts holds the number of each terminator found in a text.
type LineEndingCounts struct {
	LF   int
	CRLF int
	CR   int
}

// Total returns the number of terminators counted.
func (c LineEndingCounts) Total() int {
	return c.LF + c.CRLF + c.CR
}

// Of returns the count for one terminator kind.
func (c LineEndingCounts) Of(le LineEnding) int {
	switch le {
	case LineEndingLF:
		return c.LF
	case LineEndingCRLF:
		return c.CRLF
	case LineEndingCR:
		return c.CR
	default:
		return 0
	}
}

// Uniform reports whether every terminator counted is le.
// A text without terminators is uniform for any line ending.
func (c LineEndingCounts) Uniform(le LineEnding) bool {
	return c.Of(le) == c.Total()
}
