package buffer

import "fmt"

// Range represents a span of the document in line/column positions.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start Point // Inclusive start position
	End   Point // Exclusive end position
}

// NewRange creates a new Range from start and end points.
func NewRange(start, end Point) Range {
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s:%s)", r.Start.String(), r.End.String())
}

// IsEmpty returns true if start equals end.
func (r Range) IsEmpty() bool {
	return r.Start.Compare(r.End) == 0
}

// IsValid returns true if start <= end.
func (r Range) IsValid() bool {
	return r.Start.Compare(r.End) <= 0
}

// ContainsRange returns true if the given range is entirely within this range.
func (r Range) ContainsRange(other Range) bool {
	return other.Start.Compare(r.Start) >= 0 && other.End.Compare(r.End) <= 0
}

// Overlaps returns true if the two ranges share any position.
// Ranges that merely touch do not overlap. An empty range overlaps another
// range only when it lies strictly inside it.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}
