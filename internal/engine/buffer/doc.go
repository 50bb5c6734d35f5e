// Package buffer provides the immutable document snapshot that pre-save
// transformations read from, along with the position, range and edit types
// they produce.
//
// Unlike an editing buffer, a Document never normalizes line endings on load:
// every line keeps the exact terminator it was read with, so a full terminator
// scan reflects what is on disk.
//
// Basic usage:
//
//	doc := buffer.NewDocument("foo  \r\nbar\n")
//
//	// Inspect lines
//	doc.LineCount()      // 3
//	doc.Line(0).Text     // "foo  "
//	doc.Line(0).Ending   // LineEndingCRLF
//
//	// Apply a batch of edits, producing a new document
//	next, err := doc.Apply([]buffer.Edit{
//	    buffer.NewDelete(buffer.NewRange(buffer.Point{Line: 0, Column: 3}, buffer.Point{Line: 0, Column: 5})),
//	    buffer.NewSetEndOfLine(buffer.LineEndingLF),
//	})
//
// Position Types:
//
//   - Point: line and column position (0-indexed, column in bytes, never
//     including the line terminator)
//   - Range: half-open [Start, End) span between two points
//
// Edits are descriptive. A range edit replaces the text covered by its range;
// a set-end-of-line edit rewrites every terminator of the document without
// moving any point, which is why range edits computed before it stay valid.
package buffer
