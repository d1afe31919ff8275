package bozon

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Range is a byte offset span into a single source file.
type Range struct{ Start, End int }

func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

func (r Range) Str(src []byte) string {
	return string(src[r.Start:r.End])
}

func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Location is a line/column position resolved from a byte cursor.
type Location struct {
	Line   int32
	Column int32
	Cursor int32
}

// SrcTokens is the (begin, pivot, end) triple used to place a
// diagnostic precisely on the "interesting" sub-token of a node, per
// the token/source model.
type SrcTokens struct {
	Begin Range
	Pivot Range
	End   Range
}

// Span returns the overall range covered by a SrcTokens triple.
func (s SrcTokens) Span() Range {
	return Range{Start: s.Begin.Start, End: s.End.End}
}

// LineIndex converts byte cursor offsets to line/column positions.
//
// It stores the start byte offset of each line (0-based). Given a
// cursor, it finds the line by binary searching line starts (O(log
// lines)) and computes the column as (runes since lineStart + 1).
//
// Construction is O(n) over the input and is intended to be cached
// per source file.
type LineIndex struct {
	input     []byte
	lineStart []int
}

func NewLineIndex(input []byte) *LineIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range input {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &LineIndex{input: input, lineStart: lineStart}
}

func (li *LineIndex) LocationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(li.input) {
		cursor = len(li.input)
	}

	lineIdx := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}

	lineStart := li.lineStart[lineIdx]
	col := int32(utf8.RuneCount(li.input[lineStart:cursor])) + 1

	return Location{
		Line:   int32(lineIdx + 1),
		Column: col,
		Cursor: int32(cursor),
	}
}

func (li *LineIndex) RangeLocation(r Range) (Location, Location) {
	return li.LocationAt(r.Start), li.LocationAt(r.End)
}
