// Package partition splits a document into contiguous per-worker segments
// without ever cutting through a token.
package partition

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/dkovalets/wordfreq/pkg/errors"
)

// Segment is a contiguous byte range of the document assigned to exactly one
// worker. Text aliases the document content and must be treated as read-only.
type Segment struct {
	Index int
	Start int
	End   int
	Text  string
}

// Partition splits content into workerCount contiguous segments of
// near-equal byte size. Tokens are whitespace-delimited, so a cut that lands
// inside a run of non-whitespace is advanced to the next whitespace rune;
// every token therefore belongs to exactly one segment and counting results
// are independent of the worker count. When workerCount exceeds the number
// of words, the surplus segments are empty, which is valid.
func Partition(content string, workerCount int) ([]Segment, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidWorkerCount, workerCount)
	}
	n := len(content)
	segments := make([]Segment, 0, workerCount)
	start := 0
	for i := 0; i < workerCount; i++ {
		end := n * (i + 1) / workerCount
		if end < start {
			end = start
		}
		if i == workerCount-1 {
			end = n
		} else {
			end = nextBoundary(content, end)
		}
		segments = append(segments, Segment{
			Index: i,
			Start: start,
			End:   end,
			Text:  content[start:end],
		})
		start = end
	}
	return segments, nil
}

// nextBoundary advances off to the nearest position at or after it that does
// not split a token: first to a UTF-8 rune start, then past the remainder of
// the token if off landed inside one.
func nextBoundary(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if off >= len(s) {
		return len(s)
	}
	for off < len(s) && !utf8.RuneStart(s[off]) {
		off++
	}
	if off >= len(s) {
		return len(s)
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:off])
	if unicode.IsSpace(prev) {
		// Cut sits at a token start; the token falls entirely into the next
		// segment.
		return off
	}
	for off < len(s) {
		r, size := utf8.DecodeRuneInString(s[off:])
		if unicode.IsSpace(r) {
			break
		}
		off += size
	}
	return off
}
