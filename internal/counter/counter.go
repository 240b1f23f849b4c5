// Package counter tallies token occurrences within a single segment.
package counter

import "github.com/dkovalets/wordfreq/internal/tokenizer"

// PartialCount maps a normalized token to its occurrence count within one
// segment of the document.
type PartialCount map[string]int

// Count tokenizes text and increments one entry per token occurrence. It
// reads nothing but its input and returns a map owned by the caller, so
// concurrent Count calls never share state.
func Count(text string) PartialCount {
	counts := make(PartialCount)
	for _, tok := range tokenizer.Tokenize(text) {
		counts[tok]++
	}
	return counts
}
