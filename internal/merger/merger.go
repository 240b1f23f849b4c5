// Package merger folds per-segment counts into a single document-wide count.
package merger

import "github.com/dkovalets/wordfreq/internal/counter"

// GlobalCount maps a token to its total occurrence count across the whole
// document. Immutable once built.
type GlobalCount map[string]int

// Merge sums counts per token across all partials. Summation is commutative
// and associative, so input order never affects the result; every partial is
// folded exactly once.
func Merge(partials []counter.PartialCount) GlobalCount {
	global := make(GlobalCount)
	for _, partial := range partials {
		for token, count := range partial {
			global[token] += count
		}
	}
	return global
}

// Total returns the number of token occurrences across the whole document.
func (g GlobalCount) Total() int {
	total := 0
	for _, count := range g {
		total += count
	}
	return total
}
