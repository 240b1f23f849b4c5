// Package ranker selects the top-K tokens from a global count under a
// deterministic total order.
package ranker

import (
	"container/heap"
	"fmt"

	"github.com/dkovalets/wordfreq/internal/merger"
	apperrors "github.com/dkovalets/wordfreq/pkg/errors"
)

// Entry is one ranked word in the final report.
type Entry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	Rank  int    `json:"rank"`
}

// Rank returns the topK highest-counted tokens ordered by descending count,
// ties broken by ascending lexicographic word order. The ordering is a total
// order, so the result is identical for any iteration order of global. A
// topK larger than the number of distinct tokens returns all of them.
func Rank(global merger.GlobalCount, topK int) ([]Entry, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidTopK, topK)
	}
	// Bounded min-heap: the root is always the worst retained entry, so one
	// pass over the map keeps exactly the topK best.
	h := &entryHeap{}
	heap.Init(h)
	for word, count := range global {
		heap.Push(h, Entry{Word: word, Count: count})
		if h.Len() > topK {
			heap.Pop(h)
		}
	}
	entries := make([]Entry, h.Len())
	for i := len(entries) - 1; i >= 0; i-- {
		entries[i] = heap.Pop(h).(Entry)
		entries[i].Rank = i + 1
	}
	return entries, nil
}

type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }

// Less orders worse entries first: lower count, or equal count with a
// lexicographically larger word.
func (h entryHeap) Less(i, j int) bool {
	if h[i].Count != h[j].Count {
		return h[i].Count < h[j].Count
	}
	return h[i].Word > h[j].Word
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(Entry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
