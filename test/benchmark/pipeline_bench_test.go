package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dkovalets/wordfreq/internal/analyzer"
	"github.com/dkovalets/wordfreq/internal/counter"
	"github.com/dkovalets/wordfreq/internal/merger"
	"github.com/dkovalets/wordfreq/internal/partition"
	"github.com/dkovalets/wordfreq/internal/pool"
	"github.com/dkovalets/wordfreq/internal/ranker"
	"github.com/dkovalets/wordfreq/internal/source"
)

type memoryFetcher struct {
	content string
}

func (m *memoryFetcher) Fetch(ctx context.Context, location string) (*source.Document, error) {
	return &source.Document{Location: location, Content: m.content, Size: len(m.content)}, nil
}

func benchDocument() string {
	return strings.Repeat(sampleTexts["long"], 10)
}

func BenchmarkPipelineByWorkerCount(b *testing.B) {
	content := benchDocument()
	for _, workers := range []int{1, 2, 4, 8, 16} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			a := analyzer.New(&memoryFetcher{content: content}, nil, nil)
			req := analyzer.Request{Location: "memory://bench", Workers: workers, TopK: 10}
			b.ReportAllocs()
			b.SetBytes(int64(len(content)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := a.Analyze(context.Background(), req); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCountAndMerge(b *testing.B) {
	content := benchDocument()
	segments, err := partition.Partition(content, 8)
	if err != nil {
		b.Fatal(err)
	}
	p := pool.New()
	b.ReportAllocs()
	b.SetBytes(int64(len(content)))
	for i := 0; i < b.N; i++ {
		partials, err := p.Run(context.Background(), segments)
		if err != nil {
			b.Fatal(err)
		}
		global := merger.Merge(partials)
		_ = global
	}
}

func BenchmarkRank(b *testing.B) {
	global := merger.Merge([]counter.PartialCount{counter.Count(benchDocument())})
	for _, topK := range []int{10, 100} {
		b.Run(fmt.Sprintf("top_%d", topK), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				entries, err := ranker.Rank(global, topK)
				if err != nil {
					b.Fatal(err)
				}
				_ = entries
			}
		})
	}
}
