package analyzer

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dkovalets/wordfreq/internal/ranker"
	"github.com/dkovalets/wordfreq/internal/source"
	apperrors "github.com/dkovalets/wordfreq/pkg/errors"
)

type stubFetcher struct {
	content string
	err     error
	calls   int
}

func (s *stubFetcher) Fetch(ctx context.Context, location string) (*source.Document, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &source.Document{
		Location: location,
		Content:  s.content,
		Size:     len(s.content),
	}, nil
}

func TestAnalyzeEndToEnd(t *testing.T) {
	fetcher := &stubFetcher{content: "The cat sat. The CAT sat near a mat."}
	a := New(fetcher, nil, nil)

	report, err := a.Analyze(context.Background(), Request{
		Location: "memory://cats",
		Workers:  4,
		TopK:     3,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := []ranker.Entry{
		{Word: "cat", Count: 2, Rank: 1},
		{Word: "sat", Count: 2, Rank: 2},
		{Word: "the", Count: 2, Rank: 3},
	}
	if !reflect.DeepEqual(report.TopWords, want) {
		t.Errorf("TopWords = %v, want %v", report.TopWords, want)
	}
	if report.TotalTokens != 9 {
		t.Errorf("TotalTokens = %d, want 9", report.TotalTokens)
	}
	if report.DistinctTokens != 6 {
		t.Errorf("DistinctTokens = %d, want 6", report.DistinctTokens)
	}
	if report.Workers != 4 {
		t.Errorf("Workers = %d, want 4", report.Workers)
	}
	if report.Location != "memory://cats" {
		t.Errorf("Location = %q", report.Location)
	}
}

func TestAnalyzeReportInvariantAcrossWorkerCounts(t *testing.T) {
	content := strings.Repeat("plain words repeat across worker counts and counts repeat ", 31)
	var baseline *Report
	for _, workers := range []int{1, 2, 8} {
		a := New(&stubFetcher{content: content}, nil, nil)
		report, err := a.Analyze(context.Background(), Request{
			Location: "memory://invariant",
			Workers:  workers,
			TopK:     5,
		})
		if err != nil {
			t.Fatalf("Analyze(workers=%d): %v", workers, err)
		}
		if baseline == nil {
			baseline = report
			continue
		}
		if !reflect.DeepEqual(report.TopWords, baseline.TopWords) {
			t.Errorf("workers=%d: TopWords = %v, baseline %v", workers, report.TopWords, baseline.TopWords)
		}
		if report.TotalTokens != baseline.TotalTokens {
			t.Errorf("workers=%d: TotalTokens = %d, baseline %d", workers, report.TotalTokens, baseline.TotalTokens)
		}
		if report.DistinctTokens != baseline.DistinctTokens {
			t.Errorf("workers=%d: DistinctTokens = %d, baseline %d", workers, report.DistinctTokens, baseline.DistinctTokens)
		}
	}
}

func TestAnalyzeValidatesBeforeFetch(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want error
	}{
		{
			name: "zero workers",
			req:  Request{Location: "memory://x", Workers: 0, TopK: 10},
			want: apperrors.ErrInvalidWorkerCount,
		},
		{
			name: "negative workers",
			req:  Request{Location: "memory://x", Workers: -3, TopK: 10},
			want: apperrors.ErrInvalidWorkerCount,
		},
		{
			name: "zero top-k",
			req:  Request{Location: "memory://x", Workers: 4, TopK: 0},
			want: apperrors.ErrInvalidTopK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{content: "irrelevant"}
			a := New(fetcher, nil, nil)
			_, err := a.Analyze(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if fetcher.calls != 0 {
				t.Errorf("fetch was called %d times before validation failed", fetcher.calls)
			}
		})
	}
}

func TestAnalyzeTopKBeyondDistinctTokens(t *testing.T) {
	a := New(&stubFetcher{content: "only three words"}, nil, nil)
	report, err := a.Analyze(context.Background(), Request{
		Location: "memory://small",
		Workers:  2,
		TopK:     100,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.TopWords) != 3 {
		t.Errorf("got %d entries, want 3", len(report.TopWords))
	}
}

func TestAnalyzePropagatesFetchErrors(t *testing.T) {
	fetchErr := apperrors.New(apperrors.ErrSourceUnavailable, 502, "origin is down")
	a := New(&stubFetcher{err: fetchErr}, nil, nil)
	_, err := a.Analyze(context.Background(), Request{
		Location: "http://dead.example",
		Workers:  4,
		TopK:     10,
	})
	if !errors.Is(err, apperrors.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestAnalyzeSurplusWorkers(t *testing.T) {
	a := New(&stubFetcher{content: "tiny doc"}, nil, nil)
	report, err := a.Analyze(context.Background(), Request{
		Location: "memory://tiny",
		Workers:  32,
		TopK:     10,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.TotalTokens != 2 {
		t.Errorf("TotalTokens = %d, want 2", report.TotalTokens)
	}
}
