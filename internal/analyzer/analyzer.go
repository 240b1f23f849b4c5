// Package analyzer orchestrates the word-frequency pipeline: fetch the
// document, partition it, count each segment in parallel, merge the partial
// counts, and rank the result.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkovalets/wordfreq/internal/events"
	"github.com/dkovalets/wordfreq/internal/merger"
	"github.com/dkovalets/wordfreq/internal/partition"
	"github.com/dkovalets/wordfreq/internal/pool"
	"github.com/dkovalets/wordfreq/internal/ranker"
	"github.com/dkovalets/wordfreq/internal/source"
	apperrors "github.com/dkovalets/wordfreq/pkg/errors"
	"github.com/dkovalets/wordfreq/pkg/metrics"
)

// Request describes one analysis run. Workers and TopK must be positive;
// callers apply their own defaults before handing the request over.
type Request struct {
	Location string
	Workers  int
	TopK     int
}

// Report is the terminal artifact of a run: the ranked top words plus
// aggregate metadata. It is either complete and correct or not produced at
// all.
type Report struct {
	Location       string         `json:"location"`
	TopWords       []ranker.Entry `json:"top_words"`
	TotalTokens    int            `json:"total_tokens"`
	DistinctTokens int            `json:"distinct_tokens"`
	Workers        int            `json:"workers"`
	DocumentBytes  int            `json:"document_bytes"`
	ElapsedMS      int64          `json:"elapsed_ms"`
}

// Fetcher acquires the document to analyze.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*source.Document, error)
}

// Analyzer runs the pipeline. collector and m may be nil; the CLI runs
// without either.
type Analyzer struct {
	fetcher   Fetcher
	pool      *pool.Pool
	collector *events.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates an Analyzer over the given fetcher.
func New(fetcher Fetcher, collector *events.Collector, m *metrics.Metrics) *Analyzer {
	return &Analyzer{
		fetcher:   fetcher,
		pool:      pool.New(),
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "analyzer"),
	}
}

// Analyze runs the full pipeline for one request. Input validation happens
// before any fetch or partition work; every failure is terminal for the run
// and no partial report is ever returned.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	if req.Workers <= 0 {
		a.countOutcome("invalid_input")
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidWorkerCount, req.Workers)
	}
	if req.TopK <= 0 {
		a.countOutcome("invalid_input")
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrInvalidTopK, req.TopK)
	}

	start := time.Now()
	doc, err := a.fetch(ctx, req.Location)
	if err != nil {
		a.countOutcome("fetch_error")
		return nil, fmt.Errorf("fetching document: %w", err)
	}

	segments, err := partition.Partition(doc.Content, req.Workers)
	if err != nil {
		a.countOutcome("invalid_input")
		return nil, err
	}

	partials, err := a.pool.Run(ctx, segments)
	if err != nil {
		a.countOutcome("worker_error")
		return nil, err
	}

	global := merger.Merge(partials)
	entries, err := ranker.Rank(global, req.TopK)
	if err != nil {
		a.countOutcome("invalid_input")
		return nil, err
	}

	elapsed := time.Since(start)
	report := &Report{
		Location:       doc.Location,
		TopWords:       entries,
		TotalTokens:    global.Total(),
		DistinctTokens: len(global),
		Workers:        req.Workers,
		DocumentBytes:  doc.Size,
		ElapsedMS:      elapsed.Milliseconds(),
	}
	a.observeReport(report, elapsed)
	a.trackCompletion(report)
	a.logger.Info("analysis complete",
		"location", report.Location,
		"total_tokens", report.TotalTokens,
		"distinct_tokens", report.DistinctTokens,
		"workers", report.Workers,
		"elapsed", elapsed,
	)
	return report, nil
}

func (a *Analyzer) fetch(ctx context.Context, location string) (*source.Document, error) {
	start := time.Now()
	doc, err := a.fetcher.Fetch(ctx, location)
	if a.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		a.metrics.FetchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		if err == nil {
			a.metrics.DocumentBytes.Observe(float64(doc.Size))
		}
	}
	return doc, err
}

func (a *Analyzer) observeReport(report *Report, elapsed time.Duration) {
	if a.metrics == nil {
		return
	}
	a.metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	a.metrics.AnalyzeDuration.Observe(elapsed.Seconds())
	a.metrics.TokensProcessedTotal.Add(float64(report.TotalTokens))
	a.metrics.DistinctTokens.Observe(float64(report.DistinctTokens))
	a.metrics.WorkersPerAnalysis.Observe(float64(report.Workers))
}

func (a *Analyzer) trackCompletion(report *Report) {
	if a.collector == nil {
		return
	}
	event := events.AnalysisCompleted{
		Location:       report.Location,
		TotalTokens:    report.TotalTokens,
		DistinctTokens: report.DistinctTokens,
		Workers:        report.Workers,
		ElapsedMS:      report.ElapsedMS,
		CompletedAt:    time.Now().UTC(),
	}
	if len(report.TopWords) > 0 {
		event.TopWord = report.TopWords[0].Word
		event.TopWordCount = report.TopWords[0].Count
	}
	a.collector.Track(event)
}

func (a *Analyzer) countOutcome(outcome string) {
	if a.metrics != nil {
		a.metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	}
}
