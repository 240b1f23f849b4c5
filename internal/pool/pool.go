// Package pool runs one counting worker per segment and collects their
// results in segment order.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dkovalets/wordfreq/internal/counter"
	"github.com/dkovalets/wordfreq/internal/partition"
	apperrors "github.com/dkovalets/wordfreq/pkg/errors"
)

// CountFunc produces the partial count for one segment's text.
type CountFunc func(text string) counter.PartialCount

// Pool dispatches counting work, one goroutine per segment. Each worker
// writes only its own result slot, so there is no shared mutable state
// during counting.
type Pool struct {
	count  CountFunc
	logger *slog.Logger
}

// New creates a Pool backed by counter.Count.
func New() *Pool {
	return NewWithCounter(counter.Count)
}

// NewWithCounter creates a Pool with a custom counting function.
func NewWithCounter(fn CountFunc) *Pool {
	return &Pool{
		count:  fn,
		logger: slog.Default().With("component", "worker-pool"),
	}
}

// Run dispatches one worker per segment and blocks until all of them have
// finished. The returned slice is indexed by segment, so completion order
// never affects the output. If any worker fails, the whole run fails with a
// WorkerError naming the segment and all partial results are discarded; no
// retries happen at this layer. A context that is already cancelled starts
// no workers at all.
func (p *Pool) Run(ctx context.Context, segments []partition.Segment) ([]counter.PartialCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("worker pool not started: %w", err)
	}
	results := make([]counter.PartialCount, len(segments))
	g, _ := errgroup.WithContext(ctx)
	for _, seg := range segments {
		seg := seg
		g.Go(func() error {
			partial, err := p.countSegment(seg)
			if err != nil {
				return &apperrors.WorkerError{SegmentIndex: seg.Index, Cause: err}
			}
			results[seg.Index] = partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// countSegment runs the counting function for one segment, converting a
// panic into an error so a malformed segment cannot take the process down.
func (p *Pool) countSegment(seg partition.Segment) (partial counter.PartialCount, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	start := time.Now()
	partial = p.count(seg.Text)
	p.logger.Debug("segment counted",
		"segment", seg.Index,
		"bytes", len(seg.Text),
		"distinct_tokens", len(partial),
		"elapsed", time.Since(start),
	)
	return partial, nil
}
