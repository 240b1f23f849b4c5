package events

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dkovalets/wordfreq/pkg/kafka"
	"github.com/dkovalets/wordfreq/pkg/metrics"
)

// testMetrics is shared because collectors register globally once per binary.
var testMetrics = metrics.New()

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
}

func (p *fakePublisher) Publish(ctx context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) published() []kafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Event(nil), p.events...)
}

func TestCollectorPublishesTrackedEvents(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 16, nil)
	c.Start(context.Background())

	locations := []string{"doc-a", "doc-b", "doc-c"}
	for _, loc := range locations {
		c.Track(AnalysisCompleted{Location: loc, TotalTokens: 9})
	}
	c.Close()

	events := pub.published()
	if len(events) != len(locations) {
		t.Fatalf("published %d events, want %d", len(events), len(locations))
	}
	for i, loc := range locations {
		if events[i].Key != loc {
			t.Errorf("event %d key = %q, want %q", i, events[i].Key, loc)
		}
	}
}

func TestCollectorDropsWhenBufferFull(t *testing.T) {
	dropsBefore := testutil.ToFloat64(testMetrics.EventsDroppedTotal)

	// No Start: nothing consumes, so the second Track overflows the buffer.
	c := NewCollector(&fakePublisher{}, 1, testMetrics)
	c.Track(AnalysisCompleted{Location: "kept"})
	c.Track(AnalysisCompleted{Location: "dropped"})

	if got := testutil.ToFloat64(testMetrics.EventsDroppedTotal) - dropsBefore; got != 1 {
		t.Errorf("dropped events delta = %v, want 1", got)
	}
}

func TestCollectorTrackAfterCloseIsSafe(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 16, nil)
	c.Start(context.Background())
	c.Close()

	c.Track(AnalysisCompleted{Location: "late"})
	c.Close()

	if got := pub.published(); len(got) != 0 {
		t.Errorf("published %d events after close, want 0", len(got))
	}
}

func TestCollectorDrainsBufferOnShutdown(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 16, nil)
	for i := 0; i < 3; i++ {
		c.Track(AnalysisCompleted{Location: "buffered"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx)
	c.Close()

	if got := pub.published(); len(got) != 3 {
		t.Errorf("published %d events, want all 3 buffered before shutdown", len(got))
	}
}
