// Package events publishes analysis completion events to Kafka without
// blocking the analysis path. Events are buffered in memory and dropped when
// the buffer is full.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dkovalets/wordfreq/pkg/kafka"
	"github.com/dkovalets/wordfreq/pkg/metrics"
)

// AnalysisCompleted is emitted once per successful analysis run.
type AnalysisCompleted struct {
	Location       string    `json:"location"`
	TotalTokens    int       `json:"total_tokens"`
	DistinctTokens int       `json:"distinct_tokens"`
	Workers        int       `json:"workers"`
	TopWord        string    `json:"top_word,omitempty"`
	TopWordCount   int       `json:"top_word_count,omitempty"`
	ElapsedMS      int64     `json:"elapsed_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Publisher delivers a single event to the message broker. pkg/kafka
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector buffers events and publishes them asynchronously.
type Collector struct {
	producer Publisher
	eventCh  chan AnalysisCompleted
	metrics  *metrics.Metrics
	logger   *slog.Logger
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewCollector creates a Collector with the given buffer size. m may be nil.
func NewCollector(producer Publisher, bufferSize int, m *metrics.Metrics) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan AnalysisCompleted, bufferSize),
		metrics:  m,
		logger:   slog.Default().With("component", "event-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publishing loop. It runs until Close is called or ctx
// is cancelled, draining buffered events on the way out.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("event collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event for publishing. It never blocks; the event is
// dropped when the buffer is full or the collector is closed.
func (c *Collector) Track(event AnalysisCompleted) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.logger.Warn("analysis event dropped (collector closed)", "location", event.Location)
		return
	}
	select {
	case c.eventCh <- event:
	default:
		if c.metrics != nil {
			c.metrics.EventsDroppedTotal.Inc()
		}
		c.logger.Warn("analysis event dropped (buffer full)", "location", event.Location)
	}
}

// Close stops accepting events and waits for the buffer to drain. It is safe
// to call more than once.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event AnalysisCompleted) {
	err := c.producer.Publish(ctx, kafka.Event{
		Key:   event.Location,
		Value: event,
	})
	if err != nil {
		c.logger.Error("failed to publish analysis event", "location", event.Location, "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
