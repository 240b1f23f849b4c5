package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dkovalets/wordfreq/internal/source"
	"github.com/dkovalets/wordfreq/pkg/metrics"
)

// testMetrics is shared because collectors register globally once per binary.
var testMetrics = metrics.New()

var errNoKey = errors.New("no such key")

type fakeStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	content, ok := s.data[key]
	if !ok {
		return "", errNoKey
	}
	return content, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value.(string)
	return nil
}

type countingFetcher struct {
	content string
	err     error
	calls   atomic.Int64
	block   chan struct{}
}

func (f *countingFetcher) Fetch(ctx context.Context, location string) (*source.Document, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &source.Document{Location: location, Content: f.content, Size: len(f.content)}, nil
}

func TestCacheMissThenHit(t *testing.T) {
	inner := &countingFetcher{content: "the cat sat"}
	c := New(inner, newFakeStore(), time.Minute, testMetrics)

	hitsBefore := testutil.ToFloat64(testMetrics.CacheHitsTotal)
	missesBefore := testutil.ToFloat64(testMetrics.CacheMissesTotal)

	first, err := c.Fetch(context.Background(), "http://example.com/doc.txt")
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	second, err := c.Fetch(context.Background(), "http://example.com/doc.txt")
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if first.Content != second.Content {
		t.Errorf("cached content %q differs from fetched %q", second.Content, first.Content)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	if got := testutil.ToFloat64(testMetrics.CacheHitsTotal) - hitsBefore; got != 1 {
		t.Errorf("cache hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(testMetrics.CacheMissesTotal) - missesBefore; got != 1 {
		t.Errorf("cache misses delta = %v, want 1", got)
	}
}

func TestCacheDegradesOnStoreError(t *testing.T) {
	inner := &countingFetcher{content: "still served"}
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	c := New(inner, store, time.Minute, nil)

	doc, err := c.Fetch(context.Background(), "http://example.com/doc.txt")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.Content != "still served" {
		t.Errorf("Content = %q", doc.Content)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}

func TestCacheUpstreamErrorNotStored(t *testing.T) {
	sentinel := errors.New("origin down")
	inner := &countingFetcher{err: sentinel}
	store := newFakeStore()
	c := New(inner, store, time.Minute, nil)

	if _, err := c.Fetch(context.Background(), "http://example.com/doc.txt"); !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if len(store.data) != 0 {
		t.Errorf("store has %d entries after failed fetch, want 0", len(store.data))
	}
}

func TestCacheCollapsesConcurrentFetches(t *testing.T) {
	inner := &countingFetcher{content: "shared", block: make(chan struct{})}
	c := New(inner, newFakeStore(), time.Minute, nil)

	const goroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Fetch(context.Background(), "http://example.com/doc.txt"); err != nil {
				t.Errorf("Fetch: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(inner.block)
	wg.Wait()

	if got := inner.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}
