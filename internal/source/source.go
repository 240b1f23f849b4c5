// Package source acquires the document to analyze from an HTTP(S) URL or a
// local file, enforcing a size limit and a bounded retry policy for
// transient network failures.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/dkovalets/wordfreq/pkg/config"
	apperrors "github.com/dkovalets/wordfreq/pkg/errors"
	"github.com/dkovalets/wordfreq/pkg/resilience"
)

// Document is the immutable result of a fetch: the raw text, its byte
// length, and where it came from.
type Document struct {
	Location string
	Content  string
	Size     int
}

// Fetcher retrieves documents over HTTP or from the filesystem. An optional
// circuit breaker guards repeated fetches of a failing origin.
type Fetcher struct {
	cfg     config.SourceConfig
	client  *http.Client
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher. breaker may be nil to disable circuit
// breaking (the CLI path does this; the server wires one in).
func NewFetcher(cfg config.SourceConfig, breaker *resilience.CircuitBreaker) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		breaker: breaker,
		logger:  slog.Default().With("component", "source"),
	}
}

// Fetch retrieves the document at location, which is either an http(s) URL
// or a filesystem path. It fails with ErrSourceUnavailable once the bounded
// retry policy is exhausted, ErrSourceTooLarge when the content exceeds the
// configured limit, and ErrSourceEmpty for zero-length content.
func (f *Fetcher) Fetch(ctx context.Context, location string) (*Document, error) {
	start := time.Now()
	var content string
	var err error
	if isHTTP(location) {
		content, err = f.fetchHTTP(ctx, location)
	} else {
		content, err = f.readFile(location)
	}
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, apperrors.Newf(apperrors.ErrSourceEmpty, http.StatusUnprocessableEntity,
			"document at %s has no content", location)
	}
	f.logger.Info("document fetched",
		"location", location,
		"bytes", len(content),
		"elapsed", time.Since(start),
	)
	return &Document{
		Location: location,
		Content:  content,
		Size:     len(content),
	}, nil
}

// fetchHTTP downloads the document, retrying transient failures (transport
// errors and 5xx responses) with backoff. Client errors and oversize bodies
// are permanent and fail immediately.
func (f *Fetcher) fetchHTTP(ctx context.Context, location string) (string, error) {
	retryCfg := resilience.RetryConfig{
		MaxAttempts:  f.cfg.RetryAttempts,
		InitialDelay: f.cfg.RetryDelay,
		MaxDelay:     f.cfg.RetryMaxDelay,
	}
	var content string
	download := func() error {
		return resilience.Retry(ctx, "fetch "+location, retryCfg, func(ctx context.Context) error {
			body, err := f.get(ctx, location)
			if err != nil {
				return err
			}
			content = body
			return nil
		})
	}
	var err error
	if f.breaker != nil {
		err = f.breaker.Execute(download)
	} else {
		err = download()
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// get performs a single download attempt.
func (f *Fetcher) get(ctx context.Context, location string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", resilience.Permanent(fmt.Errorf("%w: building request: %v", apperrors.ErrSourceUnavailable, err))
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", fmt.Errorf("%w: %s responded %s", apperrors.ErrSourceUnavailable, location, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return "", resilience.Permanent(apperrors.Newf(apperrors.ErrSourceUnavailable, http.StatusBadGateway,
			"%s responded %s", location, resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", apperrors.ErrSourceUnavailable, err)
	}
	if int64(len(data)) > f.cfg.MaxBytes {
		return "", resilience.Permanent(apperrors.Newf(apperrors.ErrSourceTooLarge, http.StatusRequestEntityTooLarge,
			"document at %s exceeds %d bytes", location, f.cfg.MaxBytes))
	}
	return string(data), nil
}

// readFile loads a local document. Filesystem errors are not retried.
func (f *Fetcher) readFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", apperrors.Newf(apperrors.ErrSourceUnavailable, http.StatusBadGateway,
			"reading %s: %v", path, err)
	}
	if info.Size() > f.cfg.MaxBytes {
		return "", apperrors.Newf(apperrors.ErrSourceTooLarge, http.StatusRequestEntityTooLarge,
			"file %s is %d bytes, limit is %d", path, info.Size(), f.cfg.MaxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.Newf(apperrors.ErrSourceUnavailable, http.StatusBadGateway,
			"reading %s: %v", path, err)
	}
	return string(data), nil
}

func isHTTP(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
