package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker is rejecting fetches because
// the origin has been failing.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker's current phase.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig controls when the breaker trips and how it recovers.
// Zero values fall back to defaults matching pkg/config.
type CircuitBreakerConfig struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HalfOpenMaxRequests int
}

// StateChangeFunc is invoked on every state transition, with the breaker's
// mutex held; it must not call back into the breaker.
type StateChangeFunc func(from, to State)

// CircuitBreaker trips open after FailureThreshold consecutive failures and
// rejects requests until ResetTimeout has passed. It then admits up to
// HalfOpenMaxRequests trial requests: one success closes the circuit, one
// failure re-opens it.
type CircuitBreaker struct {
	name     string
	cfg      CircuitBreakerConfig
	onChange StateChangeFunc
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	admitted int
}

// NewCircuitBreaker creates a CircuitBreaker. onChange may be nil.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, onChange StateChangeFunc) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxRequests <= 0 {
		cfg.HalfOpenMaxRequests = 1
	}
	return &CircuitBreaker{
		name:     name,
		cfg:      cfg,
		onChange: onChange,
		logger:   slog.Default().With("component", "circuit-breaker", "name", name),
	}
}

// Execute runs fn if the circuit admits the request and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err == nil)
	return err
}

// GetState returns the breaker's current State.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case StateOpen:
		remaining := cb.cfg.ResetTimeout - time.Since(cb.openedAt)
		if remaining > 0 {
			return fmt.Errorf("%w: %s (retry in %v)", ErrCircuitOpen, cb.name, remaining.Round(time.Millisecond))
		}
		cb.transition(StateHalfOpen)
		cb.admitted = 0
		fallthrough
	case StateHalfOpen:
		if cb.admitted >= cb.cfg.HalfOpenMaxRequests {
			return fmt.Errorf("%w: %s (trial request in flight)", ErrCircuitOpen, cb.name)
		}
		cb.admitted++
	}
	return nil
}

func (cb *CircuitBreaker) record(ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if ok {
		if cb.state == StateHalfOpen {
			cb.transition(StateClosed)
		}
		cb.failures = 0
		return
	}
	cb.failures++
	switch cb.state {
	case StateHalfOpen:
		cb.openedAt = time.Now()
		cb.transition(StateOpen)
	case StateClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.openedAt = time.Now()
			cb.transition(StateOpen)
		}
	}
}

// transition must be called with cb.mu held.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	cb.state = to
	switch to {
	case StateClosed:
		cb.failures = 0
		cb.admitted = 0
		cb.logger.Info("circuit closed", "from", from.String())
	case StateOpen:
		cb.logger.Warn("circuit opened",
			"from", from.String(),
			"consecutive_failures", cb.failures,
			"reset_after", cb.cfg.ResetTimeout,
		)
	case StateHalfOpen:
		cb.logger.Info("circuit half-open", "max_requests", cb.cfg.HalfOpenMaxRequests)
	}
	if cb.onChange != nil {
		cb.onChange(from, to)
	}
}
