package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig carries the SUPABASE_CIRCUIT_* settings. Zero or
// negative tuning fields fall back to 5 failures, a 15s open window and 2
// half-open probes.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 2
	}
	return c
}

// CircuitBreaker fails calls fast after a run of consecutive failures.
// A nil *CircuitBreaker lets every call through.
type CircuitBreaker struct {
	mu sync.Mutex

	cfg       CircuitBreakerConfig
	isFailure func(error) bool
	onChange  func(from, to CircuitState)
	now       func() time.Time

	state          CircuitState
	failures       int
	openedAt       time.Time
	probes         int
	probeSuccesses int
}

// NewFromConfig returns nil when the breaker is disabled.
func NewFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return &CircuitBreaker{
		cfg:   cfg.withDefaults(),
		state: CircuitStateClosed,
		now:   time.Now,
	}
}

// WithFailurePredicate limits which errors count against the breaker. Errors
// rejected by fn are returned to the caller but recorded as successes.
func (b *CircuitBreaker) WithFailurePredicate(fn func(error) bool) *CircuitBreaker {
	if b != nil {
		b.isFailure = fn
	}
	return b
}

// OnStateChange registers fn to run after every transition, outside the lock.
func (b *CircuitBreaker) OnStateChange(fn func(from, to CircuitState)) *CircuitBreaker {
	if b != nil {
		b.onChange = fn
	}
	return b
}

// Execute runs fn when the breaker admits it and records the outcome. A call
// abandoned with context.Canceled is neither a failure nor a success.
func (b *CircuitBreaker) Execute(fn func() error) error {
	if b == nil {
		return fn()
	}
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()
	if errors.Is(err, context.Canceled) {
		b.release()
		return err
	}
	b.record(err != nil && (b.isFailure == nil || b.isFailure(err)))
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) admit() error {
	b.mu.Lock()
	from := b.state
	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.moveTo(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.cfg.HalfOpenMaxReq {
			to := b.state
			b.mu.Unlock()
			b.notify(from, to)
			return ErrCircuitOpen
		}
		b.probes++
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return nil
}

func (b *CircuitBreaker) record(failed bool) {
	b.mu.Lock()
	from := b.state

	switch {
	case b.state == CircuitStateClosed && failed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.moveTo(CircuitStateOpen)
		}
	case b.state == CircuitStateClosed:
		b.failures = 0
	case b.state == CircuitStateHalfOpen && failed:
		b.moveTo(CircuitStateOpen)
	case b.state == CircuitStateHalfOpen:
		if b.probes > 0 {
			b.probes--
		}
		b.probeSuccesses++
		if b.probeSuccesses >= b.cfg.HalfOpenMaxReq && b.probes == 0 {
			b.moveTo(CircuitStateClosed)
		}
	case b.state == CircuitStateOpen && failed:
		b.openedAt = b.now()
	}

	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

// release frees a half-open admission slot without recording an outcome.
func (b *CircuitBreaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitStateHalfOpen && b.probes > 0 {
		b.probes--
	}
}

// moveTo resets the counters of the state being entered. Callers hold mu.
func (b *CircuitBreaker) moveTo(state CircuitState) {
	b.state = state
	b.probes = 0
	b.probeSuccesses = 0
	switch state {
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) notify(from, to CircuitState) {
	if from != to && b.onChange != nil {
		b.onChange(from, to)
	}
}
