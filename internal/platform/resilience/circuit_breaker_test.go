package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold int, openTimeout time.Duration, probes int, now *time.Time) *CircuitBreaker {
	b := NewFromConfig(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   probes,
	})
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(2, 5*time.Second, 1, &now)

	var transitions []string
	b.OnStateChange(func(from, to CircuitState) {
		transitions = append(transitions, string(from)+"->"+string(to))
	})

	unavailable := errors.New("connection refused")
	_ = b.Execute(func() error { return unavailable })
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}
	_ = b.Execute(func() error { return unavailable })
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	called := false
	if err := b.Execute(func() error { called = true; return nil }); !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected open circuit to short-circuit, err=%v called=%v", err, called)
	}

	now = now.Add(6 * time.Second)
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open once the timeout elapsed, got %s", state)
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}

	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d: got %s want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(1, time.Second, 1, &now)

	_ = b.Execute(func() error { return errors.New("timeout") })
	now = now.Add(2 * time.Second)
	_ = b.Execute(func() error { return errors.New("timeout") })

	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after failed probe, got %s", state)
	}
}

func TestCircuitBreaker_PredicateIgnoresRejections(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	rejected := errors.New("rejected by store")
	b := newTestBreaker(1, time.Minute, 1, &now).WithFailurePredicate(func(err error) bool {
		return !errors.Is(err, rejected)
	})

	if err := b.Execute(func() error { return rejected }); !errors.Is(err, rejected) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after non-failure error, got %s", state)
	}
}

func TestCircuitBreaker_DisabledIsNil(t *testing.T) {
	b := NewFromConfig(CircuitBreakerConfig{Enabled: false})
	if b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	if err := b.WithFailurePredicate(nil).Execute(func() error { return nil }); err != nil {
		t.Fatalf("nil breaker should run fn: %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("nil breaker should report closed, got %s", state)
	}
}

func TestCircuitBreakerConfig_WithDefaults(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true, FailureThreshold: -1, HalfOpenMaxReq: 4}.withDefaults()
	if got.FailureThreshold != 5 || got.OpenTimeout != 15*time.Second || got.HalfOpenMaxReq != 4 {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestCircuitBreaker_CancellationIsNotRecorded(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(1, time.Minute, 1, &now)

	for i := 0; i < 3; i++ {
		if err := b.Execute(func() error { return context.Canceled }); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancellation to pass through, got %v", err)
		}
	}
	if b.State() != CircuitStateClosed {
		t.Fatalf("cancelled calls must not open the breaker, state=%s", b.State())
	}

	_ = b.Execute(func() error { return errors.New("timeout") })
	now = now.Add(time.Minute)
	if err := b.Execute(func() error { return context.Canceled }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected half-open call to run, got %v", err)
	}
	called := false
	if err := b.Execute(func() error { called = true; return nil }); err != nil || !called {
		t.Fatalf("expected the released half-open slot to admit a call, err=%v called=%v", err, called)
	}
	if b.State() != CircuitStateClosed {
		t.Fatalf("expected successful half-open call to close the breaker, state=%s", b.State())
	}
}
