// Package circuitbreaker stops calling a storage backend that keeps failing
// and lets one trial call through once a cool-down has passed.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cool-down ends.
	StateOpen
	// StateHalfOpen lets a single trial call through.
	StateHalfOpen
)

// String returns the string representation of the state.
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

var (
	// ErrCircuitOpen is returned while the circuit is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned while the half-open trial call is running.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// IsRejected reports whether err came from the breaker rather than the call.
func IsRejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests)
}

// storageFailureThreshold is the number of consecutive failures that opens a
// storage breaker.
const storageFailureThreshold = 3

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	name          string
	threshold     int
	cooldown      time.Duration
	isFailure     func(error) bool
	onStateChange func(name string, from, to State)
	now           func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// StorageBreaker opens after three consecutive failures that isFailure
// accepts and allows a trial call after cooldown. A nil isFailure counts every
// error; onStateChange, if set, runs under the breaker lock on each transition.
func StorageBreaker(cooldown time.Duration, isFailure func(error) bool, onStateChange func(name string, from, to State)) *CircuitBreaker {
	return &CircuitBreaker{
		name:          "storage",
		threshold:     storageFailureThreshold,
		cooldown:      cooldown,
		isFailure:     isFailure,
		onStateChange: onStateChange,
		now:           time.Now,
	}
}

// Execute runs fn unless the circuit rejects the call, and records the result.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.trial = true
		return nil
	default:
		if cb.trial {
			return ErrTooManyRequests
		}
		cb.trial = true
		return nil
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failed := err != nil
	if failed && cb.isFailure != nil {
		failed = cb.isFailure(err)
	}

	switch {
	case !failed:
		cb.failures = 0
		cb.setState(StateClosed)
	case cb.state == StateHalfOpen:
		cb.open()
	default:
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.open()
		}
	}
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.now()
	cb.setState(StateOpen)
}

func (cb *CircuitBreaker) setState(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.trial = false

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
