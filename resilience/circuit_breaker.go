package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nimbus-ai/reasoncore/core"
)

// ErrCircuitOpen is wrapped into the error RetryWithCircuitBreaker returns
// when the breaker is rejecting calls outright.
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitState is one of Closed, Open, HalfOpen.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
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

// ErrorClassifier decides whether an error should count toward the
// breaker's failure threshold. Validation errors (caller's fault) and
// context cancellation (caller gave up) never count.
type ErrorClassifier func(error) bool

// DefaultErrorClassifier counts everything except validation errors and
// context cancellation as a circuit-breaker failure.
func DefaultErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if core.IsValidation(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// CircuitBreakerConfig configures one breaker, one per logical backend.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening
	SleepWindow      time.Duration // how long Open lasts before trying HalfOpen
	HalfOpenRequests int           // trial requests allowed while HalfOpen
	ErrorClassifier  ErrorClassifier
	Logger           core.Logger
}

// DefaultCircuitBreakerConfig opens after 5 consecutive backend failures
// and waits 30s before probing again, matching the backend client's retry
// budget so the breaker trips only when retries have already been failing.
func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SleepWindow:      30 * time.Second,
		HalfOpenRequests: 1,
		ErrorClassifier:  DefaultErrorClassifier,
		Logger:           core.NoOpLogger{},
	}
}

// CircuitBreaker is a consecutive-failure breaker: Closed allows all calls,
// Open rejects all calls until SleepWindow elapses, HalfOpen allows a
// bounded number of trial calls and closes on the first success or reopens
// on the first failure.
type CircuitBreaker struct {
	config *CircuitBreakerConfig

	mu             sync.Mutex
	state          CircuitState
	stateChangedAt time.Time
	consecutiveFailures int
	halfOpenInFlight    int
}

// NewCircuitBreaker builds a breaker from config, defaulting to
// DefaultCircuitBreakerConfig("") when config is nil.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig("")
	}
	if config.ErrorClassifier == nil {
		config.ErrorClassifier = DefaultErrorClassifier
	}
	if config.Logger == nil {
		config.Logger = core.NoOpLogger{}
	}
	return &CircuitBreaker{
		config:         config,
		state:          StateClosed,
		stateChangedAt: time.Now(),
	}
}

// Name returns the breaker's logical name.
func (cb *CircuitBreaker) Name() string { return cb.config.Name }

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// CanExecute reports whether a call should be attempted, transitioning
// Open to HalfOpen once SleepWindow has elapsed.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.stateChangedAt) >= cb.config.SleepWindow {
			cb.transition(StateHalfOpen)
			cb.halfOpenInFlight = 1
			return true
		}
		return false
	case StateHalfOpen:
		if cb.halfOpenInFlight < cb.config.HalfOpenRequests {
			cb.halfOpenInFlight++
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess closes the breaker (from any state) and resets its
// failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutiveFailures = 0
	if cb.state != StateClosed {
		cb.transition(StateClosed)
	}
}

// RecordFailure counts err toward the threshold (via the configured
// classifier) and opens the breaker once the threshold is reached, or
// immediately on any HalfOpen failure.
func (cb *CircuitBreaker) RecordFailure(err error) {
	if !cb.config.ErrorClassifier(err) {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.transition(StateOpen)
		return
	}

	cb.consecutiveFailures++
	if cb.consecutiveFailures >= cb.config.FailureThreshold {
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to
	cb.stateChangedAt = time.Now()
	cb.halfOpenInFlight = 0
	if to == StateClosed {
		cb.consecutiveFailures = 0
	}
	cb.config.Logger.Info("circuit breaker state change", map[string]interface{}{
		"name": cb.config.Name,
		"from": from.String(),
		"to":   to.String(),
	})
}

// consecutiveFailureCount reports the current streak, for tests.
func (cb *CircuitBreaker) consecutiveFailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.consecutiveFailures
}
