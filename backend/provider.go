package backend

import (
	"context"
	"time"

	"github.com/nimbus-ai/reasoncore/core"
	"github.com/nimbus-ai/reasoncore/resilience"
)

// Vendor is the narrow seam between this module and an actual LLM wire
// protocol. This module never speaks a vendor's HTTP API directly —
// callers supply a Vendor (see backend/providers for reference
// implementations) and everything above it (rate limiting, retry,
// circuit breaking, truncation, cleaning) is vendor-agnostic.
type Vendor interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Config configures a Client, built via functional Options the same way
// the rest of this module's constructors compose settings.
type Config struct {
	Name                 string
	MaxTokensPerMinute   float64
	TokenRefillPerSecond float64
	MaxRequestsPerMinute int
	MaxPromptChars       int
	RetryAttempts        int
	RetryBaseDelay       time.Duration
	CircuitBreaker       *resilience.CircuitBreakerConfig
	Logger               core.Logger
	Metrics              core.MetricsRegistry
}

// Option mutates a Config during New.
type Option func(*Config)

func defaultConfig(name string) *Config {
	return &Config{
		Name:                 name,
		MaxTokensPerMinute:   60000,
		TokenRefillPerSecond: 1000,
		MaxRequestsPerMinute: 60,
		MaxPromptChars:       12000,
		RetryAttempts:        3,
		RetryBaseDelay:       time.Second,
		CircuitBreaker:       resilience.DefaultCircuitBreakerConfig(name),
		Logger:               core.NoOpLogger{},
		Metrics:              core.NoOpMetrics{},
	}
}

func WithMaxTokensPerMinute(n float64) Option {
	return func(c *Config) { c.MaxTokensPerMinute = n }
}

func WithMaxRequestsPerMinute(n int) Option {
	return func(c *Config) { c.MaxRequestsPerMinute = n }
}

func WithMaxPromptChars(n int) Option {
	return func(c *Config) { c.MaxPromptChars = n }
}

func WithRetryAttempts(n int) Option {
	return func(c *Config) { c.RetryAttempts = n }
}

func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Config) { c.RetryBaseDelay = d }
}

func WithLogger(l core.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func WithMetrics(m core.MetricsRegistry) Option {
	return func(c *Config) { c.Metrics = m }
}
