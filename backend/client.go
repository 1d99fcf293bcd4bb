package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nimbus-ai/reasoncore/core"
	"github.com/nimbus-ai/reasoncore/resilience"
)

// VendorError lets a Vendor implementation tell the client enough about a
// failure to classify it, without the client needing to know the vendor's
// actual wire protocol.
type VendorError struct {
	StatusCode int
	Message    string
}

func (e *VendorError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "vendor error"
}

func isRateLimited(err error) bool {
	var ve *VendorError
	if errors.As(err, &ve) {
		if ve.StatusCode == 429 {
			return true
		}
		lower := strings.ToLower(ve.Message)
		return strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests")
	}
	return false
}

// Client is a rate-limited, retried, circuit-broken wrapper around a
// Vendor. One Client exists per logical backend (openai, anthropic, grok);
// the registry package maps task-level backend names to Clients.
type Client struct {
	name    string
	vendor  Vendor
	bucket  *TokenBucket
	breaker *resilience.CircuitBreaker
	cfg     *Config
}

// New builds a Client for vendor, named name, configured by opts.
func New(name string, vendor Vendor, opts ...Option) *Client {
	cfg := defaultConfig(name)
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{
		name:    name,
		vendor:  vendor,
		bucket:  NewTokenBucket(cfg.MaxTokensPerMinute, cfg.TokenRefillPerSecond, cfg.MaxRequestsPerMinute),
		breaker: resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		cfg:     cfg,
	}
}

// Name returns the logical backend name this client was built with.
func (c *Client) Name() string { return c.name }

// Invoke truncates prompt if needed, waits for rate-limit budget, calls the
// vendor, retrying any failed call up to RetryAttempts times in total, and
// cleans the resulting text before returning it.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	prompt = TruncatePrompt(prompt, c.cfg.MaxPromptChars)

	if !c.breaker.CanExecute() {
		return "", core.New("backend.Invoke", core.KindBackend, c.name, errors.New("circuit open, backend presumed down"))
	}

	cost := float64(EstimateTokens(prompt))
	if err := c.bucket.Consume(ctx, cost); err != nil {
		return "", core.New("backend.Invoke", core.KindTimeout, c.name, err)
	}

	var lastErr error
	delay := c.cfg.RetryBaseDelay

	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", core.New("backend.Invoke", core.KindTimeout, c.name, ctx.Err())
		default:
		}

		raw, err := c.vendor.Invoke(ctx, prompt)
		if err == nil {
			c.breaker.RecordSuccess()
			c.cfg.Metrics.Counter("backend.invoke.success", "backend", c.name)
			return CleanOutput(raw), nil
		}

		lastErr = err
		rateLimited := isRateLimited(err)
		c.cfg.Logger.Warn("backend call failed", map[string]interface{}{
			"backend": c.name,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})

		wait := delay
		if rateLimited {
			wait = time.Duration(attempt+1) * delay
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", core.New("backend.Invoke", core.KindTimeout, c.name, ctx.Err())
		case <-timer.C:
		}
	}

	c.breaker.RecordFailure(lastErr)
	if isRateLimited(lastErr) {
		c.cfg.Metrics.Counter("backend.invoke.error", "backend", c.name, "kind", "rate_limited")
		return "", core.New("backend.Invoke", core.KindRateLimited, c.name, lastErr)
	}
	c.cfg.Metrics.Counter("backend.invoke.error", "backend", c.name, "kind", "backend")
	return "", core.New("backend.Invoke", core.KindBackend, c.name, lastErr)
}
