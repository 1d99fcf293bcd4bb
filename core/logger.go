package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProductionLogger is the structured Logger used outside of tests: JSON
// lines when running under Kubernetes or when explicitly configured, plain
// text for local development. Error-level logs are rate-limited so a
// backend stuck in a failure loop can't flood stdout.
type ProductionLogger struct {
	component string
	level     string
	debug     bool
	format    string
	output    io.Writer
	mu        sync.RWMutex

	errorLimiter *rateLimiter
	metrics      MetricsRegistry
}

// NewProductionLogger builds a logger for the given component name
// ("backend/openai", "scheduler", "orchestrator", ...). Level and format
// follow NIMBUS_LOG_LEVEL / NIMBUS_LOG_FORMAT, with Kubernetes
// auto-detection as the format fallback.
func NewProductionLogger(component string) *ProductionLogger {
	level := os.Getenv("NIMBUS_LOG_LEVEL")
	if level == "" {
		level = "INFO"
	}
	debug := strings.EqualFold(level, "DEBUG") || os.Getenv("NIMBUS_DEBUG") == "true"

	format := "text"
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		format = "json"
	}
	if envFormat := os.Getenv("NIMBUS_LOG_FORMAT"); envFormat != "" {
		format = envFormat
	}

	return &ProductionLogger{
		component:    component,
		level:        strings.ToUpper(level),
		debug:        debug,
		format:       format,
		output:       os.Stdout,
		errorLimiter: newRateLimiter(time.Second),
		metrics:      NoOpMetrics{},
	}
}

// WithComponent returns a copy of the logger scoped to a different
// component name, sharing level/format/output.
func (l *ProductionLogger) WithComponent(component string) *ProductionLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &ProductionLogger{
		component:    component,
		level:        l.level,
		debug:        l.debug,
		format:       l.format,
		output:       l.output,
		errorLimiter: newRateLimiter(time.Second),
		metrics:      l.metrics,
	}
}

// WithMetrics attaches a MetricsRegistry so logging volume is observable.
func (l *ProductionLogger) WithMetrics(m MetricsRegistry) *ProductionLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metrics = m
	return l
}

func (l *ProductionLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l *ProductionLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	if !l.debug {
		return
	}
	l.log("DEBUG", msg, fields)
}

func (l *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	if l.errorLimiter != nil && !l.errorLimiter.Allow() {
		return
	}
	l.log("ERROR", msg, fields)
}

func (l *ProductionLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.shouldLog(level) {
		return
	}

	ts := time.Now().Format(time.RFC3339)
	if l.format == "json" {
		entry := map[string]interface{}{
			"timestamp": ts,
			"level":     level,
			"component": l.component,
			"message":   msg,
		}
		for k, v := range fields {
			if _, reserved := entry[k]; !reserved {
				entry[k] = v
			}
		}
		if data, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(l.output, string(data))
		}
	} else {
		var b strings.Builder
		for k, v := range fields {
			fmt.Fprintf(&b, " %s=%v", k, v)
		}
		fmt.Fprintf(l.output, "%s [%s] [%s] %s%s\n", ts, level, l.component, msg, b.String())
	}

	if l.metrics != nil {
		l.metrics.Counter("nimbus.log.lines", "level", level, "component", l.component)
	}
}

func (l *ProductionLogger) shouldLog(level string) bool {
	if level == "DEBUG" && l.debug {
		return true
	}
	order := map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}
	cur, ok1 := order[l.level]
	msg, ok2 := order[level]
	if !ok1 || !ok2 {
		return true
	}
	return msg >= cur
}

// SetOutput redirects log output, used by tests to capture lines.
func (l *ProductionLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// rateLimiter allows one event per interval; used to throttle error logs.
type rateLimiter struct {
	interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if now.Sub(r.last) < r.interval {
		return false
	}
	r.last = now
	return true
}
