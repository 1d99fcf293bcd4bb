package core

import (
	"context"
	"time"
)

// Logger is the minimal structured logging interface every component in
// this module accepts through constructor injection. There is no global
// logger; a component that isn't given one falls back to NoOpLogger.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// NoOpLogger discards everything. It is the zero-value default so callers
// never need a nil check before logging.
type NoOpLogger struct{}

func (NoOpLogger) Info(string, map[string]interface{})  {}
func (NoOpLogger) Error(string, map[string]interface{}) {}
func (NoOpLogger) Warn(string, map[string]interface{})  {}
func (NoOpLogger) Debug(string, map[string]interface{}) {}

// MetricsRegistry is the narrow surface the telemetry package exposes to
// the rest of the module, avoiding an import cycle between telemetry and
// the packages it instruments.
type MetricsRegistry interface {
	Counter(name string, labels ...string)
	Gauge(name string, value float64, labels ...string)
	Histogram(name string, value float64, labels ...string)
}

// NoOpMetrics is the default MetricsRegistry when none is wired.
type NoOpMetrics struct{}

func (NoOpMetrics) Counter(string, ...string)          {}
func (NoOpMetrics) Gauge(string, float64, ...string)   {}
func (NoOpMetrics) Histogram(string, float64, ...string) {}

// MemoryStore is the boundary contract for recalling prior conversation
// context and storing new turns. This module ships an in-memory
// implementation (memory.InMemoryStore) and a Redis-backed one
// (memory.RedisStore); a vector-backed store is out of scope.
type MemoryStore interface {
	Recall(ctx context.Context, userID string, limit int) ([]MemoryEntry, error)
	Store(ctx context.Context, entry MemoryEntry) error
}

// MemoryEntry is one stored conversational turn.
type MemoryEntry struct {
	UserID    string
	Prompt    string
	Response  string
	TaskType  string
	CreatedAt time.Time
}

// AuditSink is the boundary contract for recording which backend handled
// which task, for which user, and whether it succeeded. This module ships
// only an in-memory reference sink; a durable audit log is out of scope.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent) error
}

// AuditEvent describes one backend invocation.
type AuditEvent struct {
	UserID    string
	TaskName  string
	TaskType  string
	Backend   string
	Status    string // "success" or "failed"
	Detail    string
	CreatedAt time.Time
}
