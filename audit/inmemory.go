// Package audit provides reference implementations of core.AuditSink. A
// durable audit log is explicitly out of scope for this module; these
// exist so the orchestrator and its tests have something to record to.
package audit

import (
	"context"
	"sync"

	"github.com/nimbus-ai/reasoncore/core"
)

// InMemorySink keeps every recorded event in memory, in order. It is safe
// for concurrent use.
type InMemorySink struct {
	mu     sync.Mutex
	events []core.AuditEvent
}

// NewInMemorySink builds an empty sink.
func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

// Record appends event.
func (s *InMemorySink) Record(ctx context.Context, event core.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (s *InMemorySink) Events() []core.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}
