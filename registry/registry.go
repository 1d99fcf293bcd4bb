// Package registry maps the logical backend names tasks reference
// ("openai", "anthropic", "grok") to concrete backend.Client instances,
// and wraps every call with a deadline and an audit record.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nimbus-ai/reasoncore/backend"
	"github.com/nimbus-ai/reasoncore/core"
)

// Registry owns a set of named backend clients. It never constructs a
// client itself — callers register whatever backends they have
// credentials for, and a task naming an unregistered backend fails
// validation rather than panicking.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*backend.Client

	audit  AuditSink
	logger core.Logger
}

// AuditSink records one invocation. It is the same shape as
// core.AuditSink, so any value satisfying one satisfies the other.
type AuditSink interface {
	Record(ctx context.Context, event core.AuditEvent) error
}

// New builds an empty Registry. Pass a nil audit sink to skip auditing.
func New(audit AuditSink, logger core.Logger) *Registry {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Registry{
		clients: make(map[string]*backend.Client),
		audit:   audit,
		logger:  logger,
	}
}

// Register adds or replaces the client for a logical backend name.
func (r *Registry) Register(name string, c *backend.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = c
}

// Names returns the logical backend names currently registered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// CallWithTimeout resolves name to a client, bounds the call by timeout,
// and emits an audit event recording which user/task/backend combination
// ran and whether it succeeded.
func (r *Registry) CallWithTimeout(ctx context.Context, userID, taskName, taskType, name, prompt string, timeout time.Duration) (string, error) {
	r.mu.RLock()
	client, ok := r.clients[name]
	r.mu.RUnlock()

	if !ok {
		err := core.New("registry.CallWithTimeout", core.KindValidation, name, fmt.Errorf("unknown backend %q", name))
		r.recordAudit(ctx, userID, taskName, taskType, name, "failed", err.Error())
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := client.Invoke(callCtx, prompt)
	if err != nil {
		r.recordAudit(ctx, userID, taskName, taskType, name, "failed", err.Error())
		if callCtx.Err() != nil {
			return "", core.New("registry.CallWithTimeout", core.KindTimeout, name, callCtx.Err())
		}
		return "", err
	}

	r.recordAudit(ctx, userID, taskName, taskType, name, "success", "")
	return out, nil
}

func (r *Registry) recordAudit(ctx context.Context, userID, taskName, taskType, backendName, status, detail string) {
	if r.audit == nil {
		return
	}
	event := core.AuditEvent{
		UserID:    userID,
		TaskName:  taskName,
		TaskType:  taskType,
		Backend:   backendName,
		Status:    status,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := r.audit.Record(ctx, event); err != nil {
		r.logger.Warn("audit record failed", map[string]interface{}{"error": err.Error()})
	}
}
