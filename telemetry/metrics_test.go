package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nimbus-ai/reasoncore/core"
)

func TestRegistryImplementsMetricsRegistry(t *testing.T) {
	var _ core.MetricsRegistry = NewRegistry("test")
}

func TestRegistryMethodsDoNotPanicOnRepeatedCalls(t *testing.T) {
	r := NewRegistry("test")
	assert.NotPanics(t, func() {
		r.Counter("tasks.completed", "task", "fact_check")
		r.Counter("tasks.completed", "task", "fact_check")
		r.Gauge("queue.depth", 3, "backend", "openai")
		r.Gauge("queue.depth", 4, "backend", "openai")
		r.Histogram("task.duration_ms", 125.5, "task", "fact_check")
	})
}

func TestSanitizeReplacesSpaces(t *testing.T) {
	assert.Equal(t, "task_duration", sanitize("task duration"))
	assert.Equal(t, "already_clean", sanitize("already_clean"))
}

func TestToAttrsPairsLabels(t *testing.T) {
	attrs := toAttrs([]string{"k1", "v1", "k2", "v2"})
	assert.Len(t, attrs, 2)
	assert.Equal(t, "k1", string(attrs[0].Key))
	assert.Equal(t, "v1", attrs[0].Value.AsString())
}

func TestToAttrsIgnoresDanglingKey(t *testing.T) {
	attrs := toAttrs([]string{"k1", "v1", "dangling"})
	assert.Len(t, attrs, 1)
}
