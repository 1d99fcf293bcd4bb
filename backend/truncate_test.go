package backend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePromptNoopWhenUnderBudget(t *testing.T) {
	short := "a short prompt"
	assert.Equal(t, short, TruncatePrompt(short, 1000))
}

func TestTruncatePromptSplitsHeadAndTail(t *testing.T) {
	long := strings.Repeat("x", 500) + "MIDDLE" + strings.Repeat("y", 500)
	out := TruncatePrompt(long, 200)

	assert.Less(t, len(out), len(long))
	assert.Contains(t, out, truncationMarker)
	assert.True(t, strings.HasPrefix(out, "xxx"))
	assert.True(t, strings.HasSuffix(out, "yyy"))
	assert.NotContains(t, out, "MIDDLE")
}

func TestTruncatePromptZeroOrNegativeBudgetIsNoop(t *testing.T) {
	long := strings.Repeat("z", 100)
	assert.Equal(t, long, TruncatePrompt(long, 0))
	assert.Equal(t, long, TruncatePrompt(long, -5))
}
