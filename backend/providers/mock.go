// Package providers holds reference Vendor implementations. Mock is the
// only one shipped in full; real vendors (OpenAI, Anthropic, xAI) are left
// to callers since their wire protocols are out of this module's scope —
// wiring one in means implementing backend.Vendor against the vendor's
// actual HTTP API.
package providers

import (
	"context"
	"fmt"
	"strings"
)

// Mock is a deterministic backend.Vendor for tests and for cmd/reasonctl
// when no real API key is configured. It echoes back a canned answer
// shaped like the task type so quality scoring and contradiction checks
// have realistic text to operate on.
type Mock struct {
	Name string
}

func (m *Mock) Invoke(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "breakdown") || strings.Contains(lower, "analy"):
		return fmt.Sprintf("Task breakdown from %s: first clarify scope, then identify constraints, then propose an approach. Source: internal analysis.", m.Name), nil
	case strings.Contains(lower, "fact") || strings.Contains(lower, "check"):
		return "The claim is accurate according to available context. Source: cross-reference with prior statements.", nil
	case strings.Contains(lower, "code"):
		return "```go\nfunc Example() int {\n\treturn 42\n}\n```\nThis example is a minimal illustration.", nil
	default:
		return fmt.Sprintf("%s is a reasonable starting point for this request, likely requiring further refinement.", m.Name), nil
	}
}
