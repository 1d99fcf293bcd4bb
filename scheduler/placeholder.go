package scheduler

import (
	"strings"

	"github.com/nimbus-ai/reasoncore/dagtask"
)

// substitutePlaceholders replaces every {depName} occurrence in prompt
// with the named dependency's completed output. A placeholder naming a
// dependency that failed or wasn't attempted is left as literal text —
// callers check dependency success before reaching this point, so in
// practice that only happens for a task with no such case.
func substitutePlaceholders(prompt string, done map[string]dagtask.TaskResult) string {
	if !strings.Contains(prompt, "{") {
		return prompt
	}
	out := prompt
	for name, result := range done {
		if !result.Succeeded() {
			continue
		}
		out = strings.ReplaceAll(out, "{"+name+"}", result.Output)
	}
	return out
}
