package orchestrator

import (
	"fmt"
	"time"

	"github.com/nimbus-ai/reasoncore/dagtask"
)

// buildPlan constructs the canonical six-task reasoning graph for one
// user prompt: a task breakdown and an initial explanation run first, a
// fact check follows from both, a refined explanation reconciles the
// explanation with the fact check, a code example follows from the
// breakdown (for every task type), and a final synthesis folds the
// breakdown, refined explanation, fact check and code example together.
func buildPlan(prompt, taskType string, timeout time.Duration) []dagtask.Task {
	now := time.Now()

	mk := func(name, backend, tType, p string, priority dagtask.Priority, deps ...string) dagtask.Task {
		return dagtask.Task{
			Name:         name,
			TaskType:     tType,
			Backend:      backend,
			Prompt:       p,
			Priority:     priority,
			Dependencies: deps,
			Timeout:      timeout,
			MaxRetries:   2,
			Weight:       int(priority),
			CreatedAt:    now,
		}
	}

	return []dagtask.Task{
		mk("task_analysis", "anthropic", "task_breakdown",
			fmt.Sprintf("Break the following request into the key steps needed to answer it well: %s", prompt),
			dagtask.Critical),

		mk("initial_explanation", "openai", "explanation",
			fmt.Sprintf("Provide a clear explanation answering: %s", prompt),
			dagtask.High),

		mk("fact_check", "grok", "fact_check",
			fmt.Sprintf("Fact-check the key claims relevant to this request and cite sources where possible: %s", prompt),
			dagtask.High, "task_analysis", "initial_explanation"),

		mk("refined_explanation", "openai", "explanation",
			"Refine this explanation:\n{initial_explanation}\n\nAccounting for this fact check:\n{fact_check}",
			dagtask.Medium, "initial_explanation", "fact_check"),

		mk("code_example", "openai", "code_generation",
			fmt.Sprintf("Given this task breakdown:\n{task_analysis}\n\nWrite a short illustrative code example for: %s", prompt),
			dagtask.Low, "task_analysis"),

		mk("final_synthesis", "anthropic", "final_synthesis",
			"Combine the following into one coherent final answer.\n\nRefined explanation:\n{refined_explanation}\n\nFact check:\n{fact_check}\n\nCode example:\n{code_example}",
			dagtask.High, "task_analysis", "refined_explanation", "fact_check", "code_example"),
	}
}
