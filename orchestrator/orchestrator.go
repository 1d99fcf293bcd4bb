// Package orchestrator wires the task scheduler, backend registry, and
// quality/contradiction engines into the single entry point this module
// exposes: Reason. Everything above this package (an HTTP façade, a
// persistence layer) is out of scope and left to the caller.
package orchestrator

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nimbus-ai/reasoncore/contradiction"
	"github.com/nimbus-ai/reasoncore/core"
	"github.com/nimbus-ai/reasoncore/dagtask"
	"github.com/nimbus-ai/reasoncore/quality"
	"github.com/nimbus-ai/reasoncore/registry"
	"github.com/nimbus-ai/reasoncore/scheduler"
)

// Orchestrator runs the canonical six-task reasoning plan for one prompt
// and assembles the result into a Report.
type Orchestrator struct {
	registry *registry.Registry
	memory   core.MemoryStore
	cfg      *core.Config
	logger   core.Logger
	metrics  core.MetricsRegistry

	// probeBackend is the logical backend asked to judge task alignment
	// and pairwise contradictions. If unset, one of the registered
	// backends is used; which one is not defined.
	probeBackend string
}

// New builds an Orchestrator. reg must already have its backends
// registered; mem and cfg are required, probeBackend may be empty to use
// one of the registered backends (which one is not defined).
func New(reg *registry.Registry, mem core.MemoryStore, cfg *core.Config, logger core.Logger, metrics core.MetricsRegistry, probeBackend string) *Orchestrator {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	if metrics == nil {
		metrics = core.NoOpMetrics{}
	}
	return &Orchestrator{
		registry:     reg,
		memory:       mem,
		cfg:          cfg,
		logger:       logger,
		metrics:      metrics,
		probeBackend: probeBackend,
	}
}

// alternateBackend computes the re-route target for a task that scored
// below the confidence threshold: claude (here, the "anthropic" logical
// backend) for low-confidence results or for the two tasks the plan
// always wants judged by it, gpt ("openai") otherwise. Every task except
// final_synthesis is eligible to re-route.
func alternateBackend(taskName string, confidence float64) string {
	if confidence < 0.4 || taskName == "task_analysis" || taskName == "fact_check" {
		return "anthropic"
	}
	return "openai"
}

// Reason runs the canonical plan for prompt and returns the assembled
// Report. userID scopes memory recall/store and audit events.
func (o *Orchestrator) Reason(ctx context.Context, userID, prompt, taskType string) (*Report, error) {
	started := time.Now()
	requestID := uuid.NewString()
	o.logger.Info("reason started", map[string]interface{}{"request_id": requestID, "user_id": userID, "task_type": taskType})

	if o.memory != nil {
		if _, err := o.memory.Recall(ctx, userID, 5); err != nil {
			o.logger.Warn("memory recall failed", map[string]interface{}{"error": err.Error()})
		}
	}

	plan := buildPlan(prompt, taskType, o.cfg.DefaultTaskTimeout)

	sched := scheduler.New(o.cfg.MaxConcurrentTasks, scheduler.WithLogger(o.logger), scheduler.WithMetrics(o.metrics))
	for _, t := range plan {
		sched.Add(t)
	}

	exec := func(ctx context.Context, t dagtask.Task) (string, error) {
		return o.registry.CallWithTimeout(ctx, userID, t.Name, t.TaskType, t.Backend, t.Prompt, t.Timeout)
	}

	results, err := sched.Run(ctx, exec)
	if err != nil {
		return nil, err
	}

	probe := o.taskAlignmentProbe(userID)
	reroutePlan := make(map[string]dagtask.Task, len(plan))
	for _, t := range plan {
		reroutePlan[t.Name] = t
	}

	metricsByTask := make(map[string]quality.Metrics, len(results))
	var rerouted []string

	for name, result := range results {
		if !result.Succeeded() {
			continue
		}
		m, _ := quality.Score(ctx, result.Output, prompt, reroutePlan[name].TaskType, probe)
		metricsByTask[name] = m

		if name != "final_synthesis" && m.Confidence < o.cfg.ConfidenceThreshold {
			{
				alt := alternateBackend(name, m.Confidence)
				altOut, altErr := o.registry.CallWithTimeout(ctx, userID, name, reroutePlan[name].TaskType, alt, reroutePlan[name].Prompt, reroutePlan[name].Timeout)
				if altErr == nil {
					altMetrics, _ := quality.Score(ctx, altOut, prompt, reroutePlan[name].TaskType, probe)
					if altMetrics.Confidence > m.Confidence {
						result.Output = altOut
						result.Attempts++
						results[name] = result
						metricsByTask[name] = altMetrics
						rerouted = append(rerouted, name)
					}
				}
			}
		}
	}

	responseTexts := make(map[string]string)
	for _, name := range []string{"initial_explanation", "fact_check", "refined_explanation", "code_example"} {
		if r, ok := results[name]; ok && r.Succeeded() {
			responseTexts[name] = r.Output
		}
	}

	var contradictionReport contradiction.Report
	if o.cfg.EnableContradictionDetection {
		contradictionReport = contradiction.Detect(ctx, responseTexts, o.contradictionProbe(userID))
	}

	if len(rerouted) > 0 {
		o.logger.Info("tasks rerouted to an alternate backend", map[string]interface{}{"request_id": requestID, "tasks": rerouted})
	}

	completed := make([]string, 0, len(results))
	failedTasks := make([]string, 0)
	var totalDuration float64
	retriesPerformed := 0
	for _, r := range results {
		totalDuration += r.Duration().Seconds()
		if r.Attempts > 1 {
			retriesPerformed += r.Attempts - 1
		}
		if r.Succeeded() {
			completed = append(completed, r.TaskName)
		} else {
			failedTasks = append(failedTasks, r.TaskName)
		}
	}
	sort.Strings(completed)
	sort.Strings(failedTasks)

	totalTasks := len(results)
	var completionRate, averageExecutionTime float64
	if totalTasks > 0 {
		completionRate = float64(len(completed)) / float64(totalTasks)
		averageExecutionTime = totalDuration / float64(totalTasks)
	}

	summary := ExecutionSummary{
		RequestID:            requestID,
		TotalTasks:           totalTasks,
		SuccessfulTasks:      len(completed),
		FailedTasks:          failedTasks,
		RetriesPerformed:     retriesPerformed,
		TotalExecutionTime:   time.Since(started).Seconds(),
		CompletionRate:       completionRate,
		AverageExecutionTime: averageExecutionTime,
		CompletedTasks:       completed,
	}
	confidenceScores := make(map[string]float64, len(metricsByTask))
	qualityAssessments := make(map[string]Metrics, len(metricsByTask))
	for name, m := range metricsByTask {
		confidenceScores[name] = m.Confidence
		qualityAssessments[name] = Metrics{
			ConfidenceScore:   m.Confidence,
			CoherenceScore:    m.CoherenceScore,
			CompletenessScore: m.CompletenessScore,
			ContentFlags:      m.Issues,
		}
	}

	report := &Report{
		TaskBreakdown:       outputOf(results, "task_analysis"),
		InitialExplanation:  outputOf(results, "initial_explanation"),
		FactCheck:           outputOf(results, "fact_check"),
		RefinedExplanation:  outputOf(results, "refined_explanation"),
		CodeExample:         outputOf(results, "code_example"),
		FinalResponse:       outputOf(results, "final_synthesis"),
		QualityAssessments:  qualityAssessments,
		ContradictionReport: newContradictionSummary(contradictionReport),
		ExecutionSummary:    summary,
		ConfidenceScores:    confidenceScores,
	}

	if o.memory != nil {
		entry := core.MemoryEntry{
			UserID:    userID,
			Prompt:    prompt,
			Response:  report.FinalResponse,
			TaskType:  taskType,
			CreatedAt: time.Now(),
		}
		if err := o.memory.Store(ctx, entry); err != nil {
			o.logger.Warn("memory store failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return report, nil
}

func outputOf(results map[string]dagtask.TaskResult, name string) string {
	if r, ok := results[name]; ok && r.Succeeded() {
		return r.Output
	}
	return ""
}

var decimalPattern = regexp.MustCompile(`0?\.\d+|1\.0|[01]`)

func (o *Orchestrator) resolveProbeBackend() string {
	if o.probeBackend != "" {
		return o.probeBackend
	}
	names := o.registry.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// taskAlignmentProbe asks the probe backend to rate, on a 0-1 scale, how
// well a response addresses its task, and parses the first decimal it
// finds in the reply.
func (o *Orchestrator) taskAlignmentProbe(userID string) quality.TaskAlignmentProbe {
	backend := o.resolveProbeBackend()
	if backend == "" {
		return nil
	}
	return func(ctx context.Context, response, prompt, taskType string) (float64, error) {
		probePrompt := "On a scale of 0 to 1, how well does this response address the request \"" + prompt +
			"\" for a task of type " + taskType + "? Respond with only a decimal number.\n\nResponse:\n" + response

		out, err := o.registry.CallWithTimeout(ctx, userID, "task_alignment_probe", "probe", backend, probePrompt, 10*time.Second)
		if err != nil {
			return 0, err
		}

		match := decimalPattern.FindString(out)
		if match == "" {
			return 0.5, nil
		}
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0.5, nil
		}
		return f, nil
	}
}

type contradictionJudgement struct {
	ContradictionFound bool   `json:"contradiction_found"`
	Type               string `json:"type"`
	Description        string `json:"description"`
	Severity           string `json:"severity"`
}

// contradictionProbe asks the probe backend whether two responses
// contradict each other, expecting the JSON adjudication contract back
// ({contradiction_found, type, description, severity}); a malformed reply
// falls back to the heuristic path in the contradiction package.
func (o *Orchestrator) contradictionProbe(userID string) contradiction.Probe {
	backend := o.resolveProbeBackend()
	if backend == "" {
		return nil
	}
	return func(ctx context.Context, a, b string) (contradiction.ProbeResult, error) {
		probePrompt := "Do these two statements contradict each other? Respond with JSON: " +
			`{"contradiction_found": true or false, "type": "factual|logical|recommendation", "description": "...", "severity": "low|medium|high"}` +
			"\n\nStatement A:\n" + a + "\n\nStatement B:\n" + b

		out, err := o.registry.CallWithTimeout(ctx, userID, "contradiction_probe", "probe", backend, probePrompt, 10*time.Second)
		if err != nil {
			return contradiction.ProbeResult{}, err
		}

		var judgement contradictionJudgement
		if err := json.Unmarshal([]byte(extractJSON(out)), &judgement); err != nil {
			return contradiction.ProbeResult{}, err
		}
		return contradiction.ProbeResult{
			ContradictionFound: judgement.ContradictionFound,
			Type:               judgement.Type,
			Description:        judgement.Description,
			Severity:           judgement.Severity,
		}, nil
	}
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

func extractJSON(s string) string {
	match := jsonObjectPattern.FindString(s)
	if match == "" {
		return s
	}
	return match
}
