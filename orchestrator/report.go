package orchestrator

import "github.com/nimbus-ai/reasoncore/contradiction"

// Report is the stable external shape of a completed Reason call. Field
// names match the contract external callers (a façade this module does
// not implement) marshal directly as a JSON response body.
type Report struct {
	TaskBreakdown       string               `json:"Task Breakdown"`
	InitialExplanation  string               `json:"Initial Explanation"`
	FactCheck           string               `json:"Fact Check"`
	RefinedExplanation  string               `json:"Refined Explanation"`
	CodeExample         string               `json:"Code Example"`
	FinalResponse       string               `json:"Final Response"`
	QualityAssessments  map[string]Metrics   `json:"Quality Assessments"`
	ContradictionReport ContradictionSummary `json:"Contradiction Report"`
	ExecutionSummary    ExecutionSummary     `json:"Execution Summary"`
	ConfidenceScores    map[string]float64   `json:"Confidence Scores"`
}

// Metrics mirrors quality.Metrics in the report's JSON shape, trimmed to
// the fields worth surfacing to a caller rather than the full internal
// scoring breakdown.
type Metrics struct {
	ConfidenceScore   float64  `json:"confidence_score"`
	CoherenceScore    float64  `json:"coherence_score"`
	CompletenessScore float64  `json:"completeness_score"`
	ContentFlags      []string `json:"content_flags,omitempty"`
}

// ExecutionSummary reports how the task graph actually ran: how many
// tasks finished, how many retries that took, and how long it took.
type ExecutionSummary struct {
	RequestID            string   `json:"request_id"`
	TotalTasks           int      `json:"total_tasks"`
	SuccessfulTasks      int      `json:"successful_tasks"`
	FailedTasks          []string `json:"failed_tasks"`
	RetriesPerformed     int      `json:"retries_performed"`
	TotalExecutionTime   float64  `json:"total_execution_time"`
	CompletionRate       float64  `json:"completion_rate"`
	AverageExecutionTime float64  `json:"average_execution_time"`
	CompletedTasks       []string `json:"completed_tasks"`
}

// ContradictionEntry is one contradictory pair surfaced in the report's
// "contradictions_found" list; agreeing pairs are not included.
type ContradictionEntry struct {
	TaskA       string `json:"task_a"`
	TaskB       string `json:"task_b"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ContradictionSummary is the external shape of a contradiction.Report,
// with the literal field names §6 of the spec fixes as the stable
// contract.
type ContradictionSummary struct {
	ContradictionsFound   []ContradictionEntry `json:"contradictions_found"`
	SeverityLevel         string               `json:"severity_level"`
	ConfidenceInDetection float64              `json:"confidence_in_detection"`
}

// newContradictionSummary narrows an internal contradiction.Report, which
// records every compared pair, down to the external shape: only the pairs
// that were actually found contradictory.
func newContradictionSummary(r contradiction.Report) ContradictionSummary {
	entries := make([]ContradictionEntry, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		if !p.Contradictory {
			continue
		}
		entries = append(entries, ContradictionEntry{
			TaskA:       p.TaskA,
			TaskB:       p.TaskB,
			Type:        p.Kind,
			Severity:    p.Severity,
			Description: p.Explanation,
		})
	}
	return ContradictionSummary{
		ContradictionsFound:   entries,
		SeverityLevel:         r.Severity,
		ConfidenceInDetection: r.Confidence,
	}
}
