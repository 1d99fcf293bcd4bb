// Package contradiction checks whether two backends' answers to related
// tasks actually agree with each other, so the orchestrator can flag a
// synthesized response that's built on conflicting claims.
package contradiction

import (
	"context"
	"math"
	"sort"
)

// Pair describes one compared pair of task outputs.
type Pair struct {
	TaskA         string
	TaskB         string
	Contradictory bool
	Kind          string // "factual", "logical", "recommendation", "heuristic", ...
	Severity      string // "low", "medium", "high"
	Similarity    float64
	Explanation   string
}

// Report summarizes every pairwise comparison run over a task set.
type Report struct {
	Pairs      []Pair
	Severity   string // "none", "low", "medium", "high"
	Confidence float64
}

// ProbeResult is the parsed shape of the LLM adjudication call: a JSON
// object of {contradiction_found, type, description, severity}.
type ProbeResult struct {
	ContradictionFound bool
	Type               string
	Description        string
	Severity           string // "low", "medium", "high"
}

// Probe is the LLM-backed primary detection path: given two responses,
// does the model judge them contradictory, of what kind, and how severely.
// Detect falls back to heuristicContradiction when probe is nil or errors.
type Probe func(ctx context.Context, a, b string) (ProbeResult, error)

// similarityGate: responses this similar are treated as paraphrases, not
// candidates for contradiction — comparing them wastes a probe call and
// risks a false positive on phrasing alone.
const similarityGate = 0.8

// severityWeight backs the detection-confidence formula; an unrecognized
// severity string (or the heuristic fallback's fixed "medium") defaults to
// the medium weight rather than zero.
var severityWeight = map[string]float64{
	"low":    0.8,
	"medium": 1.0,
	"high":   1.2,
}

// Detect compares every pair of named responses and reports which pairs
// contradict each other.
func Detect(ctx context.Context, responses map[string]string, probe Probe) Report {
	names := make([]string, 0, len(responses))
	for name := range responses {
		names = append(names, name)
	}
	sort.Strings(names)

	var pairs []Pair
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			textA, textB := responses[a], responses[b]

			similarity := similarityRatio(textA, textB)
			if similarity > similarityGate {
				continue
			}

			contradictory, kind, severity, explanation := detectPair(ctx, textA, textB, probe)
			pairs = append(pairs, Pair{
				TaskA:         a,
				TaskB:         b,
				Contradictory: contradictory,
				Kind:          kind,
				Severity:      severity,
				Similarity:    similarity,
				Explanation:   explanation,
			})
		}
	}

	return buildReport(pairs)
}

func detectPair(ctx context.Context, a, b string, probe Probe) (contradictory bool, kind, severity, explanation string) {
	if probe != nil {
		result, err := probe(ctx, a, b)
		if err == nil {
			return result.ContradictionFound, result.Type, result.Severity, result.Description
		}
	}
	contradictory, explanation = heuristicContradiction(a, b)
	return contradictory, "heuristic", "medium", explanation
}

func buildReport(pairs []Pair) Report {
	count := 0
	weightSum := 0.0
	for _, p := range pairs {
		if !p.Contradictory {
			continue
		}
		count++
		w, ok := severityWeight[p.Severity]
		if !ok {
			w = severityWeight["medium"]
		}
		weightSum += w
	}

	var severity string
	switch {
	case count == 0:
		severity = "none"
	case count == 1:
		severity = "low"
	case count <= 3:
		severity = "medium"
	default:
		severity = "high"
	}

	confidence := 1.0
	if count > 0 {
		base := math.Max(0.3, 1.0-0.1*float64(count))
		confidence = base * weightSum / float64(count)
		if confidence > 1.0 {
			confidence = 1.0
		}
	}

	return Report{
		Pairs:      pairs,
		Severity:   severity,
		Confidence: confidence,
	}
}

// Resolution generates a short human-readable note suggesting how to
// reconcile a contradictory pair, for inclusion in the final report.
func Resolution(p Pair) string {
	if !p.Contradictory {
		return ""
	}
	if p.Explanation != "" {
		return "Conflict between " + p.TaskA + " and " + p.TaskB + ": " + p.Explanation + ". Prefer the higher-confidence task or request clarification."
	}
	return "Conflict between " + p.TaskA + " and " + p.TaskB + "; prefer the higher-confidence task or request clarification."
}
