package contradiction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFindsNoContradictionsAmongAgreeingResponses(t *testing.T) {
	responses := map[string]string{
		"a": "The capital of France is Paris, a well-established fact.",
		"b": "Paris serves as the capital city of France.",
	}
	report := Detect(context.Background(), responses, nil)
	assert.Equal(t, "none", report.Severity)
	assert.Equal(t, 1.0, report.Confidence, "zero contradictions means full confidence in that finding")
}

func TestDetectUsesProbeWhenAvailable(t *testing.T) {
	responses := map[string]string{
		"a": "The treatment is effective according to the trial.",
		"b": "The treatment showed no measurable effect in follow-up.",
	}
	probe := func(ctx context.Context, x, y string) (ProbeResult, error) {
		return ProbeResult{
			ContradictionFound: true,
			Type:               "factual",
			Description:        "one says effective, the other says no effect",
			Severity:           "high",
		}, nil
	}
	report := Detect(context.Background(), responses, probe)
	assert.NotEqual(t, "none", report.Severity)
	require := assert.New(t)
	require.Len(report.Pairs, 1)
	require.True(report.Pairs[0].Contradictory)
	assert.Equal(t, "factual", report.Pairs[0].Kind)
	assert.Equal(t, "high", report.Pairs[0].Severity)
}

func TestDetectFallsBackToHeuristicWhenProbeErrors(t *testing.T) {
	responses := map[string]string{
		"a": "This claim is correct based on all available data points here.",
		"b": "This claim is incorrect according to the most recent independent review.",
	}
	probe := func(ctx context.Context, x, y string) (ProbeResult, error) {
		return ProbeResult{}, errors.New("probe backend unavailable")
	}
	report := Detect(context.Background(), responses, probe)
	assert.Equal(t, 1, countContradictory(report.Pairs))
	assert.Equal(t, "heuristic", report.Pairs[0].Kind)
	assert.Equal(t, "medium", report.Pairs[0].Severity)
}

func TestDetectSkipsHighlySimilarPairs(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog near the river bank today."
	responses := map[string]string{
		"a": text,
		"b": text,
	}
	probeCalled := false
	probe := func(ctx context.Context, x, y string) (ProbeResult, error) {
		probeCalled = true
		return ProbeResult{ContradictionFound: true}, nil
	}
	report := Detect(context.Background(), responses, probe)
	assert.False(t, probeCalled, "near-identical responses should be gated out before reaching the probe")
	assert.Empty(t, report.Pairs)
}

func TestBuildReportSeverityScalesWithContradictionCount(t *testing.T) {
	zero := buildReport(nil)
	assert.Equal(t, "none", zero.Severity)

	one := buildReport([]Pair{{Contradictory: true, Severity: "low"}})
	assert.Equal(t, "low", one.Severity)

	three := buildReport([]Pair{
		{Contradictory: true, Severity: "medium"},
		{Contradictory: true, Severity: "medium"},
		{Contradictory: true, Severity: "medium"},
	})
	assert.Equal(t, "medium", three.Severity)

	five := buildReport([]Pair{
		{Contradictory: true, Severity: "high"}, {Contradictory: true, Severity: "high"},
		{Contradictory: true, Severity: "high"}, {Contradictory: true, Severity: "high"},
		{Contradictory: true, Severity: "high"},
	})
	assert.Equal(t, "high", five.Severity)
}

func TestBuildReportConfidenceSumsPerPairSeverityWeights(t *testing.T) {
	// Two contradictions, one low (0.8) one high (1.2): base = max(0.3, 1-0.2) = 0.8,
	// confidence = 0.8 * (0.8+1.2)/2 = 0.8.
	report := buildReport([]Pair{
		{Contradictory: true, Severity: "low"},
		{Contradictory: true, Severity: "high"},
	})
	assert.InDelta(t, 0.8, report.Confidence, 0.001)
}

func TestBuildReportUnknownSeverityDefaultsToMediumWeight(t *testing.T) {
	withUnknown := buildReport([]Pair{{Contradictory: true, Severity: "unrecognized"}})
	withMedium := buildReport([]Pair{{Contradictory: true, Severity: "medium"}})
	assert.Equal(t, withMedium.Confidence, withUnknown.Confidence)
}

func TestResolutionEmptyForNonContradictoryPair(t *testing.T) {
	assert.Equal(t, "", Resolution(Pair{Contradictory: false}))
}

func TestResolutionIncludesExplanationWhenPresent(t *testing.T) {
	r := Resolution(Pair{TaskA: "a", TaskB: "b", Contradictory: true, Explanation: "opposing claims"})
	assert.Contains(t, r, "opposing claims")
	assert.Contains(t, r, "a")
	assert.Contains(t, r, "b")
}

func countContradictory(pairs []Pair) int {
	n := 0
	for _, p := range pairs {
		if p.Contradictory {
			n++
		}
	}
	return n
}
