// Package quality scores a backend's response deterministically across
// several dimensions (length, hedging, specificity, structure, and
// task alignment), combining them into a single confidence score the
// orchestrator uses to decide whether a task needs to be re-routed.
package quality

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Metrics holds every sub-score computed for one response, plus the
// weighted Confidence they combine into.
type Metrics struct {
	Confidence         float64
	LengthScore        float64
	UncertaintyScore   float64
	SpecificityScore   float64
	StructureScore     float64
	TaskAlignmentScore float64
	CoherenceScore     float64
	CompletenessScore  float64
	ReadabilityScore   float64
	Issues             []string
}

// weights mirror the controller's confidence formula: task alignment and
// hedging density matter most, structure least.
var weights = map[string]float64{
	"length":         0.15,
	"uncertainty":    0.25,
	"specificity":    0.20,
	"structure":      0.15,
	"task_alignment": 0.25,
}

// optimalWordCount is the word count each task type converges toward;
// LengthScore approaches 1.0 as wordCount climbs to it and stays there.
var optimalWordCount = map[string]int{
	"explanation":     300,
	"fact_check":      150,
	"code_generation": 200,
}

const defaultOptimalWordCount = 250

// TaskAlignmentProbe is the one LLM-backed sub-score: how well response
// actually answers prompt for the given task type. Everything else in
// this package is a pure function of response text, so tests can supply
// a deterministic probe and exercise the rest without any backend.
type TaskAlignmentProbe func(ctx context.Context, response, prompt, taskType string) (float64, error)

// Score computes every sub-metric for response and combines them into
// Confidence. If probe is nil, TaskAlignmentScore defaults to 0.5
// (neutral) rather than failing the whole assessment.
func Score(ctx context.Context, response, prompt, taskType string, probe TaskAlignmentProbe) (Metrics, error) {
	m := Metrics{}

	words := wordsOf(response)
	wordCount := len(words)

	m.LengthScore = lengthScore(wordCount, taskType)
	m.UncertaintyScore = uncertaintyScore(response, wordCount)
	m.SpecificityScore = specificityScore(response)
	m.StructureScore = structureScore(response)
	m.CoherenceScore = coherenceScore(response, words)
	m.CompletenessScore = completenessScore(response, taskType, wordCount)
	m.ReadabilityScore = readabilityScore(response)

	if probe != nil {
		score, err := probe(ctx, response, prompt, taskType)
		if err != nil {
			m.TaskAlignmentScore = 0.5
			m.Issues = append(m.Issues, "task alignment probe failed: "+err.Error())
		} else {
			m.TaskAlignmentScore = clamp01(score)
		}
	} else {
		m.TaskAlignmentScore = 0.5
	}

	m.Confidence = weights["length"]*m.LengthScore +
		weights["uncertainty"]*m.UncertaintyScore +
		weights["specificity"]*m.SpecificityScore +
		weights["structure"]*m.StructureScore +
		weights["task_alignment"]*m.TaskAlignmentScore

	m.Issues = append(m.Issues, detectContentIssues(response, words)...)

	return m, nil
}

func wordsOf(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '\'' && r != '-')
	})
}

// lengthScore is spec §4.4's literal formula: 0.2 + 0.8·min(w/optimal, 1).
// It rises to 1.0 at the optimal word count and never falls back off past
// it — a long, complete response never scores worse than a right-sized one.
func lengthScore(wordCount int, taskType string) float64 {
	optimal, ok := optimalWordCount[taskType]
	if !ok {
		optimal = defaultOptimalWordCount
	}
	ratio := float64(wordCount) / float64(optimal)
	if ratio > 1 {
		ratio = 1
	}
	return clamp01(0.2 + 0.8*ratio)
}

func perHundredWords(count, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}
	return float64(count) / float64(wordCount) * 100
}

func countOccurrences(text string, phrases []string) int {
	lower := strings.ToLower(text)
	total := 0
	for _, p := range phrases {
		total += strings.Count(lower, p)
	}
	return total
}

// uncertaintyScore is spec §4.4's literal formula: max(0, 1 − 0.3·uncertaintyDensity)
// + 0.2·boosterDensity, clamped to [0,1], with densities per 100 words.
func uncertaintyScore(response string, wordCount int) float64 {
	uncertainDensity := perHundredWords(countOccurrences(response, uncertaintyPhrases), wordCount)
	boosterDensity := perHundredWords(countOccurrences(response, confidenceBoosters), wordCount)

	score := math.Max(0, 1-0.3*uncertainDensity) + 0.2*boosterDensity
	return clamp01(score)
}

var (
	digitPattern            = regexp.MustCompile(`\d+`)
	yearPattern             = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	capitalizedBigramPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]*\s+[A-Z][a-zA-Z]*\b`)
)

// specificityScore is spec §4.4's literal formula for the Confidence
// component: min(1, (#digit-runs + #four-digit-years + #capitalized-bigrams)/10).
func specificityScore(response string) float64 {
	digitRuns := len(digitPattern.FindAllString(response, -1))
	years := len(yearPattern.FindAllString(response, -1))
	bigrams := len(capitalizedBigramPattern.FindAllString(response, -1))
	return clamp01(float64(digitRuns+years+bigrams) / 10.0)
}

func structureScore(response string) float64 {
	score := 0.5
	if strings.Contains(response, "\n- ") || strings.Contains(response, "\n* ") {
		score += 0.2
	}
	if regexp.MustCompile(`\n\d+[.)]\s`).MatchString(response) {
		score += 0.2
	}
	if strings.Count(response, "\n\n") >= 1 {
		score += 0.1
	}
	return clamp01(score)
}

// sentencesOf splits response on sentence-ending punctuation and returns
// only the non-empty sentences, for the readability and coherence formulas.
func sentencesOf(response string) []string {
	raw := regexp.MustCompile(`[.!?]+`).Split(response, -1)
	var sentences []string
	for _, s := range raw {
		if len(wordsOf(s)) > 0 {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// coherenceScore is spec §4.4's literal formula: 0.8 if fewer than two
// sentences; else 0.7 + 0.05·min(transitionCount, 4), multiplied by lexical
// diversity (unique-word ratio).
func coherenceScore(response string, words []string) float64 {
	if len(sentencesOf(response)) < 2 {
		return 0.8
	}
	transitionCount := math.Min(float64(countOccurrences(response, transitionWords)), 4)
	base := 0.7 + 0.05*transitionCount
	return clamp01(base * uniqueWordRatio(words))
}

func uniqueWordRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(w)] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

var factCheckKeywords = []string{"verified", "confirmed", "according to", "source", "study"}

// completenessScore is spec §4.4's literal per-task-type bonus rules on
// top of a 0.5 base, clamped to 1.
func completenessScore(response string, taskType string, wordCount int) float64 {
	lower := strings.ToLower(response)
	score := 0.5

	switch taskType {
	case "explanation":
		if strings.Contains(lower, "example") || strings.Contains(lower, "for instance") {
			score += 0.2
		}
		if wordCount > 100 {
			score += 0.2
		}
		if strings.Contains(lower, "because") || strings.Contains(lower, "due to") {
			score += 0.1
		}
	case "fact_check":
		for _, kw := range factCheckKeywords {
			if strings.Contains(lower, kw) {
				score += 0.3
				break
			}
		}
	case "code_generation":
		if strings.Contains(response, "```") || strings.Contains(lower, "function") || strings.Contains(lower, "func ") {
			score += 0.3
		}
		if strings.Contains(response, "//") || strings.Contains(response, "#") {
			score += 0.1
		}
	}

	if wordCount > 50 {
		score += 0.1
	}

	return clamp01(score)
}

// readabilityScore is spec §4.4's literal formula: avg = w/s across
// sentences; 1.0 if 10 ≤ avg ≤ 25; 0.7 if avg < 10; else max(0.3, 1 − 0.02·(avg−25)).
func readabilityScore(response string) float64 {
	sentences := sentencesOf(response)
	if len(sentences) == 0 {
		return 0.3
	}
	total := 0
	for _, s := range sentences {
		total += len(wordsOf(s))
	}
	avg := float64(total) / float64(len(sentences))
	switch {
	case avg >= 10 && avg <= 25:
		return 1.0
	case avg < 10:
		return 0.7
	default:
		return clamp(1-0.02*(avg-25), 0.3, 1.0)
	}
}

var placeholderPhrases = []string{"[placeholder]", "todo", "tbd", "xxx", "..."}

// detectContentIssues is spec §4.4's literal content-flag rules.
func detectContentIssues(response string, words []string) []string {
	var issues []string

	if len(strings.TrimSpace(response)) < 20 {
		issues = append(issues, "too_short")
	}
	if len(response) > 5000 {
		issues = append(issues, "too_long")
	}

	lower := strings.ToLower(response)
	for _, p := range placeholderPhrases {
		if strings.Contains(lower, p) {
			issues = append(issues, "placeholder_content")
			break
		}
	}

	if len(words) > 0 {
		freq := make(map[string]int)
		for _, w := range words {
			if len(w) > 3 {
				freq[strings.ToLower(w)]++
			}
		}
		for _, c := range freq {
			if float64(c)/float64(len(words)) > 0.10 {
				issues = append(issues, "excessive_repetition")
				break
			}
		}
	}

	return issues
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
