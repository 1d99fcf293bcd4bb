package backend

const truncationMarker = "\n\n[Content truncated due to length]\n\n"

// TruncatePrompt keeps the first 70% and last 30% of prompt (by rune
// count) around the truncation marker when prompt exceeds maxChars,
// preserving the instruction at the start and the most recent context at
// the end — the two parts of a long prompt most likely to matter.
func TruncatePrompt(prompt string, maxChars int) string {
	if len(prompt) <= maxChars || maxChars <= 0 {
		return prompt
	}

	runes := []rune(prompt)
	budget := maxChars - len(truncationMarker)
	if budget <= 0 {
		return string(runes[:maxChars])
	}

	headLen := int(float64(budget) * 0.7)
	tailLen := budget - headLen

	if headLen > len(runes) {
		headLen = len(runes)
	}
	if tailLen > len(runes)-headLen {
		tailLen = len(runes) - headLen
	}

	head := string(runes[:headLen])
	tail := string(runes[len(runes)-tailLen:])
	return head + truncationMarker + tail
}
