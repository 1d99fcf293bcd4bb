package contradiction

import "strings"

// opposingPairs are lexical opposites; if one response asserts one side
// and the other asserts the opposite, that's heuristic evidence of a
// contradiction between the two.
var opposingPairs = [][2]string{
	{"true", "false"},
	{"correct", "incorrect"},
	{"accurate", "inaccurate"},
	{"increase", "decrease"},
	{"possible", "impossible"},
}

// heuristicContradiction is the fallback path used when the LLM probe is
// unavailable or errors: a cheap lexical check for directly opposing
// claims between two responses.
func heuristicContradiction(a, b string) (bool, string) {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, pair := range opposingPairs {
		left, right := pair[0], pair[1]
		if (strings.Contains(la, left) && strings.Contains(lb, right)) ||
			(strings.Contains(la, right) && strings.Contains(lb, left)) {
			return true, "responses assert opposing claims involving \"" + left + "\"/\"" + right + "\""
		}
	}
	return false, ""
}
