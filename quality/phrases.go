package quality

// uncertaintyPhrases mark hedged language; a response dense with these
// scores lower on confidence. Matches the glossary's uncertainty list.
var uncertaintyPhrases = []string{
	"i'm not sure", "uncertain", "unclear", "might be", "could be",
	"possibly", "perhaps", "i don't know", "not certain", "can't determine",
	"insufficient information", "hard to say", "difficult to determine",
	"i think", "i believe", "seems like", "appears to", "probably",
}

// confidenceBoosters mark assertive language; density of these raises the
// confidence score, counterbalancing uncertainty phrases.
var confidenceBoosters = []string{
	"definitely", "certainly", "clearly", "obviously", "undoubtedly",
	"without doubt", "proven", "confirmed", "established", "fact",
	"always", "never", "guaranteed",
}

// transitionWords reward coherence: a response that links ideas reads as
// more structured than a flat list of assertions.
var transitionWords = []string{
	"however", "therefore", "furthermore", "moreover", "consequently",
	"in addition", "on the other hand", "as a result", "in contrast",
	"similarly", "thus", "hence", "meanwhile",
}

// contradictoryPairs are lexical opposites. Score computes no
// internal-consistency sub-score, and nothing in this package reads this
// list.
var contradictoryPairs = [][2]string{
	{"true", "false"},
	{"correct", "incorrect"},
	{"accurate", "inaccurate"},
	{"always", "never"},
	{"possible", "impossible"},
	{"increase", "decrease"},
}
