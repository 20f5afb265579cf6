package plagiarism

import "strings"

// DefaultNGramSize is the window used by the aggregate score
const DefaultNGramSize = 3

const ngramSeparator = "|"

// NGramSimilarity calculates the Jaccard overlap of the distinct n-grams of
// two token sequences. Returns 0 when either side is shorter than n.
func NGramSimilarity(a, b []Token, n int) float64 {
	if n <= 0 || len(a) < n || len(b) < n {
		return 0.0
	}

	setA := ngramSet(a, n)
	setB := ngramSet(b, n)

	intersection := 0
	for gram := range setA {
		if _, ok := setB[gram]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// ngrams slides a window of n lexemes across tokens. Each lexeme is followed
// by a separator so that adjacent lexemes cannot run together.
func ngrams(tokens []Token, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}

	grams := make([]string, 0, len(tokens)-n+1)
	var sb strings.Builder
	for i := 0; i+n <= len(tokens); i++ {
		sb.Reset()
		for _, tok := range tokens[i : i+n] {
			sb.WriteString(tok.Lexeme)
			sb.WriteString(ngramSeparator)
		}
		grams = append(grams, sb.String())
	}
	return grams
}

func ngramSet(tokens []Token, n int) map[string]struct{} {
	grams := ngrams(tokens, n)
	set := make(map[string]struct{}, len(grams))
	for _, gram := range grams {
		set[gram] = struct{}{}
	}
	return set
}
