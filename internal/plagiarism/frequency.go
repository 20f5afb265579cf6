package plagiarism

import "math"

// FrequencyMap counts keyword and operator lexemes. Identifiers and literals
// are left out so naming choices do not move the score.
type FrequencyMap map[string]int

// NewFrequencyMap builds the keyword/operator count map of a token sequence
func NewFrequencyMap(tokens []Token) FrequencyMap {
	freq := make(FrequencyMap)
	for _, tok := range tokens {
		if tok.Kind == KindKeyword || tok.Kind == KindOperator {
			freq[tok.Lexeme]++
		}
	}
	return freq
}

func (f FrequencyMap) sumSquares() float64 {
	sum := 0
	for _, count := range f {
		sum += count * count
	}
	return float64(sum)
}

// FrequencySimilarity calculates the cosine similarity of the keyword and
// operator frequency vectors of two token sequences.
func FrequencySimilarity(a, b []Token) float64 {
	freqA := NewFrequencyMap(a)
	freqB := NewFrequencyMap(b)

	if len(freqA) == 0 || len(freqB) == 0 {
		return 0.0
	}

	dot := 0
	for lexeme, countA := range freqA {
		if countB, ok := freqB[lexeme]; ok {
			dot += countA * countB
		}
	}

	sumA := freqA.sumSquares()
	sumB := freqB.sumSquares()
	if sumA == 0 || sumB == 0 {
		return 0.0
	}

	// One square root keeps identical vectors at exactly 1
	return math.Min(1.0, float64(dot)/math.Sqrt(sumA*sumB))
}
