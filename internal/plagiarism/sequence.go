package plagiarism

// LCSRatio calculates token sequence similarity as 2*LCS/(m+n).
// Tokens match when both kind and lexeme are equal.
func LCSRatio(a, b []Token) float64 {
	return diceLCS(a, b)
}

// StructureSimilarity applies the same LCS ratio to structure sequences
func StructureSimilarity(a, b []Symbol) float64 {
	return diceLCS(a, b)
}

// EditSimilarity calculates 1 - levenshtein/max(m,n) over tokens.
// Two empty sequences are identical (1.0); one empty sequence scores 0.0.
func EditSimilarity(a, b []Token) float64 {
	m, n := len(a), len(b)
	if m == 0 {
		if n == 0 {
			return 1.0
		}
		return 0.0
	}
	if n == 0 {
		return 0.0
	}

	distance := levenshtein(a, b)
	return 1.0 - float64(distance)/float64(max(m, n))
}

func diceLCS[T comparable](a, b []T) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	return 2.0 * float64(lcsLength(a, b)) / float64(len(a)+len(b))
}

// lcsLength keeps two rows sized by the shorter sequence
func lcsLength[T comparable](a, b []T) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		curr[0] = 0
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func levenshtein[T comparable](a, b []T) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
