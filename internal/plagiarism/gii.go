package plagiarism

import (
	"github.com/RishiKendai/codesim/internal/models"
)

// GII (Global Inverted Index) maps fingerprint → [attempt ids]
type GII map[string][]string

// BuildGII builds the inverted index of a bucket, keeping only fingerprints
// shared by at least two submissions.
func BuildGII(submissions []*models.Submission) GII {
	gii := make(GII)

	for _, submission := range submissions {
		for _, hash := range submission.Fingerprints {
			gii[hash] = append(gii[hash], submission.AttemptID)
		}
	}

	for hash, attemptIDs := range gii {
		if len(attemptIDs) < 2 {
			delete(gii, hash)
		}
	}

	return gii
}

// Pair is two submissions selected for a full comparison
type Pair struct {
	SubmissionA *models.Submission
	SubmissionB *models.Submission
}

// GetWorthyPairs returns the pairs sharing a fingerprint whose overlap
// reaches the difficulty threshold.
func GetWorthyPairs(gii GII, submissions []*models.Submission, difficulty string) []Pair {
	byAttempt := make(map[string]*models.Submission, len(submissions))
	for _, submission := range submissions {
		byAttempt[submission.AttemptID] = submission
	}

	threshold := getWorthyThreshold(difficulty)
	seen := make(map[string]bool)
	pairs := make([]Pair, 0)

	for _, attemptIDs := range gii {
		for i := 0; i < len(attemptIDs); i++ {
			for j := i + 1; j < len(attemptIDs); j++ {
				if attemptIDs[i] == attemptIDs[j] {
					continue
				}

				key := getPairKey(attemptIDs[i], attemptIDs[j])
				if seen[key] {
					continue
				}
				seen[key] = true

				a, okA := byAttempt[attemptIDs[i]]
				b, okB := byAttempt[attemptIDs[j]]
				if !okA || !okB || a.Email == b.Email {
					continue
				}

				if FingerprintOverlap(a, b) >= threshold {
					pairs = append(pairs, Pair{SubmissionA: a, SubmissionB: b})
				}
			}
		}
	}

	return pairs
}

func getWorthyThreshold(difficulty string) float64 {
	switch difficulty {
	case "easy":
		return 0.15
	case "hard":
		return 0.05
	default:
		return 0.10
	}
}

// getPairKey creates an order-independent key for a pair
func getPairKey(id1, id2 string) string {
	if id1 < id2 {
		return id1 + ":" + id2
	}
	return id2 + ":" + id1
}
