package plagiarism

import (
	"math"
	"sort"

	"github.com/RishiKendai/codesim/internal/models"
)

// Scores holds the five metric scores of one comparison
type Scores struct {
	LCS          float64
	Structure    float64
	NGram        float64
	Frequency    float64
	EditDistance float64
}

// Weights holds the contribution of each metric to the overall score
type Weights struct {
	LCS          float64
	Structure    float64
	NGram        float64
	Frequency    float64
	EditDistance float64
}

// DefaultWeights sum to 1.0 so the overall score stays in [0, 1]
var DefaultWeights = Weights{
	LCS:          0.30,
	Structure:    0.25,
	NGram:        0.20,
	Frequency:    0.15,
	EditDistance: 0.10,
}

// Overall combines the metric scores into one weighted score
func (w Weights) Overall(s Scores) float64 {
	score := w.LCS*s.LCS +
		w.Structure*s.Structure +
		w.NGram*s.NGram +
		w.Frequency*s.Frequency +
		w.EditDistance*s.EditDistance
	return clamp(score)
}

// Level is the qualitative band of an overall score. LevelMinimal covers the
// lowest band, read as "minimal or original", and is serialized as "minimal".
type Level string

const (
	LevelHigh     Level = "high"
	LevelModerate Level = "moderate"
	LevelLow      Level = "low"
	LevelMinimal  Level = "minimal"
)

// Classify maps a score to its band. Lower bounds are inclusive.
func Classify(score float64) Level {
	switch {
	case score >= 0.85:
		return LevelHigh
	case score >= 0.70:
		return LevelModerate
	case score >= 0.50:
		return LevelLow
	default:
		return LevelMinimal
	}
}

// Flagged reports whether the band indicates any plagiarism
func (l Level) Flagged() bool {
	return l != LevelMinimal
}

// Verdict returns the report line for the band
func (l Level) Verdict() string {
	switch l {
	case LevelHigh:
		return "WARNING: HIGH PLAGIARISM - Very likely copied"
	case LevelModerate:
		return "WARNING: MODERATE PLAGIARISM - Suspicious similarity"
	case LevelLow:
		return "WARNING: LOW PLAGIARISM - Some similar patterns"
	default:
		return "PASS: MINIMAL SIMILARITY - Likely original"
	}
}

// PairSimilarity represents the comparison of two submissions within a drive
type PairSimilarity struct {
	SubmissionA *models.Submission
	SubmissionB *models.Submission
	Result      *Result
	QID         string
	Difficulty  string
}

const (
	topK          = 3
	maxPeerBoost  = 0.15
	peerBoostStep = 0.05
)

// CandidateScore averages the top three flagged pair scores of a candidate
// and adds a boost per additional peer.
func CandidateScore(email string, pairs []PairSimilarity) float64 {
	flagged := make([]float64, 0, len(pairs))
	peers := make(map[string]struct{})
	for _, pair := range pairs {
		if pair.Result == nil || !pair.Result.Level.Flagged() {
			continue
		}
		flagged = append(flagged, pair.Result.Overall)
		if pair.SubmissionA.Email == email {
			peers[pair.SubmissionB.Email] = struct{}{}
		} else {
			peers[pair.SubmissionA.Email] = struct{}{}
		}
	}

	if len(flagged) == 0 {
		return 0.0
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(flagged)))
	k := min(topK, len(flagged))

	sum := 0.0
	for _, score := range flagged[:k] {
		sum += score
	}
	score := sum / float64(k)

	if len(peers) > 1 {
		score += math.Min(maxPeerBoost, peerBoostStep*float64(len(peers)-1))
	}

	return clamp(score)
}

// TestRisk blends the average flagged similarity with the share of flagged
// questions and returns the score with its label.
func TestRisk(totalQuestions int, avgSimilarity float64, flaggedQuestions int) (float64, string) {
	if totalQuestions <= 0 {
		return 0.0, "Safe"
	}

	risk := 0.7*avgSimilarity + 0.3*(float64(flaggedQuestions)/float64(totalQuestions))

	switch {
	case risk < 0.40:
		return risk, "Safe"
	case risk < 0.60:
		return risk, "Moderate"
	case risk < 0.80:
		return risk, "High"
	default:
		return risk, "Critical"
	}
}

func clamp(score float64) float64 {
	return math.Max(0.0, math.Min(1.0, score))
}
