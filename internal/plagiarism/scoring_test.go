package plagiarism

import (
	"testing"

	"github.com/RishiKendai/codesim/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{1.0, LevelHigh},
		{0.85, LevelHigh},
		{0.8499, LevelModerate},
		{0.70, LevelModerate},
		{0.6999, LevelLow},
		{0.50, LevelLow},
		{0.4999, LevelMinimal},
		{0.0, LevelMinimal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestLevelFlaggedAndVerdict(t *testing.T) {
	assert.True(t, LevelHigh.Flagged())
	assert.True(t, LevelLow.Flagged())
	assert.False(t, LevelMinimal.Flagged())

	assert.Contains(t, LevelHigh.Verdict(), "HIGH")
	assert.Contains(t, LevelModerate.Verdict(), "MODERATE")
	assert.Contains(t, LevelLow.Verdict(), "LOW")
	assert.Contains(t, LevelMinimal.Verdict(), "PASS")
}

func TestLevelLabels(t *testing.T) {
	assert.Equal(t, Level("high"), LevelHigh)
	assert.Equal(t, Level("moderate"), LevelModerate)
	assert.Equal(t, Level("low"), LevelLow)
	assert.Equal(t, Level("minimal"), LevelMinimal)
	assert.Contains(t, LevelMinimal.Verdict(), "original")
}

func TestWeightsOverall(t *testing.T) {
	ones := Scores{LCS: 1, Structure: 1, NGram: 1, Frequency: 1, EditDistance: 1}
	assert.Equal(t, 1.0, DefaultWeights.Overall(ones))
	assert.LessOrEqual(t, DefaultWeights.Overall(ones), 1.0)

	assert.InDelta(t, 0.30, DefaultWeights.Overall(Scores{LCS: 1}), 1e-9)
	assert.InDelta(t, 0.25, DefaultWeights.Overall(Scores{Structure: 1}), 1e-9)
	assert.InDelta(t, 0.20, DefaultWeights.Overall(Scores{NGram: 1}), 1e-9)
	assert.InDelta(t, 0.15, DefaultWeights.Overall(Scores{Frequency: 1}), 1e-9)
	assert.InDelta(t, 0.10, DefaultWeights.Overall(Scores{EditDistance: 1}), 1e-9)
	assert.Zero(t, DefaultWeights.Overall(Scores{}))
}

func pairFor(emailA, emailB string, overall float64) PairSimilarity {
	return PairSimilarity{
		SubmissionA: &models.Submission{Email: emailA, AttemptID: emailA + "-attempt"},
		SubmissionB: &models.Submission{Email: emailB, AttemptID: emailB + "-attempt"},
		Result:      &Result{Overall: overall, Level: Classify(overall)},
		QID:         "1",
	}
}

func TestCandidateScore(t *testing.T) {
	assert.Zero(t, CandidateScore("a", nil))

	single := []PairSimilarity{pairFor("a", "b", 0.9)}
	assert.InDelta(t, 0.9, CandidateScore("a", single), 1e-9)
	assert.InDelta(t, 0.9, CandidateScore("b", single), 1e-9)

	pairs := []PairSimilarity{
		pairFor("a", "b", 0.9),
		pairFor("c", "a", 0.8),
		pairFor("a", "d", 0.7),
		pairFor("a", "e", 0.6),
		pairFor("a", "f", 0.3),
	}
	// top three of the flagged scores plus 0.05 for each of the three extra peers
	assert.InDelta(t, 0.95, CandidateScore("a", pairs), 1e-9)

	capped := []PairSimilarity{
		pairFor("a", "b", 1.0),
		pairFor("a", "c", 1.0),
	}
	assert.Equal(t, 1.0, CandidateScore("a", capped))
}

func TestCandidateScoreIgnoresUncomparedPairs(t *testing.T) {
	pairs := []PairSimilarity{
		{SubmissionA: &models.Submission{Email: "a"}, SubmissionB: &models.Submission{Email: "b"}},
	}
	assert.Zero(t, CandidateScore("a", pairs))
}

func TestTestRisk(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		avg       float64
		flagged   int
		wantScore float64
		wantLabel string
	}{
		{"no questions", 0, 0.9, 1, 0, "Safe"},
		{"nothing flagged", 2, 0, 0, 0, "Safe"},
		{"moderate", 4, 0.5, 1, 0.425, "Moderate"},
		{"high", 2, 0.8, 1, 0.71, "High"},
		{"critical", 4, 0.9, 4, 0.93, "Critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label := TestRisk(tt.total, tt.avg, tt.flagged)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}
