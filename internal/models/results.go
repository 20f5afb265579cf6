package models

import (
	"time"
)

type Step string

const (
	StepIdle         Step = "idle"
	StepInitiated    Step = "initiated"
	StepStarted      Step = "started"
	StepFiltering    Step = "filtering"
	StepDeepAnalysis Step = "deep_analysis"
	StepCompleted    Step = "completed"
	StepFailed       Step = "failed"
)

// InProgress reports whether a computation holding this step is still running.
// Idle, completed and failed drives may be claimed for a new run.
func (s Step) InProgress() bool {
	switch s {
	case StepInitiated, StepStarted, StepFiltering, StepDeepAnalysis:
		return true
	}
	return false
}

// CandidateResult represents a candidate's plagiarism result within a drive
type CandidateResult struct {
	Email            string              `bson:"email" json:"email"`
	AttemptID        string              `bson:"attemptID" json:"attemptID"`
	DriveID          string              `bson:"driveId" json:"driveId"`
	Score            float64             `bson:"score" json:"score"`
	Risk             string              `bson:"risk" json:"risk"` // high, moderate, low, minimal
	FlaggedQuestions []string            `bson:"flagged_qns" json:"flagged_qns"`
	PlagiarismPeers  map[string][]string `bson:"plagiarism_peers" json:"plagiarism_peers"` // qId -> []attemptId
	Status           string              `bson:"status" json:"status"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
}

// PairReport stores one flagged comparison
type PairReport struct {
	DriveID             string    `bson:"driveId" json:"driveId"`
	QID                 string    `bson:"qId" json:"qId"`
	AttemptA            string    `bson:"attemptA" json:"attemptA"`
	AttemptB            string    `bson:"attemptB" json:"attemptB"`
	EmailA              string    `bson:"emailA" json:"emailA"`
	EmailB              string    `bson:"emailB" json:"emailB"`
	TokenSimilarity     float64   `bson:"tokenSimilarity" json:"tokenSimilarity"`
	StructureSimilarity float64   `bson:"structureSimilarity" json:"structureSimilarity"`
	NGramSimilarity     float64   `bson:"ngramSimilarity" json:"ngramSimilarity"`
	FrequencySimilarity float64   `bson:"frequencySimilarity" json:"frequencySimilarity"`
	EditSimilarity      float64   `bson:"editSimilarity" json:"editSimilarity"`
	Overall             float64   `bson:"overall" json:"overall"`
	Level               string    `bson:"level" json:"level"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
}

// TestReport represents an overall drive plagiarism report
type TestReport struct {
	DriveID           string    `bson:"driveId" json:"driveId"`
	Risk              string    `bson:"risk" json:"risk"`     // Safe, Moderate, High, Critical
	Status            string    `bson:"status" json:"status"` // pending, completed, failed
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	FlaggedQuestions  []string  `bson:"flagged_qns" json:"flagged_qns"`
	FlaggedCandidates int       `bson:"flagged_candidates" json:"flagged_candidates"`
	TotalAnalyzed     int       `bson:"total_analyzed" json:"total_analyzed"`
}

// ComputeRequest represents a request to compute plagiarism for a drive
type ComputeRequest struct {
	DriveID string `json:"driveId" binding:"required"`
}

// ComputeResponse represents the response from compute endpoint
type ComputeResponse struct {
	Step    Step   `json:"step"`
	DriveID string `json:"driveId"`
}
