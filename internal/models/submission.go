package models

import "time"

// Submission is a candidate's source code for one question. It arrives on
// the Redis stream and is stored once its fingerprints are computed.
type Submission struct {
	AttemptID    string    `bson:"attemptID" json:"attemptID"`
	SourceCode   string    `bson:"sourceCode" json:"sourceCode"`
	Language     string    `bson:"language" json:"language"`
	Email        string    `bson:"email" json:"email"`
	DriveID      string    `bson:"driveId" json:"driveId"`
	QID          int64     `bson:"qId" json:"qId"`
	Difficulty   string    `bson:"difficulty" json:"difficulty"`
	Fingerprints []string  `bson:"fingerprints" json:"fingerprints,omitempty"`
	TokenCount   int       `bson:"tokenCount" json:"tokenCount"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
