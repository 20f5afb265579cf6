package stream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/RishiKendai/codesim/internal/models"
)

// StreamMessage is a Redis stream entry with its string fields
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSubmission decodes a submission either from a JSON "payload" field or
// from individual fields named after the submission's json tags.
func ParseSubmission(msg *StreamMessage) (*models.Submission, error) {
	var submission models.Submission

	if payload, ok := msg.Fields["payload"]; ok {
		if err := json.Unmarshal([]byte(payload), &submission); err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
	} else {
		submission = models.Submission{
			AttemptID:  msg.Fields["attemptID"],
			SourceCode: msg.Fields["sourceCode"],
			Language:   msg.Fields["language"],
			Email:      msg.Fields["email"],
			DriveID:    msg.Fields["driveId"],
			Difficulty: msg.Fields["difficulty"],
		}
		if raw := msg.Fields["qId"]; raw != "" {
			qID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid qId %q: %w", raw, err)
			}
			submission.QID = qID
		}
	}

	submission.Language = strings.ToLower(strings.TrimSpace(submission.Language))
	submission.Difficulty = strings.ToLower(strings.TrimSpace(submission.Difficulty))

	switch {
	case submission.AttemptID == "":
		return nil, fmt.Errorf("attemptID is required")
	case submission.DriveID == "":
		return nil, fmt.Errorf("driveId is required")
	case submission.Email == "":
		return nil, fmt.Errorf("email is required")
	}

	return &submission, nil
}
