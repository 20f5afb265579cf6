package preprocess

import (
	"context"
	"fmt"

	"github.com/RishiKendai/codesim/internal/models"
	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/rs/zerolog/log"
)

// SubmissionWriter persists a preprocessed submission
type SubmissionWriter interface {
	UpsertSubmission(ctx context.Context, submission *models.Submission) error
}

type Service struct {
	submissions SubmissionWriter
	comparator  *plagiarism.Comparator
}

// NewService uses the comparator's byte and token limits, so a stored
// submission is always one the comparator accepts
func NewService(submissions SubmissionWriter, comparator *plagiarism.Comparator) *Service {
	return &Service{
		submissions: submissions,
		comparator:  comparator,
	}
}

// ProcessSubmission checks the submission against the comparison limits,
// fingerprints its token n-grams and stores it. Limit violations wrap
// plagiarism.ErrInputTooLarge or plagiarism.ErrTooManyTokens.
func (s *Service) ProcessSubmission(ctx context.Context, submission *models.Submission) error {
	tokens, err := s.comparator.ForLanguage(submission.Language).Tokenize(submission.SourceCode)
	if err != nil {
		return fmt.Errorf("submission %s: %w", submission.AttemptID, err)
	}

	submission.Fingerprints = plagiarism.Fingerprints(tokens)
	submission.TokenCount = len(tokens)

	if err := s.submissions.UpsertSubmission(ctx, submission); err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}

	log.Debug().
		Str("attemptId", submission.AttemptID).
		Str("driveId", submission.DriveID).
		Int("tokens", submission.TokenCount).
		Int("fingerprints", len(submission.Fingerprints)).
		Msg("Submission preprocessed")

	return nil
}
