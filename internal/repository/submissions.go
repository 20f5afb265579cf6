package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/codesim/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const submissionsCollection = "submissions"

type SubmissionsRepository struct {
	mongoRepo *MongoRepository
}

func NewSubmissionsRepository(mongoRepo *MongoRepository) *SubmissionsRepository {
	return &SubmissionsRepository{
		mongoRepo: mongoRepo,
	}
}

// UpsertSubmission stores a submission keyed by attempt and question, so a
// redelivered stream message overwrites instead of duplicating
func (r *SubmissionsRepository) UpsertSubmission(ctx context.Context, submission *models.Submission) error {
	submission.CreatedAt = time.Now()
	filter := bson.M{"attemptID": submission.AttemptID, "qId": submission.QID}

	err := r.mongoRepo.ReplaceOne(ctx, submissionsCollection, filter, submission, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert submission: %w", err)
	}

	return nil
}

func (r *SubmissionsRepository) GetSubmissionsByDriveID(ctx context.Context, driveID string) ([]*models.Submission, error) {
	filter := bson.M{"driveId": driveID}

	cursor, err := r.mongoRepo.FindMany(ctx, submissionsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var submissions []*models.Submission
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, fmt.Errorf("failed to decode submissions: %w", err)
	}

	return submissions, nil
}

func (r *SubmissionsRepository) CountSubmissionsByDriveID(ctx context.Context, driveID string) (int64, error) {
	filter := bson.M{"driveId": driveID}

	count, err := r.mongoRepo.CountDocuments(ctx, submissionsCollection, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	return count, nil
}
