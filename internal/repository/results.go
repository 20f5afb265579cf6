package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/codesim/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	resultsCollection = "results"
	reportsCollection = "plagiarism_reports"
	pairsCollection   = "pair_reports"
)

type ResultsRepository struct {
	mongoRepo *MongoRepository
}

func NewResultsRepository(mongoRepo *MongoRepository) *ResultsRepository {
	return &ResultsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *ResultsRepository) InsertCandidateResult(ctx context.Context, result *models.CandidateResult) error {
	result.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, resultsCollection, result)
	if err != nil {
		return fmt.Errorf("failed to insert candidate result: %w", err)
	}

	return nil
}

func (r *ResultsRepository) InsertPairReports(ctx context.Context, reports []*models.PairReport) error {
	now := time.Now()
	docs := make([]interface{}, 0, len(reports))
	for _, report := range reports {
		report.CreatedAt = now
		docs = append(docs, report)
	}

	if err := r.mongoRepo.InsertMany(ctx, pairsCollection, docs); err != nil {
		return fmt.Errorf("failed to insert pair reports: %w", err)
	}

	return nil
}

func (r *ResultsRepository) InsertTestReport(ctx context.Context, report *models.TestReport) error {
	report.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, reportsCollection, report)
	if err != nil {
		return fmt.Errorf("failed to insert test report: %w", err)
	}

	return nil
}

// UpdateTestReportByDriveID overwrites the latest report of a drive
func (r *ResultsRepository) UpdateTestReportByDriveID(ctx context.Context, driveID string, report *models.TestReport) error {
	report.CreatedAt = time.Now()
	filter := bson.M{"driveId": driveID}
	update := bson.M{"$set": report}

	if _, err := r.mongoRepo.UpdateOne(ctx, reportsCollection, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to update test report: %w", err)
	}

	return nil
}

func (r *ResultsRepository) GetLatestReportByDriveID(ctx context.Context, driveID string) (*models.TestReport, error) {
	filter := bson.M{"driveId": driveID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var report models.TestReport
	err := r.mongoRepo.FindOne(ctx, reportsCollection, filter, opts).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}

func (r *ResultsRepository) GetCandidateResultsByDriveID(ctx context.Context, driveID string) ([]*models.CandidateResult, error) {
	filter := bson.M{"driveId": driveID}
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}})

	cursor, err := r.mongoRepo.FindMany(ctx, resultsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidate results: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*models.CandidateResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode candidate results: %w", err)
	}

	return results, nil
}
