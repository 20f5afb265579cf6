package plagiarism

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/RishiKendai/codesim/internal/metrics"
	"github.com/RishiKendai/codesim/internal/models"
	"github.com/rs/zerolog/log"
)

// SubmissionStore loads the submissions of a drive
type SubmissionStore interface {
	GetSubmissionsByDriveID(ctx context.Context, driveID string) ([]*models.Submission, error)
}

// ResultStore persists the outcome of a drive computation
type ResultStore interface {
	InsertCandidateResult(ctx context.Context, result *models.CandidateResult) error
	InsertPairReports(ctx context.Context, reports []*models.PairReport) error
	InsertTestReport(ctx context.Context, report *models.TestReport) error
}

// ComputationJob compares one pair on a worker
type ComputationJob struct {
	Pair       Pair
	Difficulty string
	QID        string
	Comparator *Comparator
	ResultChan chan<- PairSimilarity
}

// Execute always sends exactly one PairSimilarity; Result is nil when the
// pair could not be compared.
func (j *ComputationJob) Execute(ctx context.Context) error {
	pairSimilarity := PairSimilarity{
		SubmissionA: j.Pair.SubmissionA,
		SubmissionB: j.Pair.SubmissionB,
		QID:         j.QID,
		Difficulty:  j.Difficulty,
	}

	start := time.Now()
	result, err := j.Comparator.compareWithLanguage(ctx, j.Pair.SubmissionA.SourceCode, j.Pair.SubmissionB.SourceCode, j.Pair.SubmissionA.Language)
	if err == nil {
		metrics.ComparisonDuration.Observe(time.Since(start).Seconds())
		metrics.ComparisonCount.WithLabelValues(string(result.Level)).Inc()
		pairSimilarity.Result = result
	}

	j.ResultChan <- pairSimilarity

	if err != nil {
		return fmt.Errorf("compare %s/%s: %w", j.Pair.SubmissionA.AttemptID, j.Pair.SubmissionB.AttemptID, err)
	}
	return nil
}

// compareWithLanguage runs Compare with the keyword set of language
func (c *Comparator) compareWithLanguage(ctx context.Context, a, b, language string) (*Result, error) {
	return c.ForLanguage(language).Compare(ctx, a, b)
}

// ComputePlagiarism compares the submissions of a drive question by question
// and stores candidate results, flagged pair reports and the drive report.
func ComputePlagiarism(
	ctx context.Context,
	driveID string,
	submissionStore SubmissionStore,
	resultStore ResultStore,
	status StatusUpdater,
	workerPool *WorkerPool,
	comparator *Comparator,
	batchSize int,
) error {
	updateStatus(ctx, status, driveID, models.StepStarted)

	submissions, err := submissionStore.GetSubmissionsByDriveID(ctx, driveID)
	if err != nil {
		log.Error().Err(err).Str("driveId", driveID).Msg("Failed to load submissions")
		return fmt.Errorf("failed to load submissions: %w", err)
	}

	if len(submissions) == 0 {
		return fmt.Errorf("no submissions found for driveId: %s", driveID)
	}

	candidates := uniqueCandidates(submissions)
	if len(candidates) == 1 {
		log.Debug().Str("driveId", driveID).Msg("Single candidate, nothing to compare")
		if err := writeReport(ctx, resultStore, driveID, submissions, nil); err != nil {
			return err
		}
		updateStatus(ctx, status, driveID, models.StepCompleted)
		return nil
	}

	buckets := groupByQuestionAndLanguage(submissions)
	flaggedPairs := make([]PairSimilarity, 0)

	for qID, langBuckets := range buckets {
		for language, bucket := range langBuckets {
			if len(bucket) < 2 {
				continue
			}

			updateStatus(ctx, status, driveID, models.StepFiltering)

			gii := BuildGII(bucket)
			if len(gii) == 0 {
				log.Info().
					Str("qId", qID).
					Str("language", language).
					Msg("No shared fingerprints in bucket")
				continue
			}

			difficulty := bucket[0].Difficulty
			worthyPairs := GetWorthyPairs(gii, bucket, difficulty)
			if len(worthyPairs) == 0 {
				log.Info().
					Str("qId", qID).
					Str("language", language).
					Msg("No worthy pairs found after threshold check")
				continue
			}

			updateStatus(ctx, status, driveID, models.StepDeepAnalysis)

			pairSimilarities := processPairsInBatches(ctx, worthyPairs, difficulty, qID, workerPool, comparator, batchSize)
			for _, ps := range pairSimilarities {
				if ps.Result != nil && ps.Result.Level.Flagged() {
					flaggedPairs = append(flaggedPairs, ps)
				}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("computation interrupted: %w", err)
	}

	if err := writeReport(ctx, resultStore, driveID, submissions, flaggedPairs); err != nil {
		return err
	}

	updateStatus(ctx, status, driveID, models.StepCompleted)
	return nil
}

// processPairsInBatches submits at most batchSize jobs at a time and waits
// for each batch before starting the next.
func processPairsInBatches(
	ctx context.Context,
	pairs []Pair,
	difficulty string,
	qID string,
	workerPool *WorkerPool,
	comparator *Comparator,
	batchSize int,
) []PairSimilarity {
	if batchSize <= 0 {
		batchSize = len(pairs)
	}

	results := make([]PairSimilarity, 0, len(pairs))

	for start := 0; start < len(pairs); start += batchSize {
		end := min(start+batchSize, len(pairs))
		batch := pairs[start:end]
		resultChan := make(chan PairSimilarity, len(batch))

		submitted := 0
		for _, pair := range batch {
			job := &ComputationJob{
				Pair:       pair,
				Difficulty: difficulty,
				QID:        qID,
				Comparator: comparator,
				ResultChan: resultChan,
			}
			if err := workerPool.Submit(job); err != nil {
				log.Error().Err(err).Msg("Failed to submit job")
				break
			}
			submitted++
		}

		for received := 0; received < submitted; received++ {
			select {
			case <-ctx.Done():
				return results
			case result := <-resultChan:
				results = append(results, result)
			}
		}

		if submitted < len(batch) {
			return results
		}
	}

	return results
}

func groupByQuestionAndLanguage(submissions []*models.Submission) map[string]map[string][]*models.Submission {
	buckets := make(map[string]map[string][]*models.Submission)

	for _, submission := range submissions {
		qID := strconv.FormatInt(submission.QID, 10)
		if buckets[qID] == nil {
			buckets[qID] = make(map[string][]*models.Submission)
		}
		buckets[qID][submission.Language] = append(buckets[qID][submission.Language], submission)
	}

	return buckets
}

func uniqueCandidates(submissions []*models.Submission) map[string]*models.Submission {
	candidates := make(map[string]*models.Submission)
	for _, submission := range submissions {
		if _, exists := candidates[submission.Email]; !exists {
			candidates[submission.Email] = submission
		}
	}
	return candidates
}

// writeReport stores one result per candidate, the flagged pairs and the
// drive report. With no flagged pairs every candidate is minimal and the
// drive is Safe.
func writeReport(
	ctx context.Context,
	resultStore ResultStore,
	driveID string,
	submissions []*models.Submission,
	flaggedPairs []PairSimilarity,
) error {
	candidatePairs := make(map[string][]PairSimilarity)
	for _, ps := range flaggedPairs {
		candidatePairs[ps.SubmissionA.Email] = append(candidatePairs[ps.SubmissionA.Email], ps)
		candidatePairs[ps.SubmissionB.Email] = append(candidatePairs[ps.SubmissionB.Email], ps)
	}

	flaggedQNs := make(map[string]bool)
	flaggedCandidates := 0

	for email, submission := range uniqueCandidates(submissions) {
		pairs := candidatePairs[email]
		score := CandidateScore(email, pairs)
		risk := Classify(score)

		peers := make(map[string][]string)
		for _, pair := range pairs {
			flaggedQNs[pair.QID] = true
			if pair.SubmissionA.Email == email {
				peers[pair.QID] = append(peers[pair.QID], pair.SubmissionB.AttemptID)
			} else {
				peers[pair.QID] = append(peers[pair.QID], pair.SubmissionA.AttemptID)
			}
		}

		if risk.Flagged() {
			flaggedCandidates++
		}

		result := &models.CandidateResult{
			Email:            email,
			AttemptID:        submission.AttemptID,
			DriveID:          driveID,
			Score:            score,
			Risk:             string(risk),
			FlaggedQuestions: sortedKeys(peers),
			PlagiarismPeers:  peers,
			Status:           "completed",
		}
		if err := resultStore.InsertCandidateResult(ctx, result); err != nil {
			return fmt.Errorf("failed to insert candidate result: %w", err)
		}
	}

	if len(flaggedPairs) > 0 {
		reports := make([]*models.PairReport, 0, len(flaggedPairs))
		for _, ps := range flaggedPairs {
			reports = append(reports, newPairReport(driveID, ps))
		}
		if err := resultStore.InsertPairReports(ctx, reports); err != nil {
			return fmt.Errorf("failed to insert pair reports: %w", err)
		}
	}

	avgSimilarity := 0.0
	for _, ps := range flaggedPairs {
		avgSimilarity += ps.Result.Overall
	}
	if len(flaggedPairs) > 0 {
		avgSimilarity /= float64(len(flaggedPairs))
	}

	flaggedQNList := make([]string, 0, len(flaggedQNs))
	for qID := range flaggedQNs {
		flaggedQNList = append(flaggedQNList, qID)
	}
	sort.Strings(flaggedQNList)

	totalQuestions := len(groupByQuestionAndLanguage(submissions))
	_, riskLevel := TestRisk(totalQuestions, avgSimilarity, len(flaggedQNList))

	report := &models.TestReport{
		DriveID:           driveID,
		Risk:              riskLevel,
		Status:            "completed",
		FlaggedQuestions:  flaggedQNList,
		FlaggedCandidates: flaggedCandidates,
		TotalAnalyzed:     len(submissions),
	}
	if err := resultStore.InsertTestReport(ctx, report); err != nil {
		return fmt.Errorf("failed to insert test report: %w", err)
	}

	log.Info().
		Str("driveId", driveID).
		Int("submissions", len(submissions)).
		Int("flaggedPairs", len(flaggedPairs)).
		Int("flaggedCandidates", flaggedCandidates).
		Str("testRisk", riskLevel).
		Msg("Computation completed successfully")

	return nil
}

func newPairReport(driveID string, ps PairSimilarity) *models.PairReport {
	return &models.PairReport{
		DriveID:             driveID,
		QID:                 ps.QID,
		AttemptA:            ps.SubmissionA.AttemptID,
		AttemptB:            ps.SubmissionB.AttemptID,
		EmailA:              ps.SubmissionA.Email,
		EmailB:              ps.SubmissionB.Email,
		TokenSimilarity:     ps.Result.TokenSimilarity,
		StructureSimilarity: ps.Result.StructureSimilarity,
		NGramSimilarity:     ps.Result.NGramSimilarity,
		FrequencySimilarity: ps.Result.FrequencySimilarity,
		EditSimilarity:      ps.Result.EditSimilarity,
		Overall:             ps.Result.Overall,
		Level:               string(ps.Result.Level),
	}
}

func updateStatus(ctx context.Context, status StatusUpdater, driveID string, step models.Step) {
	if status == nil {
		return
	}
	if err := status.UpdateStatus(ctx, driveID, step); err != nil {
		log.Warn().Err(err).Str("driveId", driveID).Str("step", string(step)).Msg("Failed to update status")
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
