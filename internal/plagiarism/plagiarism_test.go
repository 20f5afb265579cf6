package plagiarism

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/RishiKendai/codesim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu          sync.Mutex
	submissions []*models.Submission
	candidates  []*models.CandidateResult
	pairs       []*models.PairReport
	reports     []*models.TestReport
	insertErr   error
}

func (m *memStore) GetSubmissionsByDriveID(_ context.Context, driveID string) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, s := range m.submissions {
		if s.DriveID == driveID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) InsertCandidateResult(_ context.Context, r *models.CandidateResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.candidates = append(m.candidates, r)
	return nil
}

func (m *memStore) InsertPairReports(_ context.Context, r []*models.PairReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs = append(m.pairs, r...)
	return nil
}

func (m *memStore) InsertTestReport(_ context.Context, r *models.TestReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *memStore) candidate(email string) *models.CandidateResult {
	for _, c := range m.candidates {
		if c.Email == email {
			return c
		}
	}
	return nil
}

type recordingStatus struct {
	mu    sync.Mutex
	steps []models.Step
}

func (r *recordingStatus) UpdateStatus(_ context.Context, _ string, step models.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
	return nil
}

func newTestPool(t *testing.T) *WorkerPool {
	t.Helper()
	pool := NewWorkerPoolWithSize(context.Background(), 2)
	t.Cleanup(pool.Close)
	return pool
}

func TestComputePlagiarism(t *testing.T) {
	store := &memStore{submissions: []*models.Submission{
		submission("a1", "a@x", sampleA),
		submission("b1", "b@x", sampleA),
		submission("c1", "c@x", `puts("hello"); puts("world");`),
	}}
	status := &recordingStatus{}

	err := ComputePlagiarism(context.Background(), "drive", store, store, status, newTestPool(t), NewComparator(), 10)
	require.NoError(t, err)

	require.Len(t, store.pairs, 1)
	pair := store.pairs[0]
	assert.Equal(t, "1", pair.QID)
	assert.Equal(t, string(LevelHigh), pair.Level)
	assert.InDelta(t, 1.0, pair.Overall, 1e-9)

	require.Len(t, store.candidates, 3)
	a := store.candidate("a@x")
	require.NotNil(t, a)
	assert.Equal(t, string(LevelHigh), a.Risk)
	assert.Equal(t, []string{"1"}, a.FlaggedQuestions)
	assert.Equal(t, map[string][]string{"1": {"b1"}}, a.PlagiarismPeers)

	c := store.candidate("c@x")
	require.NotNil(t, c)
	assert.Equal(t, string(LevelMinimal), c.Risk)
	assert.Zero(t, c.Score)
	assert.Empty(t, c.FlaggedQuestions)

	require.Len(t, store.reports, 1)
	report := store.reports[0]
	assert.Equal(t, "completed", report.Status)
	assert.Equal(t, "Critical", report.Risk)
	assert.Equal(t, []string{"1"}, report.FlaggedQuestions)
	assert.Equal(t, 2, report.FlaggedCandidates)
	assert.Equal(t, 3, report.TotalAnalyzed)

	assert.Equal(t, models.StepStarted, status.steps[0])
	assert.Contains(t, status.steps, models.StepFiltering)
	assert.Contains(t, status.steps, models.StepDeepAnalysis)
	assert.Equal(t, models.StepCompleted, status.steps[len(status.steps)-1])
}

func TestComputePlagiarismSingleCandidate(t *testing.T) {
	store := &memStore{submissions: []*models.Submission{
		submission("a1", "a@x", sampleA),
		{AttemptID: "a2", Email: "a@x", DriveID: "drive", QID: 2, Language: "c", SourceCode: sampleC},
	}}
	status := &recordingStatus{}

	err := ComputePlagiarism(context.Background(), "drive", store, store, status, newTestPool(t), NewComparator(), 10)
	require.NoError(t, err)

	assert.Len(t, store.candidates, 1)
	assert.Empty(t, store.pairs)
	require.Len(t, store.reports, 1)
	assert.Equal(t, "Safe", store.reports[0].Risk)
	assert.Equal(t, 2, store.reports[0].TotalAnalyzed)
	assert.Equal(t, models.StepCompleted, status.steps[len(status.steps)-1])
}

func TestComputePlagiarismSeparatesLanguages(t *testing.T) {
	a := submission("a1", "a@x", sampleA)
	b := submission("b1", "b@x", sampleA)
	b.Language = "java"
	store := &memStore{submissions: []*models.Submission{a, b}}

	err := ComputePlagiarism(context.Background(), "drive", store, store, nil, newTestPool(t), NewComparator(), 10)
	require.NoError(t, err)

	assert.Empty(t, store.pairs)
	require.Len(t, store.reports, 1)
	assert.Equal(t, 0, store.reports[0].FlaggedCandidates)
}

func TestComputePlagiarismErrors(t *testing.T) {
	t.Run("no submissions", func(t *testing.T) {
		err := ComputePlagiarism(context.Background(), "missing", &memStore{}, &memStore{}, nil, newTestPool(t), NewComparator(), 10)
		assert.Error(t, err)
	})

	t.Run("store failure", func(t *testing.T) {
		cause := errors.New("write failed")
		store := &memStore{
			submissions: []*models.Submission{submission("a1", "a@x", sampleA)},
			insertErr:   cause,
		}
		err := ComputePlagiarism(context.Background(), "drive", store, store, nil, newTestPool(t), NewComparator(), 10)
		assert.ErrorIs(t, err, cause)
	})
}

func TestComputationJobReportsFailures(t *testing.T) {
	results := make(chan PairSimilarity, 1)
	job := &ComputationJob{
		Pair: Pair{
			SubmissionA: submission("a1", "a@x", sampleA),
			SubmissionB: submission("b1", "b@x", sampleA),
		},
		QID:        "1",
		Comparator: NewComparator(WithMaxInputBytes(10)),
		ResultChan: results,
	}

	err := job.Execute(context.Background())
	assert.ErrorIs(t, err, ErrInputTooLarge)

	ps := <-results
	assert.Nil(t, ps.Result)
	assert.Equal(t, "1", ps.QID)
}

func TestProcessPairsInBatches(t *testing.T) {
	subs := []*models.Submission{
		submission("a1", "a@x", sampleA),
		submission("b1", "b@x", sampleB),
		submission("c1", "c@x", sampleC),
	}
	pairs := []Pair{
		{SubmissionA: subs[0], SubmissionB: subs[1]},
		{SubmissionA: subs[0], SubmissionB: subs[2]},
		{SubmissionA: subs[1], SubmissionB: subs[2]},
	}

	results := processPairsInBatches(context.Background(), pairs, "medium", "1", newTestPool(t), NewComparator(), 1)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NotNil(t, r.Result)
		assert.Equal(t, "medium", r.Difficulty)
	}
}
