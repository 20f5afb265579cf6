package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RishiKendai/codesim/internal/metrics"
	"github.com/RishiKendai/codesim/internal/models"
	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SubmissionRepository reads the ingested submissions of a drive
type SubmissionRepository interface {
	plagiarism.SubmissionStore
	CountSubmissionsByDriveID(ctx context.Context, driveID string) (int64, error)
}

// ReportRepository stores and reads drive reports
type ReportRepository interface {
	plagiarism.ResultStore
	UpdateTestReportByDriveID(ctx context.Context, driveID string, report *models.TestReport) error
	GetLatestReportByDriveID(ctx context.Context, driveID string) (*models.TestReport, error)
	GetCandidateResultsByDriveID(ctx context.Context, driveID string) ([]*models.CandidateResult, error)
}

// StatusStore tracks the computation step of each drive. TryStart claims a
// drive for a new computation and must be atomic across API replicas.
type StatusStore interface {
	plagiarism.StatusUpdater
	GetStatus(ctx context.Context, driveID string) (models.Step, error)
	TryStart(ctx context.Context, driveID string) (bool, error)
}

// ResultCache memoizes pair comparisons
type ResultCache interface {
	GetOrCompute(ctx context.Context, language, a, b string, computeFn func() (*plagiarism.Result, error)) (*plagiarism.Result, bool, error)
}

// Dependencies are the collaborators of the HTTP handlers. Cache may be nil.
type Dependencies struct {
	Submissions SubmissionRepository
	Reports     ReportRepository
	Status      StatusStore
	Cache       ResultCache
	WorkerPool  *plagiarism.WorkerPool
	Comparator  *plagiarism.Comparator
}

// CompareResponse is returned by the pair comparison endpoint
type CompareResponse struct {
	Result  *plagiarism.Result `json:"result"`
	Verdict string             `json:"verdict"`
	Cached  bool               `json:"cached"`
}

// ReportResponse is returned by the drive report endpoint
type ReportResponse struct {
	DriveID    string                    `json:"driveId"`
	Step       models.Step               `json:"step"`
	Report     *models.TestReport        `json:"report,omitempty"`
	Candidates []*models.CandidateResult `json:"candidates"`
}

type Handler struct {
	deps           Dependencies
	batchSize      int
	computeSem     chan struct{}
	computeTimeout time.Duration
	background     context.Context
}

func NewHandler(ctx context.Context, deps Dependencies, maxConcurrent, batchSize int, computeTimeout time.Duration) *Handler {
	return &Handler{
		deps:           deps,
		batchSize:      batchSize,
		computeSem:     make(chan struct{}, max(1, maxConcurrent)),
		computeTimeout: computeTimeout,
		background:     ctx,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Compare scores two source texts synchronously
func (h *Handler) Compare(c *gin.Context) {
	if limit := compareBodyLimit(h.deps.Comparator.MaxInputBytes()); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.RejectedInputs.WithLabelValues("input_too_large").Inc()
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Code:  "INPUT_TOO_LARGE",
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	comparator := h.deps.Comparator.ForLanguage(strings.ToLower(strings.TrimSpace(req.Language)))

	// reject oversized inputs before touching the cache
	if err := comparator.CheckInputs(req.SourceA, req.SourceB); err != nil {
		h.rejectInput(c, err)
		return
	}

	ctx := c.Request.Context()
	compute := func() (*plagiarism.Result, error) {
		return comparator.Compare(ctx, req.SourceA, req.SourceB)
	}

	var (
		result *plagiarism.Result
		cached bool
		err    error
	)
	start := time.Now()
	if h.deps.Cache != nil {
		result, cached, err = h.deps.Cache.GetOrCompute(ctx, req.Language, req.SourceA, req.SourceB, compute)
	} else {
		result, err = compute()
	}

	if plagiarism.IsLimitError(err) {
		h.rejectInput(c, err)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Comparison failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Comparison failed",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	if !cached {
		metrics.ComparisonDuration.Observe(time.Since(start).Seconds())
		metrics.ComparisonCount.WithLabelValues(string(result.Level)).Inc()
	}

	c.JSON(http.StatusOK, CompareResponse{
		Result:  result,
		Verdict: result.Level.Verdict(),
		Cached:  cached,
	})
}

// compareBodyLimit bounds a compare request body: two inputs at up to six
// bytes per source byte once JSON-escaped, plus 64 KiB for the rest.
// 0 means no limit.
func compareBodyLimit(maxInputBytes int) int64 {
	if maxInputBytes <= 0 {
		return 0
	}
	return 2*6*int64(maxInputBytes) + 64<<10
}

func (h *Handler) rejectInput(c *gin.Context, err error) {
	reason := plagiarism.RejectReason(err)
	metrics.RejectedInputs.WithLabelValues(reason).Inc()

	code := "INPUT_TOO_LARGE"
	if reason == "too_many_tokens" {
		code = "TOO_MANY_TOKENS"
	}
	c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

// Compute starts a drive-wide computation and returns immediately
func (h *Handler) Compute(c *gin.Context) {
	var req models.ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	driveID := strings.TrimSpace(req.DriveID)
	if driveID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "driveId is required",
			Code:  "INVALID_DRIVE_ID",
		})
		return
	}

	ctx := c.Request.Context()
	count, err := h.deps.Submissions.CountSubmissionsByDriveID(ctx, driveID)
	if err != nil {
		log.Error().Err(err).Str("driveId", driveID).Msg("Failed to count submissions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to check submissions",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No submissions found for driveId",
			Code:  "DRIVE_ID_NOT_FOUND",
		})
		return
	}

	claimed, err := h.deps.Status.TryStart(ctx, driveID)
	if err != nil {
		log.Error().Err(err).Str("driveId", driveID).Msg("Failed to claim drive")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to check computation status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if !claimed {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "Computation already in progress",
			Code:  "COMPUTATION_IN_PROGRESS",
		})
		return
	}

	select {
	case h.computeSem <- struct{}{}:
	case <-ctx.Done():
		h.releaseClaim(ctx, driveID)
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	c.JSON(http.StatusAccepted, models.ComputeResponse{
		Step:    models.StepInitiated,
		DriveID: driveID,
	})

	go h.runComputation(driveID)
}

func (h *Handler) runComputation(driveID string) {
	defer func() { <-h.computeSem }()

	ctx, cancel := context.WithTimeout(h.background, h.computeTimeout)
	defer cancel()

	pending := &models.TestReport{
		DriveID:          driveID,
		Status:           "pending",
		FlaggedQuestions: []string{},
	}
	if err := h.deps.Reports.InsertTestReport(ctx, pending); err != nil {
		log.Error().Err(err).Str("driveId", driveID).Msg("Failed to create pending report")
	}

	err := plagiarism.ComputePlagiarism(
		ctx,
		driveID,
		h.deps.Submissions,
		h.deps.Reports,
		h.deps.Status,
		h.deps.WorkerPool,
		h.deps.Comparator,
		h.batchSize,
	)
	if err != nil {
		log.Error().Err(err).Str("driveId", driveID).Msg("Computation failed")
		metrics.DriveComputationCount.WithLabelValues("failed").Inc()
		h.markFailed(driveID)
		return
	}

	metrics.DriveComputationCount.WithLabelValues("completed").Inc()
}

// releaseClaim frees a drive claimed by a request that never started its computation
func (h *Handler) releaseClaim(ctx context.Context, driveID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := h.deps.Status.UpdateStatus(ctx, driveID, models.StepIdle); err != nil {
		log.Warn().Err(err).Str("driveId", driveID).Msg("Failed to release drive claim")
	}
}

// markFailed uses a fresh context so a timed-out computation is still recorded
func (h *Handler) markFailed(driveID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.background), 10*time.Second)
	defer cancel()

	if err := h.deps.Status.UpdateStatus(ctx, driveID, models.StepFailed); err != nil {
		log.Warn().Err(err).Str("driveId", driveID).Msg("Failed to update failed status")
	}

	err := h.deps.Reports.UpdateTestReportByDriveID(ctx, driveID, &models.TestReport{
		DriveID:          driveID,
		Status:           "failed",
		FlaggedQuestions: []string{},
	})
	if err != nil {
		log.Error().Err(err).Str("driveId", driveID).Msg("Failed to update failed report")
	}
}

// GetReport returns the latest report of a drive with its candidate results
func (h *Handler) GetReport(c *gin.Context) {
	driveID := strings.TrimSpace(c.Param("driveId"))
	ctx := c.Request.Context()

	step, err := h.deps.Status.GetStatus(ctx, driveID)
	if err != nil {
		log.Warn().Err(err).Str("driveId", driveID).Msg("Failed to read status")
		step = models.StepIdle
	}

	report, err := h.deps.Reports.GetLatestReportByDriveID(ctx, driveID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if report == nil && step == models.StepIdle {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No report found for driveId",
			Code:  "REPORT_NOT_FOUND",
		})
		return
	}

	candidates, err := h.deps.Reports.GetCandidateResultsByDriveID(ctx, driveID)
	if err != nil {
		_ = c.Error(errors.Join(errors.New("failed to load candidate results"), err))
		return
	}
	if candidates == nil {
		candidates = []*models.CandidateResult{}
	}

	c.JSON(http.StatusOK, ReportResponse{
		DriveID:    driveID,
		Step:       step,
		Report:     report,
		Candidates: candidates,
	})
}
