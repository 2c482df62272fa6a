package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/payments-engine/internal/audit"
	"github.com/ruralpay/payments-engine/internal/engine"
	"github.com/ruralpay/payments-engine/internal/ingest"
	"github.com/ruralpay/payments-engine/internal/middleware"
	"github.com/ruralpay/payments-engine/internal/replay"
	"github.com/ruralpay/payments-engine/internal/report"
	"github.com/sirupsen/logrus"
)

// InputError marks a run that failed because its CSV could not be read.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return "invalid input: " + e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// RunService replays uploaded CSV files through a fresh engine per run.
// cache and store are optional.
type RunService struct {
	log            logrus.FieldLogger
	cache          RunCache
	store          RunStore
	maxUploadBytes int64
	newID          func() string
	now            func() time.Time
}

func NewRunService(log logrus.FieldLogger, cache RunCache, store RunStore, maxUploadBytes int64) *RunService {
	return &RunService{
		log:            log,
		cache:          cache,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		newID:          uuid.NewString,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Replay processes every record of r and saves the result.
func (s *RunService) Replay(ctx context.Context, r io.Reader) (*RunResult, error) {
	runID := s.newID()
	log := s.log.WithField("run_id", runID)
	if subject, ok := middleware.Subject(ctx); ok {
		log = log.WithField("submitted_by", subject)
	}
	recorder := newRunRecorder(audit.NewAuditLogger(log, runID))

	reader, err := ingest.NewReader(r)
	if err != nil {
		return nil, &InputError{Err: err}
	}

	eng := engine.New(engine.WithReporter(recorder))
	summary, err := replay.Run(reader, eng, recorder)
	if err != nil {
		return nil, &InputError{Err: err}
	}

	result := &RunResult{
		RunID:      runID,
		Summary:    summary,
		Accounts:   report.Rows(eng.Accounts()),
		Rejections: recorder.rejections,
		Malformed:  recorder.malformed,
		CreatedAt:  s.now(),
	}

	if s.store != nil {
		if err := s.store.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("error persisting run: %w", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, result); err != nil {
			log.WithError(err).Warn("Failed to cache run result")
		}
	}

	log.WithFields(logrus.Fields{
		"records":   summary.Records,
		"applied":   summary.Applied,
		"rejected":  summary.Rejected,
		"malformed": summary.Malformed,
		"accounts":  len(result.Accounts),
	}).Info("Run completed")
	return result, nil
}

// Find returns a run from the cache, falling back to the store.
func (s *RunService) Find(ctx context.Context, runID string) (*RunResult, error) {
	if s.cache == nil && s.store == nil {
		return nil, ErrRunsUnavailable
	}
	if s.cache != nil {
		result, err := s.cache.Get(ctx, runID)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrRunNotFound) {
			s.log.WithError(err).WithField("run_id", runID).Warn("Run cache lookup failed")
		}
	}
	if s.store != nil {
		return s.store.LoadRun(ctx, runID)
	}
	return nil, ErrRunNotFound
}

var ErrRunsUnavailable = errors.New("run storage is not configured")

// CreateRun replays an uploaded CSV file
// @Summary Replay a CSV of operations
// @Accept text/csv
// @Produce json
// @Router /runs [post]
func (s *RunService) CreateRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	// Buffer the upload so a body over the limit is refused before any
	// record is applied.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), nil)
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read request body", nil)
		return
	}

	result, err := s.Replay(r.Context(), bytes.NewReader(body))
	if err != nil {
		var inputErr *InputError
		if errors.As(err, &inputErr) {
			writeError(w, http.StatusBadRequest, inputErr.Error(), nil)
			return
		}
		s.log.WithError(err).Error("Run failed")
		writeError(w, http.StatusInternalServerError, "Failed to process run", nil)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// GetRun returns a previously processed run
// @Summary Get a run by id
// @Produce json
// @Param runId path string true "Run ID"
// @Router /runs/{runId} [get]
func (s *RunService) GetRun(w http.ResponseWriter, r *http.Request) {
	result, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetRunReport returns the account report of a run as CSV
// @Summary Get the CSV report of a run
// @Produce text/csv
// @Param runId path string true "Run ID"
// @Router /runs/{runId}/report.csv [get]
func (s *RunService) GetRunReport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, result.Accounts); err != nil {
		s.log.WithError(err).Error("Failed to render report")
		writeError(w, http.StatusInternalServerError, "Failed to render report", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *RunService) lookup(w http.ResponseWriter, r *http.Request) (*RunResult, bool) {
	params, err := runParamsFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return nil, false
	}

	result, err := s.Find(r.Context(), params.RunID)
	switch {
	case err == nil:
		return result, true
	case errors.Is(err, ErrRunsUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Run storage is not configured", nil)
	case errors.Is(err, ErrRunNotFound):
		writeError(w, http.StatusNotFound, "Run not found", nil)
	default:
		s.log.WithError(err).Error("Failed to load run")
		writeError(w, http.StatusInternalServerError, "Failed to load run", nil)
	}
	return nil, false
}
