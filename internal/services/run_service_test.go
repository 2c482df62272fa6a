package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ruralpay/payments-engine/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const uploadCSV = `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
deposit, 1, 1, 5.0
bogus, 1, 9, 1.0
`

var fixedTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestRunService(cache RunCache, store RunStore, limit int64) *RunService {
	logger, _ := test.NewNullLogger()
	s := NewRunService(logger, cache, store, limit)
	s.newID = func() string { return testRunID }
	s.now = func() time.Time { return fixedTime }
	return s
}

func newTestRouter(s *RunService) http.Handler {
	r := chi.NewRouter()
	r.Post("/runs", s.CreateRun)
	r.Get("/runs/{runId}", s.GetRun)
	r.Get("/runs/{runId}/report.csv", s.GetRunReport)
	return r
}

func TestRunService_Replay(t *testing.T) {
	store := new(MockRunStore)
	cache := new(MockRunCache)
	store.On("SaveRun", mock.Anything, mock.AnythingOfType("*services.RunResult")).Return(nil)
	cache.On("Put", mock.Anything, mock.AnythingOfType("*services.RunResult")).Return(nil)

	s := newTestRunService(cache, store, 1<<20)
	result, err := s.Replay(context.Background(), strings.NewReader(uploadCSV))
	require.NoError(t, err)

	assert.Equal(t, testRunID, result.RunID)
	assert.Equal(t, fixedTime, result.CreatedAt)
	assert.Equal(t, 7, result.Summary.Records)
	assert.Equal(t, 5, result.Summary.Applied)
	assert.Equal(t, 1, result.Summary.Rejected)
	assert.Equal(t, 1, result.Summary.Malformed)

	require.Len(t, result.Accounts, 2)
	assert.True(t, result.Accounts[0].Available.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, result.Accounts[1].Available.Equal(decimal.RequireFromString("2")))
	assert.False(t, result.Accounts[1].Locked)

	assert.Equal(t, []RejectionView{{Index: 5, Kind: "deposit", Reasons: []string{"DuplicateTransactionId"}}}, result.Rejections)
	require.Len(t, result.Malformed, 1)
	assert.Equal(t, 6, result.Malformed[0].Index)

	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRunService_CreateRunLogsSubmitter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewRunService(logger, nil, nil, 1<<20)

	router := chi.NewRouter()
	router.With(middleware.Auth("run-secret", logger)).Post("/runs", s.CreateRun)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ops@ruralpay"}).
		SignedString([]byte("run-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(uploadCSV))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Run completed", entry.Message)
	assert.Equal(t, "ops@ruralpay", entry.Data["submitted_by"])
}

func TestRunService_ReplayFailures(t *testing.T) {
	t.Run("missing column is an input error", func(t *testing.T) {
		s := newTestRunService(nil, nil, 1<<20)
		_, err := s.Replay(context.Background(), strings.NewReader("type,tx\ndeposit,1\n"))

		var inputErr *InputError
		assert.ErrorAs(t, err, &inputErr)
	})

	t.Run("store failure aborts the run", func(t *testing.T) {
		store := new(MockRunStore)
		cache := new(MockRunCache)
		store.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		s := newTestRunService(cache, store, 1<<20)
		_, err := s.Replay(context.Background(), strings.NewReader(uploadCSV))

		assert.ErrorContains(t, err, "connection reset")
		cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("cache failure is not fatal", func(t *testing.T) {
		cache := new(MockRunCache)
		cache.On("Put", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		s := newTestRunService(cache, nil, 1<<20)
		result, err := s.Replay(context.Background(), strings.NewReader(uploadCSV))

		assert.NoError(t, err)
		assert.NotNil(t, result)
	})
}

func TestRunService_Find(t *testing.T) {
	ctx := context.Background()
	stored := sampleResult()

	t.Run("cache hit", func(t *testing.T) {
		cache := new(MockRunCache)
		store := new(MockRunStore)
		cache.On("Get", ctx, testRunID).Return(stored, nil)

		result, err := newTestRunService(cache, store, 1).Find(ctx, testRunID)
		assert.NoError(t, err)
		assert.Same(t, stored, result)
		store.AssertNotCalled(t, "LoadRun", mock.Anything, mock.Anything)
	})

	t.Run("cache miss falls back to store", func(t *testing.T) {
		cache := new(MockRunCache)
		store := new(MockRunStore)
		cache.On("Get", ctx, testRunID).Return(nil, ErrRunNotFound)
		store.On("LoadRun", ctx, testRunID).Return(stored, nil)

		result, err := newTestRunService(cache, store, 1).Find(ctx, testRunID)
		assert.NoError(t, err)
		assert.Same(t, stored, result)
	})

	t.Run("cache only miss", func(t *testing.T) {
		cache := new(MockRunCache)
		cache.On("Get", ctx, testRunID).Return(nil, ErrRunNotFound)

		_, err := newTestRunService(cache, nil, 1).Find(ctx, testRunID)
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := newTestRunService(nil, nil, 1).Find(ctx, testRunID)
		assert.ErrorIs(t, err, ErrRunsUnavailable)
	})
}

func TestRunService_CreateRun(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		store := new(MockRunStore)
		store.On("SaveRun", mock.Anything, mock.Anything).Return(nil)
		router := newTestRouter(newTestRunService(nil, store, 1<<20))

		req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(uploadCSV))
		req.Header.Set("Content-Type", "text/csv")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var body RunResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, testRunID, body.RunID)
		assert.Equal(t, 7, body.Summary.Records)
		assert.Len(t, body.Accounts, 2)
		assert.Len(t, body.Rejections, 1)
		assert.Len(t, body.Malformed, 1)
	})

	t.Run("bad header", func(t *testing.T) {
		router := newTestRouter(newTestRunService(nil, nil, 1<<20))

		req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader("client,tx\n1,1\n"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "missing required column")
	})

	t.Run("body too large", func(t *testing.T) {
		router := newTestRouter(newTestRunService(nil, nil, 16))

		req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(uploadCSV))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(MockRunStore)
		store.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
		router := newTestRouter(newTestRunService(nil, store, 1<<20))

		req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(uploadCSV))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestRunService_GetRun(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		cache := new(MockRunCache)
		cache.On("Get", mock.Anything, testRunID).Return(sampleResult(), nil)
		router := newTestRouter(newTestRunService(cache, nil, 1))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/"+testRunID, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var body RunResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, sampleResult().Summary, body.Summary)
	})

	t.Run("not found", func(t *testing.T) {
		store := new(MockRunStore)
		store.On("LoadRun", mock.Anything, testRunID).Return(nil, ErrRunNotFound)
		router := newTestRouter(newTestRunService(nil, store, 1))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/"+testRunID, nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		router := newTestRouter(newTestRunService(nil, nil, 1))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Details, "runId")
	})

	t.Run("storage not configured", func(t *testing.T) {
		router := newTestRouter(newTestRunService(nil, nil, 1))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/"+testRunID, nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		store := new(MockRunStore)
		store.On("LoadRun", mock.Anything, testRunID).Return(nil, errors.New("timeout"))
		router := newTestRouter(newTestRunService(nil, store, 1))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/"+testRunID, nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestRunService_GetRunReport(t *testing.T) {
	cache := new(MockRunCache)
	cache.On("Get", mock.Anything, testRunID).Return(sampleResult(), nil)
	router := newTestRouter(newTestRunService(cache, nil, 1))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs/"+testRunID+"/report.csv", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Equal(t, "client,available,held,total,locked\n1,1.5,0,1.5,false\n3,-0.5,0,-0.5,true\n", rr.Body.String())
}
