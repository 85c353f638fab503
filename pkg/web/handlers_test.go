package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storeops/stocksync/pkg/mocks"
	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/persistence"
	"github.com/storeops/stocksync/pkg/reconcile"
)

// stubRunner records triggered runs.
type stubRunner struct {
	mu   sync.Mutex
	opts []reconcile.RunOptions
	done chan struct{}
}

func newStubRunner() *stubRunner {
	return &stubRunner{done: make(chan struct{}, 8)}
}

func (r *stubRunner) Run(_ context.Context, opts reconcile.RunOptions) (*reconcile.RunResult, error) {
	r.mu.Lock()
	r.opts = append(r.opts, opts)
	r.mu.Unlock()

	r.done <- struct{}{}

	return &reconcile.RunResult{RunID: "run-1"}, nil
}

func (r *stubRunner) triggered() []reconcile.RunOptions {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]reconcile.RunOptions(nil), r.opts...)
}

func setupTestApp(store *mocks.MockPersistence, runner Runner) *fiber.App {
	handlers := NewAPIHandlers(slog.Default(), store, runner,
		validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	runs := app.Group("/runs")
	runs.Get("/", handlers.GetRuns)
	runs.Post("/", handlers.TriggerRun)
	runs.Get("/:id", handlers.GetRun)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func TestGetRuns(t *testing.T) {
	store := &mocks.MockPersistence{}
	app := setupTestApp(store, newStubRunner())

	summaries := []*models.RunSummary{
		{ID: "run-1", WorkflowName: models.WorkflowName, Status: models.RunStatusSuccess},
		{ID: "run-2", WorkflowName: models.WorkflowName, Status: models.RunStatusAborted},
	}
	store.On("RunSummaries", mock.Anything, 50).Return(summaries, nil)

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Runs  []models.RunSummary `json:"runs"`
		Count int                 `json:"count"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "run-1", body.Runs[0].ID)
}

func TestGetRuns_InvalidLimit(t *testing.T) {
	store := &mocks.MockPersistence{}
	app := setupTestApp(store, newStubRunner())

	req := httptest.NewRequest(http.MethodGet, "/runs?limit=abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRun_NotFound(t *testing.T) {
	store := &mocks.MockPersistence{}
	app := setupTestApp(store, newStubRunner())

	store.On("RunSummaryByID", mock.Anything, "missing").
		Return(nil, persistence.ErrRunSummaryNotFound)

	req := httptest.NewRequest(http.MethodGet, "/runs/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "run_not_found")
}

func TestTriggerRun(t *testing.T) {
	store := &mocks.MockPersistence{}
	runner := newStubRunner()
	app := setupTestApp(store, runner)

	payload := strings.NewReader(`{"dry_run": false, "force": true}`)
	req := httptest.NewRequest(http.MethodPost, "/runs", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not triggered")
	}

	triggered := runner.triggered()
	require.Len(t, triggered, 1)
	assert.False(t, triggered[0].DryRun)
	assert.True(t, triggered[0].Force)
}

func TestTriggerRun_DefaultsToDryRun(t *testing.T) {
	store := &mocks.MockPersistence{}
	runner := newStubRunner()
	app := setupTestApp(store, runner)

	req := httptest.NewRequest(http.MethodPost, "/runs", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not triggered")
	}

	triggered := runner.triggered()
	require.Len(t, triggered, 1)
	assert.True(t, triggered[0].DryRun)
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	store := &mocks.MockPersistence{}
	app := setupTestApp(store, newStubRunner())

	store.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealthCheck_Healthy(t *testing.T) {
	store := &mocks.MockPersistence{}
	app := setupTestApp(store, newStubRunner())

	store.On("HealthCheck", mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}
