// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the jobs API handlers

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/Kodiak/pkg/logging"
	"github.com/AleutianAI/Kodiak/services/jobs"
	"github.com/AleutianAI/Kodiak/services/restapi/datatypes"
)

func jobsRouter(t *testing.T) (*gin.Engine, *jobs.Manager) {
	t.Helper()
	manager := jobs.NewManager(logging.GetLogger("jobs"), jobs.ManagerConfig{Workers: 1, QueueSize: 4})
	manager.Start(context.Background())
	t.Cleanup(manager.Stop)
	manager.RegisterExecutor("echo", func(_ context.Context, j jobs.Job) (map[string]any, error) {
		return map[string]any{"echoed": true}, nil
	})

	router := gin.New()
	group := router.Group("/api/v1/jobs")
	group.POST("", CreateJob(manager))
	group.GET("", ListJobs(manager))
	group.GET("/:id", GetJob(manager))
	group.POST("/:id/submit", SubmitJob(manager))
	group.DELETE("/:id", CancelJob(manager))
	return router, manager
}

func createJob(t *testing.T, router *gin.Engine, body string) datatypes.JobResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/jobs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp datatypes.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateJob_HappyPath(t *testing.T) {
	router, _ := jobsRouter(t)

	resp := createJob(t, router, `{"name":"echo","type":"async","payload":{"msg":"hi"}}`)
	assert.NotEmpty(t, resp.Job.ID)
	assert.Equal(t, jobs.StatusPending, resp.Job.Status)
	assert.Equal(t, "hi", resp.Job.Payload["msg"])
}

func TestCreateJob_InvalidBody(t *testing.T) {
	router, _ := jobsRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/jobs", bytes.NewBufferString(`{"type":"async"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateJob_UnregisteredExecutor(t *testing.T) {
	router, _ := jobsRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/jobs",
		bytes.NewBufferString(`{"name":"mystery","type":"async"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no executor registered")
}

func TestGetJob_NotFound(t *testing.T) {
	router, _ := jobsRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/jobs/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListJobs_CountAndFilter(t *testing.T) {
	router, _ := jobsRouter(t)
	createJob(t, router, `{"name":"echo","type":"async"}`)
	createJob(t, router, `{"name":"echo","type":"async"}`)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/jobs?status=pending", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.JobListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/jobs?status=completed", nil)
	router.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestSubmitJob_SyncReturnsTerminalState(t *testing.T) {
	router, _ := jobsRouter(t)
	created := createJob(t, router, `{"name":"echo","type":"sync"}`)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/jobs/"+created.Job.ID+"/submit", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp datatypes.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, jobs.StatusCompleted, resp.Job.Status)
	assert.Equal(t, true, resp.Job.Result["echoed"])
}

func TestSubmitJob_TwiceConflicts(t *testing.T) {
	router, _ := jobsRouter(t)
	created := createJob(t, router, `{"name":"echo","type":"sync"}`)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/jobs/"+created.Job.ID+"/submit", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/v1/jobs/"+created.Job.ID+"/submit", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelJob_PendingThenConflict(t *testing.T) {
	router, _ := jobsRouter(t)
	created := createJob(t, router, `{"name":"echo","type":"async"}`)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/v1/jobs/"+created.Job.ID, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, jobs.StatusCancelled, resp.Job.Status)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/v1/jobs/"+created.Job.ID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}
