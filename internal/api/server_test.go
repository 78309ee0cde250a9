package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"queuectl/internal/config"
	"queuectl/internal/domain"
	"queuectl/internal/infra/sqliteq"
	"queuectl/internal/ports"
)

func testServer(t *testing.T) (*Server, *sqliteq.Store) {
	t.Helper()
	t.Setenv("QUEUECTL_DATA_DIR", t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	st, err := sqliteq.Open(cfg.DBPath())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewServer(cfg, st), st
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestEnqueueEndpoint(t *testing.T) {
	s, st := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/enqueue", `{"command":"echo hi","priority":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["id"])

	job, err := st.Get(context.Background(), resp["id"])
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, job.State)
	require.Equal(t, domain.PriorityHigh, job.Priority)
	// max_retries snapshotted from default settings.
	require.Equal(t, 5, job.MaxRetries)
}

func TestEnqueueValidation(t *testing.T) {
	s, _ := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/enqueue", `{"command":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/enqueue", `{"command":"ls","run_at":"whenever"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnqueueDuplicateID(t *testing.T) {
	s, _ := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/enqueue", `{"command":"ls","id":"dup"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodPost, "/enqueue", `{"command":"ls","id":"dup"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestJobsEndpoints(t *testing.T) {
	s, st := testServer(t)
	ctx := context.Background()

	id, err := st.Enqueue(ctx, domain.Spec{Command: "ls"}, 3)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []domain.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)

	w = doJSON(t, s, http.MethodGet, "/jobs?state=dead", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = doJSON(t, s, http.MethodGet, "/jobs/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/jobs/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	s, st := testServer(t)
	_, err := st.Enqueue(context.Background(), domain.Spec{Command: "ls"}, 3)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 1, stats["pending"])
}

func TestDLQRetryEndpoint(t *testing.T) {
	s, st := testServer(t)
	ctx := context.Background()

	id, err := st.Enqueue(ctx, domain.Spec{Command: "ls"}, 3)
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodPost, "/dlq/"+id+"/retry", "")
	require.Equal(t, http.StatusNotFound, w.Code, "job is not dead yet")

	one := 1
	msg := "boom"
	require.NoError(t, st.Update(ctx, id, domain.StateDead, ports.JobUpdate{Attempts: &one, Error: &msg}))

	w = doJSON(t, s, http.MethodPost, "/dlq/"+id+"/retry", "")
	require.Equal(t, http.StatusOK, w.Code)

	job, err := st.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, job.State)
	require.Equal(t, 0, job.Attempts)
}
