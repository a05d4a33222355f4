package transport_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/testserver"
	"github.com/rpggio/meetflow/internal/transport"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

const weeklySync = `{"name":"Weekly Sync","meetingUrl":"https://x/y","prompt":"summarize"}`

func TestHTTPServer_Health(t *testing.T) {
	ts := testserver.New(t)

	resp := do(t, http.MethodGet, ts.Server.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_ProjectCRUD(t *testing.T) {
	ts := testserver.New(t)
	base := ts.Server.URL + "/api/projects"

	resp := do(t, http.MethodPost, base, weeklySync)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created project.Project
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)

	resp = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summaries []project.Summary
	decode(t, resp, &summaries)
	require.Len(t, summaries, 1)
	require.Equal(t, "Weekly Sync", summaries[0].Name)

	resp = do(t, http.MethodPut, base+"/"+created.ID, `{"prompt":"list decisions"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated project.Project
	decode(t, resp, &updated)
	require.Equal(t, "list decisions", updated.Prompt)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)

	resp = do(t, http.MethodGet, base+"/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodDelete, base+"/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body transport.ErrorBody
	decode(t, resp, &body)
	require.Equal(t, "PROJECT_NOT_FOUND", body.Error.Code)
}

func TestHTTPServer_Validation(t *testing.T) {
	ts := testserver.New(t)
	base := ts.Server.URL + "/api/projects"

	resp := do(t, http.MethodPost, base, `{"name":"x","meetingUrl":"","prompt":"p"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body transport.ErrorBody
	decode(t, resp, &body)
	require.Equal(t, "INVALID_INPUT", body.Error.Code)
	require.Contains(t, body.Error.Message, "meetingUrl")

	resp = do(t, http.MethodPost, base, `{"name":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, base, `{"title":"unknown field"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.Server.URL+"/api/activity?limit=-3", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Runs(t *testing.T) {
	ts := testserver.New(t)
	base := ts.Server.URL + "/api/projects"

	resp := do(t, http.MethodPost, base, weeklySync)
	var created project.Project
	decode(t, resp, &created)

	resp = do(t, http.MethodPost, base+"/"+created.ID+"/runs", `{"wait":true,"callName":"Monday"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var started struct {
		ProjectID string      `json:"projectId"`
		Run       project.Run `json:"run"`
	}
	decode(t, resp, &started)
	require.Equal(t, project.StatusCompleted, started.Run.Status)
	require.Len(t, started.Run.ActionItems, 3)

	resp = do(t, http.MethodPost, base+"/"+created.ID+"/runs", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	ts.App.Runs.Wait()

	resp = do(t, http.MethodGet, base+"/"+created.ID+"/runs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs []project.Run
	decode(t, resp, &runs)
	require.Len(t, runs, 2)
	require.Equal(t, started.Run.ID, runs[1].ID)

	resp = do(t, http.MethodGet, ts.Server.URL+"/api/activity?type=run_completed&projectId="+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []activity.ActivityEntry
	decode(t, resp, &entries)
	require.Len(t, entries, 2)
}

func TestHTTPServer_Metrics(t *testing.T) {
	ts := testserver.New(t)

	do(t, http.MethodPost, ts.Server.URL+"/api/projects", weeklySync)

	resp := do(t, http.MethodGet, ts.Server.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.Contains(text, `meetflow_project_operations_total{operation="create",status="ok"} 1`), text)
	require.Contains(t, text, `meetflow_http_requests_total{method="POST",route="/api/projects",status="201"} 1`)
}
