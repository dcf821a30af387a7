package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func jsonUnmarshal(raw []byte, target interface{}) error {
	return json.Unmarshal(raw, target)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, options{})

	status, body := env.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, body.Success)

	var health struct {
		Status   string `json:"status"`
		Service  string `json:"service"`
		Database string `json:"database"`
	}
	decodeData(t, body, &health)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "EduSync Test", health.Service)
	require.Equal(t, "sqlite", health.Database)
}

func TestMetricsEndpointExposesHTTPCounters(t *testing.T) {
	env := newTestEnv(t, options{})
	env.do(t, http.MethodGet, "/api/v1/health", nil, nil)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), "edusync_http_requests_total")
}
