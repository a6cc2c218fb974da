package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceRecordsRemoteCalls(t *testing.T) {
	m := NewMetricsService()
	m.ObserveRemoteCall("list_courses", http.StatusOK, 20*time.Millisecond, nil)
	m.ObserveRemoteCall("enroll", http.StatusBadRequest, 10*time.Millisecond, errors.New("duplicate"))
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, 30*time.Millisecond)
	m.RecordSessionLoad(true)
	m.RecordAuditJob(nil)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RemoteCallsTotal)
	assert.Equal(t, uint64(1), snap.RemoteFailuresTotal)
	assert.InDelta(t, 15.0, snap.AverageRemoteCallDuration, 0.01)
	assert.Equal(t, uint64(1), snap.RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `remote_api_calls_total{operation="enroll",outcome="failure",status="400"} 1`))
	assert.True(t, strings.Contains(body, `session_loads_total{result="hit"} 1`))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveRemoteCall("x", 0, time.Millisecond, nil)
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
