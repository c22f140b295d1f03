package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remiges-tech/leu/metrics"
)

type captureLogger struct {
	entries []RequestInfo
}

func (l *captureLogger) Log(info RequestInfo) {
	l.entries = append(l.entries, info)
}

func TestLogRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := &captureLogger{}

	r := gin.New()
	r.Use(LogRequest(logs), Recovery())
	r.GET("/numerals/:amount", func(c *gin.Context) {
		_ = c.Error(errors.New("slow fetch"))
		c.String(http.StatusOK, TraceID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/numerals/68?x=1", nil)
	req.Header.Set(TraceHeader, "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "trace-123", w.Body.String())
	assert.Equal(t, "trace-123", w.Header().Get(TraceHeader))

	require.Len(t, logs.entries, 1)
	info := logs.entries[0]
	assert.Equal(t, http.MethodGet, info.Method)
	assert.Equal(t, "/numerals/68", info.Path)
	assert.Equal(t, "/numerals/:amount", info.Route)
	assert.Equal(t, "x=1", info.Query)
	assert.Equal(t, http.StatusOK, info.StatusCode)
	assert.Equal(t, "trace-123", info.TraceID)
	assert.Equal(t, []string{"slow fetch"}, info.Errors)
	assert.False(t, info.PanicRecovered)
}

func TestLogRequestGeneratesTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := &captureLogger{}

	r := gin.New()
	r.Use(LogRequest(logs))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get(TraceHeader)
	assert.Len(t, id, 36)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, id, logs.entries[0].TraceID)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := &captureLogger{}

	r := gin.New()
	r.Use(LogRequest(logs), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("table index out of range") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])

	require.Len(t, logs.entries, 1)
	assert.True(t, logs.entries[0].PanicRecovered)
	assert.Equal(t, "table index out of range", logs.entries[0].PanicValue)
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	lh := logharbour.NewLogger(&logharbour.LoggerContext{}, "test", &buf)

	r, err := SetupRouter(lh, metrics.NewPrometheusMetrics())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "HTTP request completed")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), metrics.HTTPRequestsTotal)

	// without metrics there is no /metrics route
	r, err = SetupRouter(lh, nil)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
