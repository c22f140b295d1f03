// Package router sets up the gin engine for the leu services and carries
// their request-scoped middleware: trace ids, structured request logs and
// panic recovery.
//
// Every request is logged once, after the handler chain returns, through a
// RequestLogger. LogHarbourAdapter writes the entry as a logharbour activity
// log:
//
//	ginRouter.Use(router.LogRequest(router.NewLogHarbourAdapter(logger)))
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/remiges-tech/logharbour/logharbour"
)

const (
	// TraceHeader carries the trace id in requests and responses.
	TraceHeader = "X-Trace-ID"

	// CtxKeyTraceID holds the request's trace id in the gin context.
	CtxKeyTraceID = "_trace_id"

	// CtxKeyPanicRecovered and CtxKeyPanicValue are set by Recovery.
	CtxKeyPanicRecovered = "_panic_recovered"
	CtxKeyPanicValue     = "_panic_value"
)

// RequestInfo contains all the information about a request to be logged
type RequestInfo struct {
	Method         string        `json:"method"`
	Path           string        `json:"path"`
	Route          string        `json:"route,omitempty"` // route template, e.g. /numerals/:amount
	ClientIP       string        `json:"client_ip"`
	StatusCode     int           `json:"status_code"`
	StartTime      time.Time     `json:"start_time"` // UTC
	Duration       time.Duration `json:"duration"`
	RequestSize    int64         `json:"request_size"`
	ResponseSize   int64         `json:"response_size"`
	Query          string        `json:"query,omitempty"`
	UserAgent      string        `json:"user_agent,omitempty"`
	TraceID        string        `json:"trace_id"`
	Errors         []string      `json:"errors,omitempty"` // collected with c.Error
	PanicRecovered bool          `json:"panic_recovered,omitempty"`
	PanicValue     string        `json:"panic_value,omitempty"`
}

// RequestLogger defines the interface that a logger must implement to be used with LogRequest middleware
type RequestLogger interface {
	Log(info RequestInfo)
}

// TraceID returns the trace id LogRequest assigned to the request, or "".
func TraceID(c *gin.Context) string {
	return c.GetString(CtxKeyTraceID)
}

// LogRequest returns a middleware that makes sure every request has a trace
// id, echoes it in the response headers and logs the request once the rest
// of the chain has run. A trace id sent by the client is kept; otherwise a
// random UUID is used.
func LogRequest(logger RequestLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		requestSize := c.Request.ContentLength

		traceID := c.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(CtxKeyTraceID, traceID)
		c.Header(TraceHeader, traceID)

		c.Next()

		info := RequestInfo{
			Method:       c.Request.Method,
			Path:         c.Request.URL.Path,
			Route:        c.FullPath(),
			ClientIP:     c.ClientIP(),
			StatusCode:   c.Writer.Status(),
			StartTime:    startTime.UTC(),
			Duration:     time.Since(startTime),
			RequestSize:  requestSize,
			ResponseSize: int64(c.Writer.Size()),
			Query:        c.Request.URL.RawQuery,
			UserAgent:    c.Request.UserAgent(),
			TraceID:      traceID,
		}
		for _, e := range c.Errors {
			info.Errors = append(info.Errors, e.Error())
		}
		if v, ok := c.Get(CtxKeyPanicRecovered); ok {
			info.PanicRecovered, _ = v.(bool)
		}
		if v, ok := c.Get(CtxKeyPanicValue); ok {
			info.PanicValue, _ = v.(string)
		}

		logger.Log(info)
	}
}

// LogHarbourAdapter adapts a LogHarbour logger to implement the RequestLogger interface
type LogHarbourAdapter struct {
	logger *logharbour.Logger
}

func NewLogHarbourAdapter(logger *logharbour.Logger) *LogHarbourAdapter {
	return &LogHarbourAdapter{logger: logger}
}

// Log writes info as an activity log in the "http" module.
func (a *LogHarbourAdapter) Log(info RequestInfo) {
	logger := a.logger.WithModule("http").
		WithOp("request").
		WithRemoteIP(info.ClientIP).
		WithClass(info.Method).
		WithInstanceId(info.Path).
		WithStatus(getStatus(info.StatusCode))

	activityData := map[string]any{
		"method":        info.Method,
		"path":          info.Path,
		"route":         info.Route,
		"status":        info.StatusCode,
		"start_time":    info.StartTime.Format(time.RFC3339),
		"duration_ms":   info.Duration.Milliseconds(),
		"request_size":  info.RequestSize,
		"response_size": info.ResponseSize,
		"trace_id":      info.TraceID,
	}
	if info.Query != "" {
		activityData["query"] = info.Query
	}
	if info.UserAgent != "" {
		activityData["user_agent"] = info.UserAgent
	}
	if len(info.Errors) > 0 {
		activityData["errors"] = info.Errors
	}
	if info.PanicRecovered {
		activityData["panic_recovered"] = true
		activityData["panic_value"] = info.PanicValue
	}

	if info.StatusCode >= 500 {
		logger.Warn().LogActivity("HTTP request failed", activityData)
		return
	}
	logger.Info().LogActivity("HTTP request completed", activityData)
}

// getStatus converts an HTTP status code to a logharbour Status
func getStatus(statusCode int) logharbour.Status {
	if statusCode >= 200 && statusCode < 400 {
		return logharbour.Success
	}
	return logharbour.Failure
}
