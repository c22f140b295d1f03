package dataset

import (
	"bytes"
	"context"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/stretchr/testify/assert"
)

func TestTraceLogger(t *testing.T) {
	var buf bytes.Buffer
	lh := logharbour.NewLogger(logharbour.NewLoggerContext(logharbour.DefaultPriority), "dataset-test", &buf)
	tl := NewTraceLogger(lh, tracelog.LogLevelInfo)
	ctx := context.Background()

	tl.Log(ctx, tracelog.LogLevelInfo, "Query", map[string]any{"sql": "SELECT 1"})
	assert.Contains(t, buf.String(), "Query")
	assert.Contains(t, buf.String(), "SELECT 1")
	assert.Contains(t, buf.String(), "pgx")

	buf.Reset()
	tl.Log(ctx, tracelog.LogLevelDebug, "too verbose", nil)
	tl.Log(ctx, tracelog.LogLevelNone, "never", nil)
	assert.Empty(t, buf.String())

	tl.SetLevel(tracelog.LogLevelError)
	assert.Equal(t, tracelog.LogLevelError, tl.Level())
	tl.Log(ctx, tracelog.LogLevelWarn, "dropped warning", nil)
	assert.Empty(t, buf.String())
	tl.Log(ctx, tracelog.LogLevelError, "connection lost", nil)
	assert.Contains(t, buf.String(), "connection lost")

	tracer := tl.Tracer()
	assert.Same(t, tl, tracer.Logger)
	assert.Equal(t, tracelog.LogLevelTrace, tracer.LogLevel)
}
