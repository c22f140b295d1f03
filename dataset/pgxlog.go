package dataset

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/remiges-tech/logharbour/logharbour"
)

// TraceLogger implements tracelog.Logger on top of logharbour, so the
// queries a PGDescriptor runs end up in the application log under the
// "pgx" module. The level can be changed while the pool is in use.
type TraceLogger struct {
	logger *logharbour.Logger

	mu    sync.RWMutex
	level tracelog.LogLevel
}

func NewTraceLogger(l *logharbour.Logger, level tracelog.LogLevel) *TraceLogger {
	return &TraceLogger{logger: l.WithModule("pgx"), level: level}
}

func (t *TraceLogger) SetLevel(level tracelog.LogLevel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.level = level
}

func (t *TraceLogger) Level() tracelog.LogLevel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.level
}

// Log drops messages more verbose than the current level.
func (t *TraceLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if level == tracelog.LogLevelNone || level > t.Level() {
		return
	}

	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		t.logger.Debug1().LogActivity(msg, data)
	case tracelog.LogLevelWarn:
		t.logger.Warn().LogActivity(msg, data)
	case tracelog.LogLevelError:
		t.logger.Error(errors.New(msg)).LogActivity(msg, data)
	default:
		t.logger.Info().LogActivity(msg, data)
	}
}

// Tracer returns a pgx query tracer that sends everything to t; t does the
// filtering.
func (t *TraceLogger) Tracer() *tracelog.TraceLog {
	return &tracelog.TraceLog{Logger: t, LogLevel: tracelog.LogLevelTrace}
}
