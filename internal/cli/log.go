package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/srcfetch/pkg/observability"
)

// newLogger creates the logger shared by all commands.
// Timestamps are "HH:MM:SS.ms"; at debug level the caller is reported too.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress measures an operation for its closing log line.
// It is meant for a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, rounded to milliseconds:
//
//	14:32:01.45 INFO Run finished archives=12 elapsed=1.234s
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

// toolLogger reports each mvn invocation at debug level.
type toolLogger struct {
	logger *log.Logger
}

var _ observability.ToolHooks = toolLogger{}

func (t toolLogger) OnToolRun(_ context.Context, goal string, exitCode int, duration time.Duration, err error) {
	kv := []any{"goal", goal, "exit", exitCode, "duration", duration.Round(time.Millisecond)}
	if err != nil {
		kv = append(kv, "error", err)
	}
	t.logger.Debug("mvn finished", kv...)
}
