package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time and any extra key/value pairs,
// e.g. "Rendered graph.svg duration=12ms bytes=4096".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append([]any{"duration", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Info(msg, keyvals...)
}
