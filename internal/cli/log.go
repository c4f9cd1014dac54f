// Package cli implements the gritea command-line interface.
//
// The CLI wraps the Gitea client library: it resolves a server and
// credential from config.toml, the environment and flags, then runs one
// API operation per command and prints the result as styled text, JSON or
// YAML. It is built using cobra and logs via charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - login, logout, whoami: manage stored credentials per host
//   - repo: get and list repositories
//   - hook: create, list, get and delete repository webhooks
//   - status: create and list commit statuses
//   - oauth: build authorization URLs, exchange codes, browser login
//   - webhook: sign and verify payloads, run a receiving server
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every HTTP round trip through the observability hooks. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Fetched 3 repositories (412ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports HTTP round trips at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnRequest(ctx context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}
