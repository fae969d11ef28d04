package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpcheck/internal/errors"
	"github.com/thoreinstein/mcpcheck/internal/redact"
)

// Format selects the handler for the primary log output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --log-format value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return f, nil
	}
	return "", errors.Newf("unknown log format %q, want text or json", s)
}

// LevelTrace is below debug. Full JSON-RPC payloads and the child
// environment are logged at this level.
const LevelTrace = slog.Level(-8)

// LevelFromVerbosity maps the -v count: none is warn, then info, debug
// and trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	}
	return LevelTrace
}

// VerbosityFromEnv reads a debug switch such as MCPCHECK_DEBUG: "1" or
// "true" is debug, "2" or "trace" is trace, anything else is off.
func VerbosityFromEnv(val string) int {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true":
		return 2
	case "2", "trace":
		return 3
	}
	return 0
}

// Config describes the logger built by New.
type Config struct {
	Level  slog.Level
	Format Format
	// Output defaults to os.Stderr.
	Output io.Writer
	// File, when set, also receives every record as JSON.
	File io.Writer
}

// New builds a logger from cfg. Unknown formats fall back to text.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = jsonHandler(out, cfg.Level)
	} else {
		h = NewHandler(out, &slog.HandlerOptions{Level: cfg.Level})
	}
	if cfg.File != nil {
		h = fanout{h, jsonHandler(cfg.File, cfg.Level)}
	}
	return slog.New(h)
}

func jsonHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: RedactAttr})
}

// RedactAttr masks secret-looking attributes for slog.HandlerOptions.
// Handler redacts on its own and does not need it.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	value := a.Value.Resolve().String()
	if redact.ShouldMask(a.Key) || redact.ContainsTokenPrefix(value) {
		return slog.String(a.Key, redact.Value(value))
	}
	return a
}

type ctxKey struct{}

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// ForTest returns a trace-level logger writing through t.Log.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{Level: LevelTrace, Output: testWriter{t}})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
