// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// captureState is shared by a handler and every handler derived from it
type captureState struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler records log calls in memory. Attributes added with
// logger.With are kept on each record.
type CaptureHandler struct {
	state *captureState
	attrs []slog.Attr
	level slog.Level
}

// NewCaptureHandler captures records at level and above
func NewCaptureHandler(level slog.Level) *CaptureHandler {
	return &CaptureHandler{state: &captureState{}, level: level}
}

// NewTestLogger returns a logger capturing everything down to debug
func NewTestLogger() (*slog.Logger, *CaptureHandler) {
	h := NewCaptureHandler(slog.LevelDebug)
	return slog.New(h), h
}

// Enabled implements slog.Handler
func (h *CaptureHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.records = append(h.state.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CaptureHandler{state: h.state, attrs: merged, level: h.level}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *CaptureHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of everything captured
func (h *CaptureHandler) Records() []LogRecord {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	out := make([]LogRecord, len(h.state.records))
	copy(out, h.state.records)
	return out
}

// Find returns the records whose message contains message
func (h *CaptureHandler) Find(message string) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if strings.Contains(r.Message, message) {
			out = append(out, r)
		}
	}
	return out
}

// AssertLogged fails t unless a record at level contains message
func AssertLogged(t *testing.T, h *CaptureHandler, level slog.Level, message string) LogRecord {
	t.Helper()
	for _, r := range h.Find(message) {
		if r.Level == level {
			return r
		}
	}
	t.Errorf("expected %s log containing %q", level, message)
	for _, r := range h.Records() {
		t.Logf("  [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
	return LogRecord{}
}
