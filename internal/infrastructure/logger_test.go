package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capmcli/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "nested", "capm.log")

	var console bytes.Buffer
	SetConsoleOutputForTesting(&console)

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "both",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}

	logger.Info("test message", "key", "value")

	CloseLogFile()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal(content, &logEntry); err != nil {
		t.Errorf("Log output is not valid JSON: %v", err)
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("Expected key='value', got %v", logEntry["key"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", logEntry["level"])
	}

	if !strings.Contains(console.String(), "test message") {
		t.Errorf("Expected console copy of the entry, got %q", console.String())
	}
}

func TestInitializeLogger_ConsoleOnlyKeepsStdoutClean(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var console bytes.Buffer
	SetConsoleOutputForTesting(&console)

	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Info("hello")
	if !strings.Contains(console.String(), `"msg":"hello"`) {
		t.Errorf("Expected entry on console writer, got %q", console.String())
	}
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var buf bytes.Buffer
	SetConsoleOutputForTesting(&buf)

	logger, err := InitializeLogger(config.LoggingConfig{Level: "debug", Format: "json", Output: "console"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := WithTraceID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with trace")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	if logEntry["trace_id"] != "run-123" {
		t.Errorf("Expected trace_id='run-123', got %v", logEntry["trace_id"])
	}

	buf.Reset()
	logger.InfoContext(context.Background(), "without trace")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("Did not expect trace_id, got %s", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level      string
		debugShown bool
		infoShown  bool
		warnShown  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"warning", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			ResetLoggerForTesting()
			defer ResetLoggerForTesting()

			var buf bytes.Buffer
			SetConsoleOutputForTesting(&buf)

			logger, err := InitializeLogger(config.LoggingConfig{Level: tt.level, Format: "json", Output: "console"})
			if err != nil {
				t.Fatalf("Failed to initialize logger: %v", err)
			}

			logger.Debug("debug-line")
			logger.Info("info-line")
			logger.Warn("warn-line")

			out := buf.String()
			if got := strings.Contains(out, "debug-line"); got != tt.debugShown {
				t.Errorf("debug shown = %v, want %v", got, tt.debugShown)
			}
			if got := strings.Contains(out, "info-line"); got != tt.infoShown {
				t.Errorf("info shown = %v, want %v", got, tt.infoShown)
			}
			if got := strings.Contains(out, "warn-line"); got != tt.warnShown {
				t.Errorf("warn shown = %v, want %v", got, tt.warnShown)
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	if GetTraceID(nil) != "" { //nolint:staticcheck
		t.Error("Expected empty trace ID for nil context")
	}

	ctx := context.Background()
	if GetTraceID(ctx) != "" {
		t.Error("Expected empty trace ID for bare context")
	}

	ctx = EnsureTraceID(ctx)
	first := GetTraceID(ctx)
	if len(first) != 36 {
		t.Errorf("Expected UUID trace ID, got %q", first)
	}

	if again := GetTraceID(EnsureTraceID(ctx)); again != first {
		t.Errorf("EnsureTraceID replaced existing ID: %q -> %q", first, again)
	}

	if GenerateTraceID() == GenerateTraceID() {
		t.Error("Expected distinct trace IDs")
	}
}

func TestWithComponent(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var buf bytes.Buffer
	SetConsoleOutputForTesting(&buf)

	if _, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	WithComponent(nil, "dataload").Info("loaded")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	if logEntry["component"] != "dataload" {
		t.Errorf("Expected component='dataload', got %v", logEntry["component"])
	}
}
