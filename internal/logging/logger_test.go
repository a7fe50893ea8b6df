package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()

	if config.Level != INFO {
		t.Errorf("Expected Level=INFO, got %v", config.Level)
	}
	if !config.EnableConsole {
		t.Error("Expected EnableConsole=true")
	}
	if !config.RedactSensitive {
		t.Error("Expected RedactSensitive=true")
	}
	if config.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected MaxFileSize=104857600, got %v", config.MaxFileSize)
	}
}

func TestNewLogger_ConsoleOnly(t *testing.T) {
	config := LogConfig{
		Level:         INFO,
		EnableConsole: true,
	}

	logger, err := NewLogger(config)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() {
		logger.Close()
	})

	if _, ok := logger.(*ConsoleLogger); !ok {
		t.Errorf("Expected ConsoleLogger, got %T", logger)
	}
}

func TestNewLogger_FileOnly(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	config := LogConfig{
		Level:         INFO,
		EnableConsole: false,
		OutputFile:    logPath,
	}

	logger, err := NewLogger(config)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() {
		logger.Close()
	})

	if _, ok := logger.(*FileLogger); !ok {
		t.Errorf("Expected FileLogger, got %T", logger)
	}
}

func TestNewLogger_Both(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	config := LogConfig{
		Level:         DEBUG,
		EnableConsole: true,
		OutputFile:    logPath,
	}

	logger, err := NewLogger(config)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() {
		logger.Close()
	})

	if _, ok := logger.(*MultiLogger); !ok {
		t.Errorf("Expected MultiLogger, got %T", logger)
	}
}

func TestNewLogger_NoOp(t *testing.T) {
	config := LogConfig{
		Level:         INFO,
		EnableConsole: false,
	}

	logger, err := NewLogger(config)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	if _, ok := logger.(*NoOpLogger); !ok {
		t.Errorf("Expected NoOpLogger, got %T", logger)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer: &buf,
		Level:  WARN,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("Messages below WARN were not filtered: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("WARN/ERROR messages missing: %q", out)
	}
}

func TestConsoleLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer: &buf,
		Level:  INFO,
	})

	logger.Info("upload complete", F("path", "assets/video.mp4"), F("size", 1024))

	out := buf.String()
	if !strings.Contains(out, "path=assets/video.mp4") {
		t.Errorf("Field not rendered: %q", out)
	}
	if !strings.Contains(out, "size=1024") {
		t.Errorf("Field not rendered: %q", out)
	}
}

func TestConsoleLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer:          &buf,
		Level:           INFO,
		RedactSensitive: true,
	})

	logger.Info("request sent with Bearer abc123tokenvalue")
	logger.Info("token ghp_0123456789abcdef stored")

	out := buf.String()
	if strings.Contains(out, "abc123tokenvalue") || strings.Contains(out, "ghp_0123456789abcdef") {
		t.Errorf("Sensitive data not redacted: %q", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("Expected redaction marker: %q", out)
	}
}

func TestConsoleLogger_WithTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer: &buf,
		Level:  INFO,
	})

	logger.WithTraceID("trace-42").Info("scoped message")

	if !strings.Contains(buf.String(), "[trace-42]") {
		t.Errorf("Trace ID missing from output: %q", buf.String())
	}
}

func TestFileLogger_WritesJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:  logPath,
		Level: INFO,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.Info("record written", F("filename", "big.bin"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var entry struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("Expected level INFO, got %q", entry.Level)
	}
	if entry.Message != "record written" {
		t.Errorf("Unexpected message %q", entry.Message)
	}
	if entry.Fields["filename"] != "big.bin" {
		t.Errorf("Unexpected fields %v", entry.Fields)
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "rotate.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:        logPath,
		Level:       INFO,
		MaxFileSize: 64,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	t.Cleanup(func() {
		logger.Close()
	})

	for i := 0; i < 10; i++ {
		logger.Info("a reasonably long log message to force rotation")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) < 2 {
		t.Errorf("Expected rotated log files, found %d entries", len(entries))
	}
}

func TestMultiLogger_FansOut(t *testing.T) {
	var first, second bytes.Buffer
	multi := NewMultiLogger(
		NewConsoleLogger(ConsoleLoggerConfig{Writer: &first, Level: INFO}),
		NewConsoleLogger(ConsoleLoggerConfig{Writer: &second, Level: INFO}),
	)

	multi.Info("broadcast")

	if !strings.Contains(first.String(), "broadcast") || !strings.Contains(second.String(), "broadcast") {
		t.Error("MultiLogger did not write to all loggers")
	}
}
