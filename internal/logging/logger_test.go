package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ikit/internal/config"
	"ikit/internal/logging"
	"ikit/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "logs", "ikit.log")
	logger, err := logging.New(logging.Options{Format: format, Level: level, OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	read := func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
	logging.NewComponentLogger(logger, "upload").Info("file uploaded",
		logging.String(logging.FieldFileName, "cat.jpg"),
		logging.String("file_id", "abc 123"),
		logging.Int64("size", 42),
	)
	logger.Debug("debug detail")
	return logPath, read
}

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "ikit.log")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("written to file")

	content, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "written to file") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerFormatsSubject(t *testing.T) {
	_, read := newFileLogger(t, "console", "info")
	content := read()

	if !strings.Contains(content, " INFO upload: file uploaded [cat.jpg]") {
		t.Fatalf("unexpected console header: %q", content)
	}
	if !strings.Contains(content, `file_id="abc 123"`) || !strings.Contains(content, "size=42") {
		t.Fatalf("expected quoted attributes, got %q", content)
	}
	if strings.Contains(content, "debug detail") {
		t.Fatalf("debug line should be filtered at info level: %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	_, read := newFileLogger(t, "console", "debug")
	content := read()
	if !strings.Contains(content, "debug detail") {
		t.Fatalf("expected debug line, got %q", content)
	}
	if !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerFields(t *testing.T) {
	_, read := newFileLogger(t, "json", "info")
	line := strings.TrimSpace(strings.Split(read(), "\n")[0])

	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, line)
	}
	if record["level"] != "info" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
	if record[logging.FieldComponent] != "upload" || record[logging.FieldFileName] != "cat.jpg" {
		t.Fatalf("missing context fields: %v", record)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithFileName(ctx, "dog.png")
	logging.WithContext(ctx, logger).Warn("slow upload", logging.Error(errors.New("timeout")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, want := range []string{`"correlation_id":"req-1"`, `"file_name":"dog.png"`, `"error":"timeout"`} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %s in %s", want, content)
		}
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected no-op logger")
	}
	logger.Error("discarded")
}

func TestLoggersRedactSigningFields(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		t.Run(format, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "redact.log")
			logger, err := logging.New(logging.Options{Format: format, OutputPaths: []string{logPath}})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			logger.Info("signed",
				logging.String("signature", "deadbeef"),
				logging.String("token", "tok-123"),
				logging.FileID("file_1"),
			)
			logger.WithGroup("auth").Info("grouped", logging.String("private_key", "secret"))

			content, err := os.ReadFile(logPath)
			if err != nil {
				t.Fatalf("read log file: %v", err)
			}
			for _, leaked := range []string{"deadbeef", "tok-123", "secret"} {
				if strings.Contains(string(content), leaked) {
					t.Fatalf("%q leaked into %s output: %s", leaked, format, content)
				}
			}
			if !strings.Contains(string(content), "[redacted]") || !strings.Contains(string(content), "file_1") {
				t.Fatalf("unexpected %s output: %s", format, content)
			}
		})
	}
}

func TestConsoleLoggerHeaderCarriesCorrelationID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "corr.log")
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRequestID(context.Background(), "req-9")
	logging.WithContext(ctx, logger).Info("file uploaded", logging.Error(nil), logging.Bytes(10))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "file uploaded {req-9} bytes=10") {
		t.Fatalf("unexpected console line %q", line)
	}
	if strings.Contains(line, "error=") || strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no error field and no colors, got %q", line)
	}
}

func TestConsoleLoggerColors(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "color.log")
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}, Color: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("slow")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "\x1b[33mWARN\x1b[0m") {
		t.Fatalf("expected colored level, got %q", content)
	}
}
