package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"streamfinder/internal/config"
	"streamfinder/internal/services"
)

func TestNewJSONLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", String(FieldComponent, "test"), Int("count", 2))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", data, err)
	}
	if entry["msg"] != "hello" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry[FieldComponent] != "test" {
		t.Fatalf("unexpected component: %v", entry[FieldComponent])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(Options{Level: "warn", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Fatalf("info line should be filtered: %s", data)
	}
	if !strings.Contains(string(data), "kept") {
		t.Fatalf("warn line missing: %s", data)
	}
}

func TestPrettyHandlerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))
	logger = NewComponentLogger(logger, "discovery")
	logger.Info("cache hit", String(FieldCacheKey, "8_35_en_0_89"), String("title", "Two Words"))

	line := buf.String()
	for _, want := range []string{"INFO", "[discovery]", "cache hit", "cache_key=8_35_en_0_89", `title="Two Words"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should render as prefix, got %q", line)
	}
}

func TestFileCopyIsJSONWhenConsoleSelected(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "streamfinder.log")
	consolePath := filepath.Join(dir, "console.log")
	logger, err := New(Options{Format: "console", OutputPaths: []string{consolePath}, FilePath: filePath})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("teed")

	console, _ := os.ReadFile(consolePath)
	if !strings.Contains(string(console), "– teed") {
		t.Fatalf("console output missing record: %q", console)
	}
	data, _ := os.ReadFile(filePath)
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("file copy should be JSON: %v (%q)", err, data)
	}
}

func TestNewFromConfigUsesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "debug"
	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug line")
	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "streamfinder.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "debug line") {
		t.Fatalf("expected debug record, got %q", data)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	base := slog.New(newJSONHandler(&buf, levelVar, false))

	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithOperation(ctx, "search")
	ctx = services.WithShell(ctx, "web")
	WithContext(ctx, base).Info("contextual")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[FieldRequestID] != "req-1" || entry[FieldOperation] != "search" || entry[FieldShell] != "web" {
		t.Fatalf("missing context fields: %v", entry)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar, false))
	WarnWithContext(logger, "cache unreadable", "cache_corrupt", String(FieldImpact, "starting with empty cache"))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[FieldEventType] != "cache_corrupt" {
		t.Fatalf("unexpected event type: %v", entry[FieldEventType])
	}
	if entry[FieldErrorHint] == nil {
		t.Fatal("expected default error hint")
	}
	if entry[FieldImpact] != "starting with empty cache" {
		t.Fatalf("explicit impact should be preserved: %v", entry[FieldImpact])
	}
}

func TestTeeHandlerSkipsDisabledHandlers(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	infoLevel := new(slog.LevelVar)
	errLevel := new(slog.LevelVar)
	errLevel.Set(slog.LevelError)
	logger := slog.New(newTeeHandler(
		newJSONHandler(&infoBuf, infoLevel, false),
		newJSONHandler(&errBuf, errLevel, false),
		nil,
	))
	logger.Info("info only")
	if infoBuf.Len() == 0 {
		t.Fatal("info handler should receive record")
	}
	if errBuf.Len() != 0 {
		t.Fatalf("error handler should skip info record, got %q", errBuf.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
	NewComponentLogger(nil, "x").Info("ignored")
}

func TestJSONHandlerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, new(slog.LevelVar), false))
	transportErr := errors.New(`Get "https://api.themoviedb.org/3/movie/550?api_key=abc123&language=en-US": dial tcp: timeout`)
	logger.Warn("catalog request failed", Error(transportErr), String("url", "https://x.test/?access_token=tok9"))

	out := buf.String()
	for _, secret := range []string{"abc123", "tok9"} {
		if strings.Contains(out, secret) {
			t.Fatalf("secret %q leaked into %s", secret, out)
		}
	}
	if !strings.Contains(out, "api_key=REDACTED") || !strings.Contains(out, "access_token=REDACTED") {
		t.Fatalf("expected redacted query, got %s", out)
	}
}

func TestPrettyHandlerRedactsAndFormatsValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, new(slog.LevelVar), false))
	logger.Error("lookup failed",
		Error(errors.New("status 401 for /genre/movie/list?api_key=s3cret")),
		Duration("elapsed", 1500*time.Millisecond),
		String("empty", ""),
		Bool("cached", false))

	line := buf.String()
	if strings.Contains(line, "s3cret") {
		t.Fatalf("secret leaked into %q", line)
	}
	for _, want := range []string{`error="status 401 for /genre/movie/list?api_key=REDACTED"`, "elapsed=1.5s", `empty=""`, "cached=false"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}
