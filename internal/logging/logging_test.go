package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestNewJSON проверяет JSON-формат вне локального окружения.
func TestNewJSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	New("production", &buf).Info("prediction fallback used", slog.Int("days", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q", buf.String())
	}
	if entry["msg"] != "prediction fallback used" || entry["days"] != float64(3) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

// TestNewLocalLevel проверяет цветной вывод и уровень из LOG_LEVEL.
func TestNewLocalLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer
	logger := New("local", &buf)

	logger.Info("hidden")
	logger.Warn("places fallback used")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "places fallback used") {
		t.Fatalf("unexpected output: %q", out)
	}
}
