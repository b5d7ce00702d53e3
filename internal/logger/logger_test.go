package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "converter.log")

	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.Console = false
	cfg.Level = "debug"

	log, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	WithOutput(log, "/src/a.png", "/out/a.jpg", "jpg").Info("Wrote output")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, data)
	}
	if entry["message"] != "Wrote output" || entry["format"] != "jpg" || entry["output"] != "/out/a.jpg" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	cfg.FilePath = ""
	if _, err := NewLogger(cfg); err == nil {
		t.Fatalf("NewLogger accepted an invalid level")
	}
}

func TestFieldHelpers(t *testing.T) {
	log := Discard()

	if got := WithFile(log, "/a").Data["file"]; got != "/a" {
		t.Fatalf("WithFile file = %v", got)
	}
	if got := WithOperation(log, "discover").Data["operation"]; got != "discover" {
		t.Fatalf("WithOperation operation = %v", got)
	}
	entry := WithFileOperation(log, "/b", "open")
	if entry.Data["file"] != "/b" || entry.Data["operation"] != "open" {
		t.Fatalf("WithFileOperation data = %v", entry.Data)
	}
}
