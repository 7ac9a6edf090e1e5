package obs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEventFillsDefaults(t *testing.T) {
	logger := Logger()
	orig := logger.Writer()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(orig)

	LogEvent(map[string]any{"msg": "unit_test", "count": 3})

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	if entry["msg"] != "unit_test" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Fatalf("expected default level info, got %v", entry["level"])
	}
	if entry["ts"] == nil || entry["ts"] == "" {
		t.Fatal("expected ts to be set")
	}
	if entry["count"] != float64(3) {
		t.Fatalf("payload fields must survive, got %v", entry["count"])
	}
}

func TestLogEventKeepsCallerLevel(t *testing.T) {
	logger := Logger()
	orig := logger.Writer()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(orig)

	LogEvent(map[string]any{"msg": "warned", "level": "warn"})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("caller level must win, got %v", entry["level"])
	}
}
