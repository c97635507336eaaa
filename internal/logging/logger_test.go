package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger_JSONOutputIsSanitized(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})

	logger.Info("provider call failed", "error", "401 with key sk-abcdefghij1234567890ABCD")

	line := buf.String()
	if strings.Contains(line, "sk-abcdefghij1234567890ABCD") {
		t.Fatalf("api key leaked into log output: %s", line)
	}
	if !strings.Contains(line, "[REDACTED]") {
		t.Fatalf("expected redaction marker in %s", line)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON log line: %v", err)
	}
	if entry["msg"] != "provider call failed" {
		t.Fatalf("unexpected message %v", entry["msg"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "text", Output: &buf})

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("below-level lines must be filtered: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %s", out)
	}
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})

	logger.WithWorkflow("wf-42").WithStage("critique").WithProvider("anthropic").Info("stage started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parsing log line: %v", err)
	}
	if entry["workflow_id"] != "wf-42" || entry["stage"] != "critique" || entry["provider"] != "anthropic" {
		t.Fatalf("context fields missing: %v", entry)
	}
}

func TestLogger_NopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("goes nowhere")
	logger.Error("also nowhere")
}
