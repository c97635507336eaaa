package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tercet-ai/tercet/internal/core"
)

func sampleResult() *core.WorkflowResult {
	req := core.NewTranslationRequest("the fog comes", "English", "French")
	result := core.NewWorkflowResult("wf-1", req, core.ModeHybrid)
	for _, stage := range core.AllStages() {
		_ = result.AddStep(core.StepResult{
			Stage:            stage,
			Fields:           map[string]string{core.FieldTranslation: "le brouillard vient"},
			Provider:         "openai",
			Model:            "gpt-4o-mini",
			PromptTokens:     10,
			CompletionTokens: 5,
			CompletedAt:      time.Now(),
			Attempts:         1,
		})
	}
	_ = result.Finalize()
	return result
}

func TestWriteResultFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	if err := writeResultFile(path, sampleResult(), "json"); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("result file must be valid JSON: %v", err)
	}
	if decoded["status"] != "succeeded" {
		t.Fatalf("unexpected status %v", decoded["status"])
	}
	if steps, ok := decoded["steps"].([]any); !ok || len(steps) != 3 {
		t.Fatalf("expected 3 steps in document")
	}
}

func TestWriteResultFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.yaml")
	if err := writeResultFile(path, sampleResult(), "yaml"); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("result file must be valid YAML: %v", err)
	}
}

func TestWriteResultFile_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.xml")
	if err := writeResultFile(path, sampleResult(), "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteTextFile_AppendsNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := writeTextFile(path, "le brouillard vient"); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "le brouillard vient\n" {
		t.Fatalf("unexpected content %q", string(data))
	}
}

func TestRequestMetadata(t *testing.T) {
	meta := requestMetadata("  Fog ", "")
	if meta["title"] != "Fog" {
		t.Fatalf("title must be trimmed, got %q", meta["title"])
	}
	if _, ok := meta["author"]; ok {
		t.Fatalf("empty author must be omitted")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(1234 * time.Millisecond); !strings.HasPrefix(got, "1.23") {
		t.Fatalf("unexpected duration format %q", got)
	}
	if got := formatDuration(85 * time.Millisecond); got != "85ms" {
		t.Fatalf("unexpected duration format %q", got)
	}
}
