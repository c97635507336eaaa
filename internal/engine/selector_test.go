package engine

import (
	"testing"

	"github.com/tercet-ai/tercet/internal/core"
)

func TestModeSelector_TierAssignment(t *testing.T) {
	selector, err := NewModeSelector(testConfig())
	if err != nil {
		t.Fatalf("building selector: %v", err)
	}

	cases := []struct {
		mode     core.WorkflowMode
		stage    core.Stage
		provider string
		model    string
	}{
		{core.ModeReasoning, core.StageDraft, "anthropic", "sonnet"},
		{core.ModeReasoning, core.StageCritique, "anthropic", "sonnet"},
		{core.ModeReasoning, core.StageRevision, "anthropic", "sonnet"},
		{core.ModeFast, core.StageDraft, "openai", "mini"},
		{core.ModeFast, core.StageCritique, "openai", "mini"},
		{core.ModeFast, core.StageRevision, "openai", "mini"},
		{core.ModeHybrid, core.StageDraft, "openai", "mini"},
		{core.ModeHybrid, core.StageCritique, "anthropic", "sonnet"},
		{core.ModeHybrid, core.StageRevision, "openai", "mini"},
	}
	for _, tc := range cases {
		step, err := selector.Select(tc.mode, tc.stage)
		if err != nil {
			t.Fatalf("Select(%s, %s): %v", tc.mode, tc.stage, err)
		}
		if step.Provider != tc.provider || step.Model != tc.model {
			t.Fatalf("Select(%s, %s) = %s/%s, want %s/%s",
				tc.mode, tc.stage, step.Provider, step.Model, tc.provider, tc.model)
		}
		if step.Stage != tc.stage {
			t.Fatalf("step carries wrong stage %s", step.Stage)
		}
	}
}

func TestModeSelector_UnknownMode(t *testing.T) {
	selector, err := NewModeSelector(testConfig())
	if err != nil {
		t.Fatalf("building selector: %v", err)
	}
	if _, err := selector.Select("turbo", core.StageDraft); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestModeSelector_StageConfigsInPipelineOrder(t *testing.T) {
	selector, err := NewModeSelector(testConfig())
	if err != nil {
		t.Fatalf("building selector: %v", err)
	}
	configs, err := selector.StageConfigs(core.ModeHybrid)
	if err != nil {
		t.Fatalf("StageConfigs: %v", err)
	}
	if len(configs) != 3 {
		t.Fatalf("expected 3 stage configs, got %d", len(configs))
	}
	for i, stage := range core.AllStages() {
		if configs[i].Stage != stage {
			t.Fatalf("position %d: got %s, want %s", i, configs[i].Stage, stage)
		}
	}
}

func TestModeSelector_BrokenConfigFailsConstruction(t *testing.T) {
	cfg := testConfig()
	cfg.Tiers.Fast.Provider = "missing"
	if _, err := NewModeSelector(cfg); err == nil {
		t.Fatalf("expected construction to fail for unconfigured provider")
	}
}
