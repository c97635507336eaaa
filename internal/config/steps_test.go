package config

import (
	"testing"
	"time"

	"github.com/tercet-ai/tercet/internal/core"
)

func TestStepConfig_Assembly(t *testing.T) {
	cfg := validConfig()

	step, err := cfg.StepConfig(core.StageDraft, cfg.Tiers.Fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Stage != core.StageDraft {
		t.Fatalf("unexpected stage %s", step.Stage)
	}
	if step.Provider != "openai" || step.Model != "gpt-4o-mini" {
		t.Fatalf("tier binding lost: %s/%s", step.Provider, step.Model)
	}
	if step.Timeout != 120*time.Second {
		t.Fatalf("timeout not parsed: %s", step.Timeout)
	}
	if step.Retry.MaxAttempts != 3 || step.Retry.BaseDelay != time.Second || step.Retry.MaxDelay != 30*time.Second {
		t.Fatalf("retry spec not parsed: %+v", step.Retry)
	}
	if len(step.Output.Fields) != 2 {
		t.Fatalf("output spec not carried: %+v", step.Output)
	}
	if req := step.Output.RequiredFields(); len(req) != 1 || req[0] != "translation" {
		t.Fatalf("unexpected required fields %v", req)
	}
}

func TestStepConfig_UnknownTierProvider(t *testing.T) {
	cfg := validConfig()
	if _, err := cfg.StepConfig(core.StageDraft, ModelRef{Provider: "mistral", Model: "m"}); err == nil {
		t.Fatalf("expected error for unconfigured tier provider")
	}
}

func TestStepConfig_BadDuration(t *testing.T) {
	cfg := validConfig()
	cfg.Stages.Draft.Timeout = "soon"
	if _, err := cfg.StepConfig(core.StageDraft, cfg.Tiers.Fast); err == nil {
		t.Fatalf("expected error for unparseable timeout")
	}

	cfg = validConfig()
	cfg.Stages.Draft.Retry.BaseDelay = "a while"
	if _, err := cfg.StepConfig(core.StageDraft, cfg.Tiers.Fast); err == nil {
		t.Fatalf("expected error for unparseable base delay")
	}
}

func TestStepConfig_UnknownStage(t *testing.T) {
	cfg := validConfig()
	if _, err := cfg.StepConfig("polish", cfg.Tiers.Fast); err == nil {
		t.Fatalf("expected error for unknown stage")
	}
}

func TestStepConfig_ValidatesAssembledStep(t *testing.T) {
	cfg := validConfig()
	cfg.Stages.Draft.MaxTokens = -1
	if _, err := cfg.StepConfig(core.StageDraft, cfg.Tiers.Fast); err == nil {
		t.Fatalf("expected validation failure for negative max_tokens")
	}
}
