package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"openai":    {Kind: "openai", APIKey: "k1"},
			"anthropic": {Kind: "anthropic", APIKey: "k2"},
		},
		Tiers: TiersConfig{
			Reasoning: ModelRef{Provider: "anthropic", Model: "claude-sonnet-4-5"},
			Fast:      ModelRef{Provider: "openai", Model: "gpt-4o-mini"},
		},
	}
	applyDefaults(cfg)
	return cfg
}

func issueFields(issues []ValidationIssue) string {
	fields := make([]string, 0, len(issues))
	for _, i := range issues {
		fields = append(fields, i.Field)
	}
	return strings.Join(fields, ",")
}

func TestValidate_ValidConfig(t *testing.T) {
	if issues := validConfig().Validate(); len(issues) != 0 {
		t.Fatalf("expected no issues, got %s", issueFields(issues))
	}
}

func TestValidate_CollectsAllIssues(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "loud"
	cfg.Providers["openai"] = ProviderConfig{Kind: "openai"} // key missing
	cfg.Tiers.Fast.Model = ""

	issues := cfg.Validate()
	if len(issues) < 3 {
		t.Fatalf("expected every issue reported, got %s", issueFields(issues))
	}
}

func TestValidate_UnknownProviderKind(t *testing.T) {
	cfg := validConfig()
	cfg.Providers["weird"] = ProviderConfig{Kind: "smtp", APIKey: "k"}

	issues := cfg.Validate()
	if !strings.Contains(issueFields(issues), "providers.weird.kind") {
		t.Fatalf("expected kind issue, got %s", issueFields(issues))
	}
}

func TestValidate_TierMustReferenceConfiguredProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Tiers.Reasoning.Provider = "mistral"

	issues := cfg.Validate()
	if !strings.Contains(issueFields(issues), "tiers.reasoning.provider") {
		t.Fatalf("expected tier provider issue, got %s", issueFields(issues))
	}
}

func TestValidate_StageChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Stages.Draft.Temperature = 3.5
	cfg.Stages.Critique.Retry.MaxAttempts = 0
	// MaxAttempts 0 gets re-defaulted only at load time; Validate sees it raw.

	issues := cfg.Validate()
	fields := issueFields(issues)
	if !strings.Contains(fields, "stages.draft.temperature") {
		t.Fatalf("expected temperature issue, got %s", fields)
	}
	if !strings.Contains(fields, "stages.critique.retry.max_attempts") {
		t.Fatalf("expected retry issue, got %s", fields)
	}
}

func TestValidate_OutputSpecNeedsRequiredField(t *testing.T) {
	cfg := validConfig()
	cfg.Stages.Revision.Output = []FieldConfig{{Name: "notes", Tag: "NOTES"}}

	issues := cfg.Validate()
	if !strings.Contains(issueFields(issues), "stages.revision.output") {
		t.Fatalf("expected output issue, got %s", issueFields(issues))
	}
}

func TestValidate_NoProviders(t *testing.T) {
	cfg := validConfig()
	cfg.Providers = nil

	issues := cfg.Validate()
	if !strings.Contains(issueFields(issues), "providers") {
		t.Fatalf("expected providers issue, got %s", issueFields(issues))
	}
}
