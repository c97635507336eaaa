package config

import (
	"fmt"
	"strings"

	"github.com/tercet-ai/tercet/internal/core"
)

// ValidationIssue describes one configuration problem.
type ValidationIssue struct {
	Field   string
	Message string
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Validate checks the full configuration and returns every issue found,
// not just the first one.
func (c *Config) Validate() []ValidationIssue {
	var issues []ValidationIssue

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, ValidationIssue{"log.level", fmt.Sprintf("unknown level %q", c.Log.Level)})
	}
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		issues = append(issues, ValidationIssue{"log.format", fmt.Sprintf("unknown format %q", c.Log.Format)})
	}

	if len(c.Providers) == 0 {
		issues = append(issues, ValidationIssue{"providers", "at least one provider must be configured"})
	}
	for name, pc := range c.Providers {
		field := "providers." + name
		switch pc.Kind {
		case "openai", "anthropic":
		default:
			issues = append(issues, ValidationIssue{field + ".kind", fmt.Sprintf("unknown kind %q (want openai or anthropic)", pc.Kind)})
		}
		if strings.TrimSpace(pc.APIKey) == "" {
			issues = append(issues, ValidationIssue{field + ".api_key", "api key is required"})
		}
	}

	issues = append(issues, c.validateTier("tiers.reasoning", c.Tiers.Reasoning)...)
	issues = append(issues, c.validateTier("tiers.fast", c.Tiers.Fast)...)

	for _, stage := range core.AllStages() {
		sc, err := c.StageConfigFor(stage)
		if err != nil {
			issues = append(issues, ValidationIssue{"stages", err.Error()})
			continue
		}
		issues = append(issues, validateStage("stages."+stage.String(), sc)...)
	}

	return issues
}

func (c *Config) validateTier(field string, tier ModelRef) []ValidationIssue {
	var issues []ValidationIssue
	if tier.Provider == "" {
		issues = append(issues, ValidationIssue{field + ".provider", "provider is required"})
	} else if _, ok := c.Providers[tier.Provider]; !ok {
		issues = append(issues, ValidationIssue{field + ".provider", fmt.Sprintf("provider %q is not configured", tier.Provider)})
	}
	if tier.Model == "" {
		issues = append(issues, ValidationIssue{field + ".model", "model is required"})
	}
	return issues
}

func validateStage(field string, sc StageConfig) []ValidationIssue {
	var issues []ValidationIssue
	if sc.Temperature < 0 || sc.Temperature > 2 {
		issues = append(issues, ValidationIssue{field + ".temperature", fmt.Sprintf("%.2f out of range [0,2]", sc.Temperature)})
	}
	if sc.MaxTokens <= 0 {
		issues = append(issues, ValidationIssue{field + ".max_tokens", "must be positive"})
	}
	if sc.Retry.MaxAttempts < 1 {
		issues = append(issues, ValidationIssue{field + ".retry.max_attempts", "must be at least 1"})
	}
	if sc.Retry.BackoffFactor < 1 {
		issues = append(issues, ValidationIssue{field + ".retry.backoff_factor", "must be >= 1"})
	}
	if len(sc.Output) == 0 {
		issues = append(issues, ValidationIssue{field + ".output", "at least one output field is required"})
	}
	required := 0
	for i, f := range sc.Output {
		if f.Name == "" || f.Tag == "" {
			issues = append(issues, ValidationIssue{fmt.Sprintf("%s.output[%d]", field, i), "name and tag are both required"})
		}
		if f.Required {
			required++
		}
	}
	if len(sc.Output) > 0 && required == 0 {
		issues = append(issues, ValidationIssue{field + ".output", "at least one field must be required"})
	}
	return issues
}
