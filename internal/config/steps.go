package config

import (
	"fmt"
	"time"

	"github.com/tercet-ai/tercet/internal/core"
)

// StageConfigFor returns the raw stage section for a stage.
func (c *Config) StageConfigFor(stage core.Stage) (StageConfig, error) {
	switch stage {
	case core.StageDraft:
		return c.Stages.Draft, nil
	case core.StageCritique:
		return c.Stages.Critique, nil
	case core.StageRevision:
		return c.Stages.Revision, nil
	default:
		return StageConfig{}, core.ErrConfig(core.CodeUnknownStage, fmt.Sprintf("unknown stage: %s", stage))
	}
}

// StepConfig assembles the immutable per-run configuration for one
// stage bound to a capability tier's provider/model.
func (c *Config) StepConfig(stage core.Stage, tier ModelRef) (core.StepConfig, error) {
	sc, err := c.StageConfigFor(stage)
	if err != nil {
		return core.StepConfig{}, err
	}

	if _, ok := c.Providers[tier.Provider]; !ok {
		return core.StepConfig{}, core.ErrNotFound("provider", tier.Provider)
	}

	timeout, err := time.ParseDuration(sc.Timeout)
	if err != nil {
		return core.StepConfig{}, core.ErrConfig(core.CodeInvalidConfig,
			fmt.Sprintf("stage %s: invalid timeout %q", stage, sc.Timeout)).WithCause(err)
	}
	baseDelay, err := time.ParseDuration(sc.Retry.BaseDelay)
	if err != nil {
		return core.StepConfig{}, core.ErrConfig(core.CodeInvalidConfig,
			fmt.Sprintf("stage %s: invalid retry base_delay %q", stage, sc.Retry.BaseDelay)).WithCause(err)
	}
	maxDelay, err := time.ParseDuration(sc.Retry.MaxDelay)
	if err != nil {
		return core.StepConfig{}, core.ErrConfig(core.CodeInvalidConfig,
			fmt.Sprintf("stage %s: invalid retry max_delay %q", stage, sc.Retry.MaxDelay)).WithCause(err)
	}

	fields := make([]core.FieldSpec, 0, len(sc.Output))
	for _, f := range sc.Output {
		fields = append(fields, core.FieldSpec{Name: f.Name, Tag: f.Tag, Required: f.Required})
	}

	step := core.StepConfig{
		Stage:       stage,
		Provider:    tier.Provider,
		Model:       tier.Model,
		Temperature: sc.Temperature,
		MaxTokens:   sc.MaxTokens,
		Timeout:     timeout,
		Template:    sc.Template,
		Retry: core.RetrySpec{
			MaxAttempts:   sc.Retry.MaxAttempts,
			BaseDelay:     baseDelay,
			BackoffFactor: sc.Retry.BackoffFactor,
			MaxDelay:      maxDelay,
		},
		Output:        core.OutputSpec{Fields: fields},
		ReformatRetry: sc.ReformatRetry,
	}

	if err := step.Validate(); err != nil {
		return core.StepConfig{}, err
	}
	return step, nil
}
