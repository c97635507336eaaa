package core

import (
	"fmt"
	"time"
)

// StepConfig is the per-stage, per-mode configuration the executor runs
// with. It is assembled once at workflow construction and immutable for
// the run.
type StepConfig struct {
	Stage       Stage
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Template    string
	Retry       RetrySpec
	Output      OutputSpec

	// ReformatRetry enables a single re-prompt when a successful response
	// fails tag extraction, asking the model to re-emit its answer inside
	// the expected tags. Off by default.
	ReformatRetry bool
}

// RetrySpec bounds the executor's retry loop for one stage.
type RetrySpec struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
}

// OutputSpec documents the tag-delimited contract between a stage's
// prompt and its response. The parser is built from this, never from
// stage-specific code.
type OutputSpec struct {
	Fields []FieldSpec
}

// FieldSpec describes one tagged section of a stage response.
// A field named "translation" with tag "TRANSLATION" is expected as
// <TRANSLATION>...</TRANSLATION> in the model output.
type FieldSpec struct {
	Name     string
	Tag      string
	Required bool
}

// RequiredFields returns the names of all required fields.
func (o OutputSpec) RequiredFields() []string {
	var req []string
	for _, f := range o.Fields {
		if f.Required {
			req = append(req, f.Name)
		}
	}
	return req
}

// Field looks up a field spec by name.
func (o OutputSpec) Field(name string) (FieldSpec, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks the step configuration invariants.
func (c StepConfig) Validate() error {
	if !ValidStage(c.Stage) {
		return ErrConfig(CodeUnknownStage, fmt.Sprintf("unknown stage: %s", c.Stage))
	}
	if c.Provider == "" {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: provider is required", c.Stage))
	}
	if c.Model == "" {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: model is required", c.Stage))
	}
	if c.Template == "" {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: prompt template is required", c.Stage))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: temperature %.2f out of range [0,2]", c.Stage, c.Temperature))
	}
	if c.MaxTokens <= 0 {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: max_tokens must be positive", c.Stage))
	}
	if c.Timeout <= 0 {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: timeout must be positive", c.Stage))
	}
	if c.Retry.MaxAttempts < 1 {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: retry max_attempts must be at least 1", c.Stage))
	}
	if c.Retry.BackoffFactor < 1 {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: retry backoff_factor must be >= 1", c.Stage))
	}
	if len(c.Output.Fields) == 0 {
		return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: output spec has no fields", c.Stage))
	}
	seen := make(map[string]bool, len(c.Output.Fields))
	for _, f := range c.Output.Fields {
		if f.Name == "" || f.Tag == "" {
			return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: output field needs both name and tag", c.Stage))
		}
		if seen[f.Name] {
			return ErrConfig(CodeInvalidConfig, fmt.Sprintf("stage %s: duplicate output field %s", c.Stage, f.Name))
		}
		seen[f.Name] = true
	}
	return nil
}
