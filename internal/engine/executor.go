package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tercet-ai/tercet/internal/core"
	"github.com/tercet-ai/tercet/internal/logging"
	"github.com/tercet-ai/tercet/internal/parse"
)

// StepExecutor runs one pipeline stage end-to-end: validate input,
// render the prompt, call the provider with retry, parse the response
// and assemble a metered StepResult.
type StepExecutor struct {
	resolver core.ProviderResolver
	renderer core.PromptRenderer
	parsers  *parse.Registry
	pricer   core.Pricer
	logger   *logging.Logger
}

// NewStepExecutor creates a step executor.
func NewStepExecutor(resolver core.ProviderResolver, renderer core.PromptRenderer, parsers *parse.Registry, pricer core.Pricer, logger *logging.Logger) *StepExecutor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StepExecutor{
		resolver: resolver,
		renderer: renderer,
		parsers:  parsers,
		pricer:   pricer,
		logger:   logger,
	}
}

// stageInputs names the template variables each stage cannot render
// without. Checked before any network call.
var stageInputs = map[core.Stage][]string{
	core.StageDraft:    {"text", "source_lang", "target_lang"},
	core.StageCritique: {"text", "source_lang", "target_lang", "draft_translation"},
	core.StageRevision: {"text", "source_lang", "target_lang", "draft_translation", "critique_suggestions"},
}

// Execute runs one stage. On failure it returns a *core.StepError
// carrying the stage, the attempts consumed and the last cause.
func (e *StepExecutor) Execute(ctx context.Context, cfg core.StepConfig, input map[string]string) (*core.StepResult, error) {
	log := e.logger.WithStage(cfg.Stage.String()).WithProvider(cfg.Provider)
	start := time.Now()

	fail := func(attempts int, err error) (*core.StepResult, error) {
		return nil, &core.StepError{Stage: cfg.Stage, Attempts: attempts, Cause: err}
	}

	// 1. Cheap input validation before anything touches the network.
	if err := validateInput(cfg.Stage, input); err != nil {
		return fail(0, err)
	}

	// 2. Render the stage prompt. The format instructions are derived
	// from the configured output spec so the tag contract lives in one
	// place.
	vars := make(map[string]string, len(input)+1)
	for k, v := range input {
		vars[k] = v
	}
	vars["format_instructions"] = formatInstructions(cfg.Output)

	system, user, err := e.renderer.Render(cfg.Template, vars)
	if err != nil {
		return fail(0, err)
	}

	// 3. Resolve the provider client.
	client, err := e.resolver.Resolve(cfg.Provider)
	if err != nil {
		return fail(0, err)
	}

	// 4. Call with retry.
	params := core.CallParams{
		Model:        cfg.Model,
		SystemPrompt: system,
		UserPrompt:   user,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Timeout:      cfg.Timeout,
	}

	var result *core.CallResult
	policy := PolicyFromSpec(cfg.Retry)
	attempts, err := policy.Execute(ctx, func(ctx context.Context) error {
		callResult, callErr := client.Call(ctx, params)
		if callErr != nil {
			log.Warn("provider call failed", "model", cfg.Model, "error", callErr)
			return callErr
		}
		result = callResult
		return nil
	})
	if err != nil {
		return fail(attempts, err)
	}

	promptTokens := result.PromptTokens
	completionTokens := result.CompletionTokens

	// 5. Parse and verify required fields.
	parser := e.parsers.Get(cfg.Stage)
	fields, err := parser(result.Text)
	if err == nil {
		err = checkRequired(cfg.Output, fields)
	}
	if err != nil && cfg.ReformatRetry && core.IsCategory(err, core.ErrCatParse) {
		// One re-prompt asking the model to re-emit inside the tags.
		log.Warn("response failed extraction, requesting reformat", "error", err)
		reformatted, reErr := client.Call(ctx, reformatParams(params, cfg.Output, result.Text))
		attempts++
		if reErr != nil {
			return fail(attempts, reErr)
		}
		promptTokens += reformatted.PromptTokens
		completionTokens += reformatted.CompletionTokens
		result = reformatted
		fields, err = parser(result.Text)
		if err == nil {
			err = checkRequired(cfg.Output, fields)
		}
	}
	if err != nil {
		return fail(attempts, err)
	}

	// 6. Assemble the metered result.
	step := &core.StepResult{
		Stage:            cfg.Stage,
		Fields:           fields,
		RawResponse:      result.Text,
		Provider:         cfg.Provider,
		Model:            cfg.Model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Cost:             e.pricer.Cost(cfg.Provider, cfg.Model, promptTokens, completionTokens),
		Duration:         time.Since(start),
		CompletedAt:      time.Now(),
		Attempts:         attempts,
	}

	log.Info("stage completed",
		"model", cfg.Model,
		"attempts", step.Attempts,
		"prompt_tokens", step.PromptTokens,
		"completion_tokens", step.CompletionTokens,
		"cost", step.Cost,
		"duration", step.Duration)

	return step, nil
}

func validateInput(stage core.Stage, input map[string]string) error {
	if len(input) == 0 {
		return core.ErrConfig(core.CodeMissingInput, fmt.Sprintf("stage %s: input map is empty", stage))
	}
	for _, key := range stageInputs[stage] {
		if strings.TrimSpace(input[key]) == "" {
			return core.ErrConfig(core.CodeMissingInput, fmt.Sprintf("stage %s: missing input %q", stage, key))
		}
	}
	return nil
}

// checkRequired verifies every required output field survived parsing.
// The tag extractor enforces this itself; custom registered parsers get
// the same guarantee here.
func checkRequired(spec core.OutputSpec, fields map[string]string) error {
	for _, name := range spec.RequiredFields() {
		if strings.TrimSpace(fields[name]) == "" {
			return core.ErrParse(core.CodeMissingField, fmt.Sprintf("required field %q missing from parsed output", name))
		}
	}
	return nil
}

// formatInstructions turns an output spec into the prompt fragment
// telling the model which tags to emit.
func formatInstructions(spec core.OutputSpec) string {
	var b strings.Builder
	b.WriteString("Format your reply with tagged sections:\n")
	for _, f := range spec.Fields {
		if f.Required {
			fmt.Fprintf(&b, "- The %s must appear inside <%s>...</%s> tags.\n", f.Name, f.Tag, f.Tag)
		} else {
			fmt.Fprintf(&b, "- Any %s may appear inside <%s>...</%s> tags.\n", f.Name, f.Tag, f.Tag)
		}
	}
	b.WriteString("Emit nothing outside the tagged sections.")
	return b.String()
}

// reformatParams builds the single re-prompt call for a response that
// could not be parsed.
func reformatParams(params core.CallParams, spec core.OutputSpec, previous string) core.CallParams {
	var b strings.Builder
	b.WriteString("Your previous reply could not be parsed.\n\n")
	b.WriteString(formatInstructions(spec))
	b.WriteString("\n\nRe-emit the reply below inside the expected tags, changing nothing else:\n\n")
	b.WriteString(previous)

	params.UserPrompt = b.String()
	return params
}
