// Package engine orchestrates the three-stage translation pipeline:
// per-stage model selection, bounded retry against provider clients,
// structured output extraction and metric aggregation.
package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/tercet-ai/tercet/internal/core"
	"github.com/tercet-ai/tercet/internal/logging"
)

// Orchestrator sequences the pipeline stages, feeds each stage's parsed
// output into the next stage's rendering context and owns the
// WorkflowResult while the run is in flight.
type Orchestrator struct {
	selector *ModeSelector
	executor *StepExecutor
	observer core.ProgressObserver
	logger   *logging.Logger
}

// NewOrchestrator creates an orchestrator. A nil observer is replaced
// with a no-op; observers never affect control flow.
func NewOrchestrator(selector *ModeSelector, executor *StepExecutor, observer core.ProgressObserver, logger *logging.Logger) *Orchestrator {
	if observer == nil {
		observer = core.NopObserver{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		selector: selector,
		executor: executor,
		observer: observer,
		logger:   logger,
	}
}

// Execute runs the full pipeline for one request. On failure the
// returned WorkflowResult preserves every completed StepResult and
// carries the failed stage, its error category and the attempts made;
// the error is returned alongside it.
func (o *Orchestrator) Execute(ctx context.Context, req core.TranslationRequest, mode core.WorkflowMode) (*core.WorkflowResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !core.ValidMode(mode) {
		return nil, core.ErrConfig(core.CodeInvalidMode, "invalid workflow mode: "+mode.String())
	}

	// Resolve all stage configs up front so a broken config fails the
	// run before the first provider call.
	configs, err := o.selector.StageConfigs(mode)
	if err != nil {
		return nil, err
	}

	id := core.WorkflowID(uuid.NewString())
	result := core.NewWorkflowResult(id, req, mode)
	log := o.logger.WithWorkflow(string(id))
	log.Info("workflow started", "mode", mode, "source", req.SourceLang, "target", req.TargetLang)

	input := baseInput(req)

	for _, cfg := range configs {
		if err := ctx.Err(); err != nil {
			return o.fail(result, &core.StepError{Stage: cfg.Stage, Cause: err}, log)
		}

		o.observer.StageStarted(id, cfg.Stage)
		log.Info("stage started", "stage", cfg.Stage, "provider", cfg.Provider, "model", cfg.Model)

		step, err := o.executor.Execute(ctx, cfg, input)
		if err != nil {
			return o.fail(result, err, log)
		}

		if err := result.AddStep(*step); err != nil {
			return o.fail(result, &core.StepError{Stage: cfg.Stage, Attempts: step.Attempts, Cause: err}, log)
		}
		o.observer.StageCompleted(id, *step)

		// The next stage renders with everything this stage parsed.
		mergeStageFields(input, cfg.Stage, step.Fields)
	}

	if err := result.Finalize(); err != nil {
		return result, err
	}
	log.Info("workflow completed",
		"total_tokens", result.TotalTokens(),
		"total_cost", result.TotalCost,
		"total_duration", result.TotalDuration)
	o.observer.WorkflowCompleted(result)
	return result, nil
}

func (o *Orchestrator) fail(result *core.WorkflowResult, err error, log *logging.Logger) (*core.WorkflowResult, error) {
	stage := core.Stage("")
	attempts := 0
	if se, ok := core.AsStepError(err); ok {
		stage = se.Stage
		attempts = se.Attempts
	}
	result.Fail(stage, attempts, err)
	log.Error("workflow failed",
		"stage", stage,
		"category", core.GetCategory(err),
		"attempts", attempts,
		"completed_stages", len(result.Steps),
		"error", err)
	o.observer.WorkflowFailed(result, err)
	return result, err
}

// baseInput seeds the rendering context from the request. Every
// variable any stage template can reference is present from the start,
// so optional sections render as absent instead of failing.
func baseInput(req core.TranslationRequest) map[string]string {
	input := map[string]string{
		"text":                 req.Text,
		"source_lang":          req.SourceLang,
		"target_lang":          req.TargetLang,
		"author":               "",
		"title":                "",
		"draft_translation":    "",
		"draft_notes":          "",
		"critique_suggestions": "",
		"critique_notes":       "",
		"revision_translation": "",
		"revision_notes":       "",
	}
	for k, v := range req.Metadata {
		input[k] = v
	}
	return input
}

// mergeStageFields exposes a completed stage's parsed fields to later
// stages as <stage>_<field> template variables.
func mergeStageFields(input map[string]string, stage core.Stage, fields map[string]string) {
	for name, value := range fields {
		input[stage.String()+"_"+name] = value
	}
}
