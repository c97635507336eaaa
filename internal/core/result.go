package core

import (
	"fmt"
	"time"
)

// WorkflowID uniquely identifies a workflow run.
type WorkflowID string

// WorkflowStatus represents the terminal state of a workflow run.
type WorkflowStatus string

const (
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusSucceeded WorkflowStatus = "succeeded"
	WorkflowStatusFailed    WorkflowStatus = "failed"
)

// StepResult is the outcome of one completed stage. It only exists if
// every required output field was present after parsing, and is
// immutable once constructed.
type StepResult struct {
	Stage            Stage             `json:"stage"`
	Fields           map[string]string `json:"fields"`
	RawResponse      string            `json:"raw_response"`
	Provider         string            `json:"provider"`
	Model            string            `json:"model"`
	PromptTokens     int               `json:"prompt_tokens"`
	CompletionTokens int               `json:"completion_tokens"`
	Cost             float64           `json:"cost"`
	Duration         time.Duration     `json:"duration"`
	CompletedAt      time.Time         `json:"completed_at"`
	Attempts         int               `json:"attempts"`
}

// TotalTokens returns prompt plus completion tokens for the stage.
func (r *StepResult) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// Field returns a parsed field value, empty string if absent.
func (r *StepResult) Field(name string) string {
	return r.Fields[name]
}

// WorkflowResult aggregates a full run. The orchestrator owns it while
// the run is in flight; once finalized it belongs to the caller.
type WorkflowResult struct {
	ID      WorkflowID         `json:"id"`
	Request TranslationRequest `json:"request"`
	Mode    WorkflowMode       `json:"mode"`
	Status  WorkflowStatus     `json:"status"`
	Steps   []StepResult       `json:"steps"`

	TotalPromptTokens     int           `json:"total_prompt_tokens"`
	TotalCompletionTokens int           `json:"total_completion_tokens"`
	TotalCost             float64       `json:"total_cost"`
	TotalDuration         time.Duration `json:"total_duration"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	Error       string    `json:"error,omitempty"`
	FailedStage Stage     `json:"failed_stage,omitempty"`
	Attempts    int       `json:"failed_stage_attempts,omitempty"`

	finalized bool
}

// NewWorkflowResult creates a running workflow result.
func NewWorkflowResult(id WorkflowID, req TranslationRequest, mode WorkflowMode) *WorkflowResult {
	return &WorkflowResult{
		ID:        id,
		Request:   req,
		Mode:      mode,
		Status:    WorkflowStatusRunning,
		Steps:     make([]StepResult, 0, len(AllStages())),
		StartedAt: time.Now(),
	}
}

// AddStep appends a completed stage result. Steps must arrive in
// pipeline order; anything else is a programming error.
func (w *WorkflowResult) AddStep(step StepResult) error {
	if w.finalized {
		return fmt.Errorf("workflow %s already finalized", w.ID)
	}
	if got, want := StageOrder(step.Stage), len(w.Steps); got != want {
		return fmt.Errorf("stage %s out of order: position %d, expected %d", step.Stage, got, want)
	}
	w.Steps = append(w.Steps, step)
	return nil
}

// Step returns the result for a stage, if completed.
func (w *WorkflowResult) Step(stage Stage) (*StepResult, bool) {
	for i := range w.Steps {
		if w.Steps[i].Stage == stage {
			return &w.Steps[i], true
		}
	}
	return nil, false
}

// FinalTranslation returns the revision stage's translation field,
// empty until the run succeeded.
func (w *WorkflowResult) FinalTranslation() string {
	if step, ok := w.Step(StageRevision); ok {
		return step.Field(FieldTranslation)
	}
	return ""
}

// TotalTokens returns the summed token count across completed stages.
func (w *WorkflowResult) TotalTokens() int {
	return w.TotalPromptTokens + w.TotalCompletionTokens
}

// Finalize marks the run succeeded and computes totals exactly once.
// Totals are always the arithmetic sum over Steps, never estimated.
func (w *WorkflowResult) Finalize() error {
	if w.finalized {
		return fmt.Errorf("workflow %s already finalized", w.ID)
	}
	if len(w.Steps) != len(AllStages()) {
		return fmt.Errorf("workflow %s: cannot finalize with %d of %d stages", w.ID, len(w.Steps), len(AllStages()))
	}
	w.sumTotals()
	w.Status = WorkflowStatusSucceeded
	w.CompletedAt = time.Now()
	w.finalized = true
	return nil
}

// Fail marks the run failed, preserving every completed step and the
// partial totals accumulated so far.
func (w *WorkflowResult) Fail(stage Stage, attempts int, err error) {
	if w.finalized {
		return
	}
	w.sumTotals()
	w.Status = WorkflowStatusFailed
	w.FailedStage = stage
	w.Attempts = attempts
	if err != nil {
		w.Error = err.Error()
	}
	w.CompletedAt = time.Now()
	w.finalized = true
}

// IsTerminal returns true once the run reached a final status.
func (w *WorkflowResult) IsTerminal() bool {
	return w.finalized
}

func (w *WorkflowResult) sumTotals() {
	w.TotalPromptTokens = 0
	w.TotalCompletionTokens = 0
	w.TotalCost = 0
	w.TotalDuration = 0
	for i := range w.Steps {
		w.TotalPromptTokens += w.Steps[i].PromptTokens
		w.TotalCompletionTokens += w.Steps[i].CompletionTokens
		w.TotalCost += w.Steps[i].Cost
		w.TotalDuration += w.Steps[i].Duration
	}
}

// Well-known output field names shared by stage templates and parsers.
const (
	FieldTranslation = "translation"
	FieldNotes       = "notes"
	FieldSuggestions = "suggestions"
	FieldContent     = "content"
)
