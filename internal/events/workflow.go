package events

import (
	"time"

	"github.com/tercet-ai/tercet/internal/core"
)

// Event type constants.
const (
	TypeStageStarted      = "stage_started"
	TypeStageCompleted    = "stage_completed"
	TypeWorkflowCompleted = "workflow_completed"
	TypeWorkflowFailed    = "workflow_failed"
)

// StageStartedEvent is emitted when a pipeline stage begins.
type StageStartedEvent struct {
	BaseEvent
	Stage string `json:"stage"`
}

// NewStageStartedEvent creates a new stage started event.
func NewStageStartedEvent(workflowID string, stage core.Stage) StageStartedEvent {
	return StageStartedEvent{
		BaseEvent: NewBaseEvent(TypeStageStarted, workflowID),
		Stage:     stage.String(),
	}
}

// StageCompletedEvent is emitted when a stage finishes, carrying its metrics.
type StageCompletedEvent struct {
	BaseEvent
	Stage            string        `json:"stage"`
	Provider         string        `json:"provider"`
	Model            string        `json:"model"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	Cost             float64       `json:"cost"`
	Duration         time.Duration `json:"duration"`
	Attempts         int           `json:"attempts"`
}

// NewStageCompletedEvent creates a new stage completed event.
func NewStageCompletedEvent(workflowID string, step core.StepResult) StageCompletedEvent {
	return StageCompletedEvent{
		BaseEvent:        NewBaseEvent(TypeStageCompleted, workflowID),
		Stage:            step.Stage.String(),
		Provider:         step.Provider,
		Model:            step.Model,
		PromptTokens:     step.PromptTokens,
		CompletionTokens: step.CompletionTokens,
		Cost:             step.Cost,
		Duration:         step.Duration,
		Attempts:         step.Attempts,
	}
}

// WorkflowCompletedEvent is emitted when a run succeeds.
type WorkflowCompletedEvent struct {
	BaseEvent
	Mode          string        `json:"mode"`
	TotalTokens   int           `json:"total_tokens"`
	TotalCost     float64       `json:"total_cost"`
	TotalDuration time.Duration `json:"total_duration"`
}

// NewWorkflowCompletedEvent creates a new workflow completed event.
func NewWorkflowCompletedEvent(result *core.WorkflowResult) WorkflowCompletedEvent {
	return WorkflowCompletedEvent{
		BaseEvent:     NewBaseEvent(TypeWorkflowCompleted, string(result.ID)),
		Mode:          result.Mode.String(),
		TotalTokens:   result.TotalTokens(),
		TotalCost:     result.TotalCost,
		TotalDuration: result.TotalDuration,
	}
}

// WorkflowFailedEvent is emitted when a run fails, with the stage and
// error taxonomy kind of the terminal failure.
type WorkflowFailedEvent struct {
	BaseEvent
	Stage     string `json:"stage"`
	Category  string `json:"category"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error"`
	Completed int    `json:"completed_stages"`
}

// NewWorkflowFailedEvent creates a new workflow failed event.
func NewWorkflowFailedEvent(result *core.WorkflowResult, err error) WorkflowFailedEvent {
	return WorkflowFailedEvent{
		BaseEvent: NewBaseEvent(TypeWorkflowFailed, string(result.ID)),
		Stage:     result.FailedStage.String(),
		Category:  string(core.GetCategory(err)),
		Attempts:  result.Attempts,
		Error:     result.Error,
		Completed: len(result.Steps),
	}
}
