package core

import (
	"context"
	"time"
)

// CallParams carries everything a provider needs for one generation call.
type CallParams struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// CallResult is the outcome of a single successful provider call.
type CallResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Provider is the uniform contract to a remote chat-style completion
// endpoint. Implementations perform exactly one network attempt per
// Call and never retry internally; retry policy lives in the executor.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the provider identifier ("openai", "anthropic", ...).
	Name() string

	// Call issues one generation request. The per-call timeout in params
	// bounds this attempt only and is independent of ctx cancellation.
	Call(ctx context.Context, params CallParams) (*CallResult, error)
}

// ProviderResolver resolves a provider name to a client instance.
// Repeated resolution of the same name returns the same instance so
// connection pools are reused.
type ProviderResolver interface {
	Resolve(name string) (Provider, error)
}

// PromptRenderer renders a stage template against a variable map into a
// system prompt and a user prompt. The engine treats it as opaque.
type PromptRenderer interface {
	Render(template string, vars map[string]string) (system, user string, err error)
}

// StageParser extracts named fields from a stage's free-text response.
type StageParser func(text string) (map[string]string, error)

// Pricer computes the monetary cost of a call from its token counts.
type Pricer interface {
	Cost(provider, model string, promptTokens, completionTokens int) float64
}

// ProgressObserver receives ordered progress notifications from a run.
// Notifications are advisory only and must never affect control flow.
type ProgressObserver interface {
	StageStarted(id WorkflowID, stage Stage)
	StageCompleted(id WorkflowID, step StepResult)
	WorkflowCompleted(result *WorkflowResult)
	WorkflowFailed(result *WorkflowResult, err error)
}

// NopObserver is a ProgressObserver that ignores everything.
type NopObserver struct{}

func (NopObserver) StageStarted(WorkflowID, Stage)        {}
func (NopObserver) StageCompleted(WorkflowID, StepResult) {}
func (NopObserver) WorkflowCompleted(*WorkflowResult)     {}
func (NopObserver) WorkflowFailed(*WorkflowResult, error) {}
