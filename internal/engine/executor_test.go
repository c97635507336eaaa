package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tercet-ai/tercet/internal/core"
)

func draftStep() core.StepConfig {
	return core.StepConfig{
		Stage:       core.StageDraft,
		Provider:    "openai",
		Model:       "mini",
		Temperature: 0.5,
		MaxTokens:   1024,
		Timeout:     5 * time.Second,
		Template:    "draft",
		Retry: core.RetrySpec{
			MaxAttempts:   3,
			BaseDelay:     time.Millisecond,
			BackoffFactor: 2.0,
			MaxDelay:      5 * time.Millisecond,
		},
		Output: core.OutputSpec{Fields: []core.FieldSpec{
			{Name: "translation", Tag: "TRANSLATION", Required: true},
			{Name: "notes", Tag: "NOTES"},
		}},
	}
}

func draftInput() map[string]string {
	return map[string]string{
		"text":        "the fog comes",
		"source_lang": "English",
		"target_lang": "French",
	}
}

func newTestExecutor(provider core.Provider, renderer core.PromptRenderer) *StepExecutor {
	return NewStepExecutor(
		stubResolver{"openai": provider},
		renderer,
		testRegistry(),
		flatPricer{perCall: 0.5},
		nil,
	)
}

func TestStepExecutor_Success(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		responses: map[string]string{
			"draft": "<TRANSLATION>le brouillard vient</TRANSLATION>\n<NOTES>literal</NOTES>",
		},
	}
	renderer := newStubRenderer()
	exec := newTestExecutor(provider, renderer)

	step, err := exec.Execute(context.Background(), draftStep(), draftInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Stage != core.StageDraft {
		t.Fatalf("unexpected stage %s", step.Stage)
	}
	if step.Fields["translation"] != "le brouillard vient" || step.Fields["notes"] != "literal" {
		t.Fatalf("unexpected fields %v", step.Fields)
	}
	if step.PromptTokens != 100 || step.CompletionTokens != 40 {
		t.Fatalf("unexpected token counts %d/%d", step.PromptTokens, step.CompletionTokens)
	}
	if step.Cost != 0.5 {
		t.Fatalf("expected pricer cost 0.5, got %f", step.Cost)
	}
	if step.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", step.Attempts)
	}
	if step.Provider != "openai" || step.Model != "mini" {
		t.Fatalf("unexpected provenance %s/%s", step.Provider, step.Model)
	}
	if !strings.Contains(step.RawResponse, "<TRANSLATION>") {
		t.Fatalf("raw response must be preserved")
	}

	// The executor derives format instructions from the output spec and
	// exposes them to the template.
	vars := renderer.seen("draft")
	if !strings.Contains(vars["format_instructions"], "<TRANSLATION>") {
		t.Fatalf("format instructions missing tag contract: %q", vars["format_instructions"])
	}
}

func TestStepExecutor_MissingInputFailsBeforeNetwork(t *testing.T) {
	provider := &stubProvider{name: "openai"}
	exec := newTestExecutor(provider, newStubRenderer())

	input := draftInput()
	delete(input, "source_lang")

	_, err := exec.Execute(context.Background(), draftStep(), input)
	if err == nil {
		t.Fatalf("expected error for missing input")
	}

	se, ok := core.AsStepError(err)
	if !ok {
		t.Fatalf("expected StepError, got %v", err)
	}
	if se.Attempts != 0 {
		t.Fatalf("fail-fast must consume no attempts, got %d", se.Attempts)
	}
	if se.Category() != core.ErrCatConfig {
		t.Fatalf("expected config category, got %s", se.Category())
	}
	if provider.callCount() != 0 {
		t.Fatalf("provider must not be called, got %d calls", provider.callCount())
	}
}

func TestStepExecutor_RetriesTransientThenSucceeds(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		responses: map[string]string{
			"draft": "<TRANSLATION>ok</TRANSLATION>",
		},
		fail: func(prompt string, call int) error {
			if call <= 2 {
				return core.ErrTransport("connection reset")
			}
			return nil
		},
	}
	exec := newTestExecutor(provider, newStubRenderer())

	step, err := exec.Execute(context.Background(), draftStep(), draftInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Attempts != 3 {
		t.Fatalf("expected 3 attempts recorded, got %d", step.Attempts)
	}
	if provider.callCount() != 3 {
		t.Fatalf("expected 3 provider calls, got %d", provider.callCount())
	}
}

func TestStepExecutor_ExhaustsRetryBudget(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		fail: func(string, int) error { return core.ErrRateLimit("throttled") },
	}
	exec := newTestExecutor(provider, newStubRenderer())

	_, err := exec.Execute(context.Background(), draftStep(), draftInput())
	se, ok := core.AsStepError(err)
	if !ok {
		t.Fatalf("expected StepError, got %v", err)
	}
	if se.Attempts != 3 {
		t.Fatalf("expected max attempts consumed, got %d", se.Attempts)
	}
	if provider.callCount() != 3 {
		t.Fatalf("expected exactly max provider calls, got %d", provider.callCount())
	}
	if core.GetCategory(err) != core.ErrCatProvider {
		t.Fatalf("expected provider category through the chain, got %s", core.GetCategory(err))
	}
}

func TestStepExecutor_NonRetryableAbortsImmediately(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		fail: func(string, int) error {
			return core.ErrProvider(core.CodeAuthFailed, "invalid key", false)
		},
	}
	exec := newTestExecutor(provider, newStubRenderer())

	_, err := exec.Execute(context.Background(), draftStep(), draftInput())
	se, ok := core.AsStepError(err)
	if !ok {
		t.Fatalf("expected StepError, got %v", err)
	}
	if se.Attempts != 1 || provider.callCount() != 1 {
		t.Fatalf("auth failure must abort after one call: attempts=%d calls=%d",
			se.Attempts, provider.callCount())
	}
}

func TestStepExecutor_ParseFailureIsTerminal(t *testing.T) {
	provider := &stubProvider{
		name: "openai",
		responses: map[string]string{
			"draft": "no tags at all",
		},
	}
	exec := newTestExecutor(provider, newStubRenderer())

	_, err := exec.Execute(context.Background(), draftStep(), draftInput())
	if err == nil {
		t.Fatalf("expected parse failure")
	}
	if core.GetCategory(err) != core.ErrCatParse {
		t.Fatalf("expected parse category, got %s", core.GetCategory(err))
	}
	if provider.callCount() != 1 {
		t.Fatalf("parse failure without reformat retry must not re-call, got %d", provider.callCount())
	}
}

// sequenceProvider answers calls in order regardless of prompt, for the
// reformat path where the second prompt differs from the first.
type sequenceProvider struct {
	mu        sync.Mutex
	responses []string
	n         int
}

func (p *sequenceProvider) Name() string { return "openai" }

func (p *sequenceProvider) Call(ctx context.Context, params core.CallParams) (*core.CallResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.n >= len(p.responses) {
		return nil, core.ErrProvider(core.CodeEmptyResponse, "script exhausted", false)
	}
	text := p.responses[p.n]
	p.n++
	return &core.CallResult{Text: text, PromptTokens: 100, CompletionTokens: 40}, nil
}

func TestStepExecutor_ReformatRetryRecovers(t *testing.T) {
	provider := &sequenceProvider{responses: []string{
		"Here is your translation without any tags.",
		"<TRANSLATION>le brouillard vient</TRANSLATION>",
	}}
	exec := newTestExecutor(provider, newStubRenderer())

	cfg := draftStep()
	cfg.ReformatRetry = true

	step, err := exec.Execute(context.Background(), cfg, draftInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Fields["translation"] != "le brouillard vient" {
		t.Fatalf("unexpected fields %v", step.Fields)
	}
	if step.Attempts != 2 {
		t.Fatalf("reformat call must count as an attempt, got %d", step.Attempts)
	}
	// Both calls are metered.
	if step.PromptTokens != 200 || step.CompletionTokens != 80 {
		t.Fatalf("expected summed tokens 200/80, got %d/%d", step.PromptTokens, step.CompletionTokens)
	}
}

func TestStepExecutor_ReformatRetryStillFailing(t *testing.T) {
	provider := &sequenceProvider{responses: []string{
		"still no tags",
		"and again no tags",
	}}
	exec := newTestExecutor(provider, newStubRenderer())

	cfg := draftStep()
	cfg.ReformatRetry = true

	_, err := exec.Execute(context.Background(), cfg, draftInput())
	if err == nil {
		t.Fatalf("expected failure when reformatted response still unparseable")
	}
	se, ok := core.AsStepError(err)
	if !ok {
		t.Fatalf("expected StepError, got %v", err)
	}
	if se.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", se.Attempts)
	}
	if core.GetCategory(err) != core.ErrCatParse {
		t.Fatalf("expected parse category, got %s", core.GetCategory(err))
	}
}

func TestStepExecutor_UnknownProvider(t *testing.T) {
	exec := NewStepExecutor(stubResolver{}, newStubRenderer(), testRegistry(), flatPricer{}, nil)

	_, err := exec.Execute(context.Background(), draftStep(), draftInput())
	se, ok := core.AsStepError(err)
	if !ok {
		t.Fatalf("expected StepError, got %v", err)
	}
	if se.Attempts != 0 {
		t.Fatalf("resolution failure must consume no attempts, got %d", se.Attempts)
	}
	if core.GetCategory(err) != core.ErrCatConfig {
		t.Fatalf("expected config category, got %s", core.GetCategory(err))
	}
}
