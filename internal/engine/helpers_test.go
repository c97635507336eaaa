package engine

import (
	"context"
	"sync"

	"github.com/tercet-ai/tercet/internal/config"
	"github.com/tercet-ai/tercet/internal/core"
	"github.com/tercet-ai/tercet/internal/parse"
)

// testStages builds a stages section with millisecond retry delays so
// retry-path tests finish quickly.
func testStages() config.StagesConfig {
	stage := func(template string, out []config.FieldConfig) config.StageConfig {
		return config.StageConfig{
			Temperature: 0.5,
			MaxTokens:   1024,
			Timeout:     "5s",
			Template:    template,
			Retry: config.RetryConfig{
				MaxAttempts:   3,
				BaseDelay:     "1ms",
				BackoffFactor: 2.0,
				MaxDelay:      "5ms",
			},
			Output: out,
		}
	}
	return config.StagesConfig{
		Draft: stage("draft", []config.FieldConfig{
			{Name: "translation", Tag: "TRANSLATION", Required: true},
			{Name: "notes", Tag: "NOTES"},
		}),
		Critique: stage("critique", []config.FieldConfig{
			{Name: "suggestions", Tag: "SUGGESTIONS", Required: true},
		}),
		Revision: stage("revision", []config.FieldConfig{
			{Name: "translation", Tag: "TRANSLATION", Required: true},
		}),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Providers: map[string]config.ProviderConfig{
			"openai":    {Kind: "openai", APIKey: "test"},
			"anthropic": {Kind: "anthropic", APIKey: "test"},
		},
		Tiers: config.TiersConfig{
			Reasoning: config.ModelRef{Provider: "anthropic", Model: "sonnet"},
			Fast:      config.ModelRef{Provider: "openai", Model: "mini"},
		},
		Stages: testStages(),
	}
}

// stubProvider scripts responses keyed by the rendered user prompt,
// which the stub renderer sets to the template id.
type stubProvider struct {
	name      string
	responses map[string]string
	fail      func(prompt string, call int) error

	mu     sync.Mutex
	calls  []core.CallParams
	nCalls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Call(ctx context.Context, params core.CallParams) (*core.CallResult, error) {
	p.mu.Lock()
	p.nCalls++
	call := p.nCalls
	p.calls = append(p.calls, params)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.fail != nil {
		if err := p.fail(params.UserPrompt, call); err != nil {
			return nil, err
		}
	}
	return &core.CallResult{
		Text:             p.responses[params.UserPrompt],
		PromptTokens:     100,
		CompletionTokens: 40,
	}, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nCalls
}

func (p *stubProvider) models() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.calls))
	for _, c := range p.calls {
		out = append(out, c.Model)
	}
	return out
}

// stubResolver resolves stub providers by name.
type stubResolver map[string]core.Provider

func (r stubResolver) Resolve(name string) (core.Provider, error) {
	p, ok := r[name]
	if !ok {
		return nil, core.ErrNotFound("provider", name)
	}
	return p, nil
}

// stubRenderer returns the template id as the user prompt and records
// the variables each render saw.
type stubRenderer struct {
	mu   sync.Mutex
	vars map[string]map[string]string
}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{vars: make(map[string]map[string]string)}
}

func (r *stubRenderer) Render(id string, vars map[string]string) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	r.vars[id] = copied
	return "system " + id, id, nil
}

func (r *stubRenderer) seen(id string) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vars[id]
}

// flatPricer charges a fixed amount per call, so summed costs are easy
// to assert.
type flatPricer struct{ perCall float64 }

func (p flatPricer) Cost(provider, model string, promptTokens, completionTokens int) float64 {
	return p.perCall
}

func testRegistry() *parse.Registry {
	r := parse.NewRegistry()
	r.RegisterSpec(core.StageDraft, core.OutputSpec{Fields: []core.FieldSpec{
		{Name: "translation", Tag: "TRANSLATION", Required: true},
		{Name: "notes", Tag: "NOTES"},
	}})
	r.RegisterSpec(core.StageCritique, core.OutputSpec{Fields: []core.FieldSpec{
		{Name: "suggestions", Tag: "SUGGESTIONS", Required: true},
	}})
	r.RegisterSpec(core.StageRevision, core.OutputSpec{Fields: []core.FieldSpec{
		{Name: "translation", Tag: "TRANSLATION", Required: true},
	}})
	return r
}

// recordingObserver captures the observer callback sequence.
type recordingObserver struct {
	mu        sync.Mutex
	events    []string
	completed int
	failed    int
}

func (o *recordingObserver) StageStarted(id core.WorkflowID, stage core.Stage) {
	o.record("started:" + stage.String())
}

func (o *recordingObserver) StageCompleted(id core.WorkflowID, step core.StepResult) {
	o.record("completed:" + step.Stage.String())
}

func (o *recordingObserver) WorkflowCompleted(result *core.WorkflowResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed++
	o.events = append(o.events, "workflow_completed")
}

func (o *recordingObserver) WorkflowFailed(result *core.WorkflowResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed++
	o.events = append(o.events, "workflow_failed")
}

func (o *recordingObserver) record(ev string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) sequence() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}
