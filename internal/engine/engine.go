package engine

import (
	"github.com/tercet-ai/tercet/internal/config"
	"github.com/tercet-ai/tercet/internal/core"
	"github.com/tercet-ai/tercet/internal/logging"
	"github.com/tercet-ai/tercet/internal/parse"
	"github.com/tercet-ai/tercet/internal/pricing"
	"github.com/tercet-ai/tercet/internal/prompt"
	"github.com/tercet-ai/tercet/internal/provider"
)

// New assembles a ready-to-run orchestrator from configuration:
// provider factory, prompt renderer, parser registry built from the
// configured output specs, pricing table, executor and mode table.
func New(cfg *config.Config, observer core.ProgressObserver, logger *logging.Logger) (*Orchestrator, error) {
	selector, err := NewModeSelector(cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := prompt.NewRenderer()
	if err != nil {
		return nil, err
	}

	registry := parse.NewRegistry()
	for _, stage := range core.AllStages() {
		// Output specs are per stage and identical across modes; any
		// mode's entry carries them.
		step, err := selector.Select(core.ModeFast, stage)
		if err != nil {
			return nil, err
		}
		registry.RegisterSpec(stage, step.Output)
	}

	executor := NewStepExecutor(
		provider.NewFactory(cfg.Providers),
		renderer,
		registry,
		pricing.NewTable(cfg.Pricing),
		logger,
	)

	return NewOrchestrator(selector, executor, observer, logger), nil
}
