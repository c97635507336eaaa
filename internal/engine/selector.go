package engine

import (
	"github.com/tercet-ai/tercet/internal/config"
	"github.com/tercet-ai/tercet/internal/core"
)

// ModeSelector maps a workflow mode and stage to the StepConfig to run
// with. The table is assembled once from configuration; selection
// itself is a pure lookup with no I/O.
type ModeSelector struct {
	table map[core.WorkflowMode]map[core.Stage]core.StepConfig
}

// NewModeSelector builds the full mode/stage table from configuration.
func NewModeSelector(cfg *config.Config) (*ModeSelector, error) {
	table := make(map[core.WorkflowMode]map[core.Stage]core.StepConfig, len(core.AllModes()))
	for _, mode := range core.AllModes() {
		stages := make(map[core.Stage]core.StepConfig, len(core.AllStages()))
		for _, stage := range core.AllStages() {
			step, err := cfg.StepConfig(stage, tierFor(cfg, mode, stage))
			if err != nil {
				return nil, err
			}
			stages[stage] = step
		}
		table[mode] = stages
	}
	return &ModeSelector{table: table}, nil
}

// tierFor applies the mode policy: reasoning everywhere, fast
// everywhere, or hybrid with the reasoning model on critique only.
func tierFor(cfg *config.Config, mode core.WorkflowMode, stage core.Stage) config.ModelRef {
	switch mode {
	case core.ModeReasoning:
		return cfg.Tiers.Reasoning
	case core.ModeFast:
		return cfg.Tiers.Fast
	default: // hybrid
		if stage == core.StageCritique {
			return cfg.Tiers.Reasoning
		}
		return cfg.Tiers.Fast
	}
}

// Select returns the StepConfig for a mode and stage.
func (s *ModeSelector) Select(mode core.WorkflowMode, stage core.Stage) (core.StepConfig, error) {
	stages, ok := s.table[mode]
	if !ok {
		return core.StepConfig{}, core.ErrConfig(core.CodeInvalidMode, "unknown workflow mode: "+mode.String())
	}
	step, ok := stages[stage]
	if !ok {
		return core.StepConfig{}, core.ErrConfig(core.CodeUnknownStage, "unknown stage: "+stage.String())
	}
	return step, nil
}

// StageConfigs returns the per-stage configs for a mode in pipeline order.
func (s *ModeSelector) StageConfigs(mode core.WorkflowMode) ([]core.StepConfig, error) {
	configs := make([]core.StepConfig, 0, len(core.AllStages()))
	for _, stage := range core.AllStages() {
		step, err := s.Select(mode, stage)
		if err != nil {
			return nil, err
		}
		configs = append(configs, step)
	}
	return configs, nil
}
