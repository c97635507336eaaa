package core

import "fmt"

// WorkflowMode names an assignment of model capability tiers to stages.
type WorkflowMode string

const (
	// ModeReasoning uses the higher-capability model for every stage.
	ModeReasoning WorkflowMode = "reasoning"

	// ModeFast uses the faster/cheaper model for every stage.
	ModeFast WorkflowMode = "fast"

	// ModeHybrid uses the higher-capability model only for critique and
	// the faster model for draft and revision.
	ModeHybrid WorkflowMode = "hybrid"
)

// AllModes returns the supported workflow modes.
func AllModes() []WorkflowMode {
	return []WorkflowMode{ModeReasoning, ModeFast, ModeHybrid}
}

// ValidMode checks if a mode string is supported.
func ValidMode(m WorkflowMode) bool {
	switch m {
	case ModeReasoning, ModeFast, ModeHybrid:
		return true
	default:
		return false
	}
}

// ParseMode converts a string to a WorkflowMode with validation.
func ParseMode(s string) (WorkflowMode, error) {
	m := WorkflowMode(s)
	if !ValidMode(m) {
		return "", ErrConfig(CodeInvalidMode, fmt.Sprintf("invalid workflow mode: %s", s))
	}
	return m, nil
}

// String returns the string representation of the mode.
func (m WorkflowMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m WorkflowMode) Description() string {
	switch m {
	case ModeReasoning:
		return "Reasoning model for all three stages (highest quality, highest cost)"
	case ModeFast:
		return "Fast model for all three stages (lowest latency and cost)"
	case ModeHybrid:
		return "Fast model for draft and revision, reasoning model for critique"
	default:
		return "Unknown mode"
	}
}
