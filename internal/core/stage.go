package core

import "fmt"

// Stage represents one step of the translation pipeline.
type Stage string

const (
	// StageDraft is the first stage producing the initial translation.
	StageDraft Stage = "draft"

	// StageCritique is the second stage where the draft is reviewed.
	// The model returns notes and concrete suggestions, not a new translation.
	StageCritique Stage = "critique"

	// StageRevision is the final stage producing the polished translation
	// from the draft and the critique.
	StageRevision Stage = "revision"
)

// AllStages returns the stages in execution order.
func AllStages() []Stage {
	return []Stage{StageDraft, StageCritique, StageRevision}
}

// StageOrder returns the numeric order of a stage (0-indexed), -1 if unknown.
func StageOrder(s Stage) int {
	switch s {
	case StageDraft:
		return 0
	case StageCritique:
		return 1
	case StageRevision:
		return 2
	default:
		return -1
	}
}

// NextStage returns the stage following the given stage.
// Returns empty string after the last stage.
func NextStage(s Stage) Stage {
	switch s {
	case StageDraft:
		return StageCritique
	case StageCritique:
		return StageRevision
	default:
		return ""
	}
}

// ValidStage checks if a stage string is valid.
func ValidStage(s Stage) bool {
	return StageOrder(s) >= 0
}

// ParseStage converts a string to a Stage with validation.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if !ValidStage(st) {
		return "", fmt.Errorf("invalid stage: %s", s)
	}
	return st, nil
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// Description returns a human-readable description of the stage.
func (s Stage) Description() string {
	switch s {
	case StageDraft:
		return "Produce a faithful first translation of the source text"
	case StageCritique:
		return "Review the draft and collect concrete improvement suggestions"
	case StageRevision:
		return "Rework the draft into a polished literary translation"
	default:
		return "Unknown stage"
	}
}
