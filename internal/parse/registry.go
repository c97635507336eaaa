// Package parse extracts structured fields from free-text model
// responses. The tag grammar comes from each stage's OutputSpec; the
// registry dispatches by stage name so shared logic never branches on
// stages, and new stages register an extractor instead of editing the
// executor.
package parse

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tercet-ai/tercet/internal/core"
)

// Registry maps stage names to extraction functions.
type Registry struct {
	parsers  map[core.Stage]core.StageParser
	fallback core.StageParser
	mu       sync.RWMutex
}

// NewRegistry creates a registry with the default fallback extractor.
func NewRegistry() *Registry {
	return &Registry{
		parsers:  make(map[core.Stage]core.StageParser),
		fallback: DefaultExtractor,
	}
}

// Register sets the extractor for a stage.
func (r *Registry) Register(stage core.Stage, parser core.StageParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[stage] = parser
}

// RegisterSpec builds a tag extractor from a stage's output spec and
// registers it.
func (r *Registry) RegisterSpec(stage core.Stage, spec core.OutputSpec) {
	r.Register(stage, TagExtractor(spec))
}

// Get returns the extractor for a stage. Unknown stages get the
// fallback, which returns the whole trimmed text under a generic field.
func (r *Registry) Get(stage core.Stage) core.StageParser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if parser, ok := r.parsers[stage]; ok {
		return parser
	}
	return r.fallback
}

// TagExtractor builds an extraction function for a tag-delimited
// output spec. Extraction tolerates surrounding whitespace and noise
// between sections but fails with a parse error when a required
// field's tag pair cannot be located; it never substitutes empties.
func TagExtractor(spec core.OutputSpec) core.StageParser {
	return func(text string) (map[string]string, error) {
		if strings.TrimSpace(text) == "" {
			return nil, core.ErrParse(core.CodeEmptyResponse, "response text is empty")
		}

		fields := make(map[string]string, len(spec.Fields))
		for _, f := range spec.Fields {
			value, ok := extractTag(text, f.Tag)
			if !ok {
				if f.Required {
					return nil, core.ErrParse(core.CodeMissingField,
						fmt.Sprintf("required field %q: tag pair <%s>...</%s> not found", f.Name, f.Tag, f.Tag))
				}
				continue
			}
			fields[f.Name] = value
		}
		return fields, nil
	}
}

// DefaultExtractor returns the entire trimmed text under the generic
// content field. Used for stages without a registered extractor.
func DefaultExtractor(text string) (map[string]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, core.ErrParse(core.CodeEmptyResponse, "response text is empty")
	}
	return map[string]string{core.FieldContent: trimmed}, nil
}

// extractTag locates the first <TAG>...</TAG> pair and returns the
// trimmed inner text. Matching is case-insensitive on the tag tokens;
// an opening tag without its closing tag counts as not found.
func extractTag(text, tag string) (string, bool) {
	open := "<" + tag + ">"
	closing := "</" + tag + ">"

	lower := strings.ToLower(text)
	start := strings.Index(lower, strings.ToLower(open))
	if start < 0 {
		return "", false
	}
	start += len(open)
	rel := strings.Index(lower[start:], strings.ToLower(closing))
	if rel < 0 {
		return "", false
	}
	return strings.TrimSpace(text[start : start+rel]), true
}
