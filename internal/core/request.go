package core

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// TranslationRequest is the immutable input to a workflow run.
// The caller owns it; the pipeline only reads it.
type TranslationRequest struct {
	Text       string            `json:"text"`
	SourceLang string            `json:"source_lang"`
	TargetLang string            `json:"target_lang"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewTranslationRequest creates a request with canonicalized language names.
func NewTranslationRequest(text, sourceLang, targetLang string) TranslationRequest {
	return TranslationRequest{
		Text:       strings.TrimSpace(text),
		SourceLang: CanonicalLanguage(sourceLang),
		TargetLang: CanonicalLanguage(targetLang),
	}
}

// WithMetadata returns a copy of the request carrying extra metadata
// (author, title, ...). The original request is not modified.
func (r TranslationRequest) WithMetadata(meta map[string]string) TranslationRequest {
	if len(meta) == 0 {
		return r
	}
	merged := make(map[string]string, len(r.Metadata)+len(meta))
	for k, v := range r.Metadata {
		merged[k] = v
	}
	for k, v := range meta {
		merged[k] = v
	}
	r.Metadata = merged
	return r
}

// Validate checks the request invariants.
func (r TranslationRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrConfig(CodeEmptyText, "source text cannot be empty")
	}
	if strings.TrimSpace(r.SourceLang) == "" {
		return ErrConfig(CodeMissingInput, "source language is required")
	}
	if strings.TrimSpace(r.TargetLang) == "" {
		return ErrConfig(CodeMissingInput, "target language is required")
	}
	return nil
}

// CanonicalLanguage normalizes a language given as a BCP 47 tag ("zh",
// "pt-BR") to its English display name. Free-form names ("Chinese",
// "Ancient Greek") pass through trimmed: prompts want names, not tags,
// and the remote model copes with either.
func CanonicalLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.ContainsAny(lang, " ,") {
		return lang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return lang
}
