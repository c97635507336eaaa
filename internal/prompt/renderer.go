// Package prompt renders stage prompt templates. Each template id maps
// to a system and a user template; the engine supplies the variable map
// and treats rendering as opaque.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"

	"github.com/tercet-ai/tercet/internal/core"
)

//go:embed templates/*.md.tmpl
var templatesFS embed.FS

// Renderer renders prompts from embedded templates.
type Renderer struct {
	templates map[string]*template.Template
	mu        sync.RWMutex
}

// NewRenderer creates a renderer with all embedded templates loaded.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
	}
	if err := r.loadTemplates(); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	return r, nil
}

// loadTemplates loads all templates from the embedded filesystem.
// A template id "draft" consists of templates/draft.system.md.tmpl and
// templates/draft.user.md.tmpl.
func (r *Renderer) loadTemplates() error {
	return fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md.tmpl") {
			return nil
		}

		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		name := strings.TrimPrefix(path, "templates/")
		name = strings.TrimSuffix(name, ".md.tmpl")

		tmpl, err := template.New(name).Option("missingkey=error").Funcs(templateFuncs()).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}

		r.templates[name] = tmpl
		return nil
	})
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":      strings.Join,
		"trimSpace": strings.TrimSpace,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
	}
}

// Render renders the system and user prompts of a template id against
// the variable map. Implements core.PromptRenderer.
func (r *Renderer) Render(id string, vars map[string]string) (string, string, error) {
	system, err := r.render(id+".system", vars)
	if err != nil {
		return "", "", err
	}
	user, err := r.render(id+".user", vars)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

// Has reports whether a template id is available.
func (r *Renderer) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, okSys := r.templates[id+".system"]
	_, okUser := r.templates[id+".user"]
	return okSys && okUser
}

func (r *Renderer) render(name string, vars map[string]string) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return "", core.ErrConfig(core.CodeRenderFailed, fmt.Sprintf("unknown prompt template: %s", name))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", core.ErrConfig(core.CodeRenderFailed, fmt.Sprintf("rendering template %s", name)).WithCause(err)
	}
	return strings.TrimSpace(buf.String()), nil
}
