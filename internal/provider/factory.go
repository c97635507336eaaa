// Package provider implements the uniform client contract to remote
// chat-style completion endpoints and the factory resolving provider
// names to cached client instances.
package provider

import (
	"net/http"
	"sync"
	"time"

	"github.com/tercet-ai/tercet/internal/config"
	"github.com/tercet-ai/tercet/internal/core"
)

// ClientFactory builds a client for one configured provider.
type ClientFactory func(name string, cfg config.ProviderConfig, httpClient *http.Client) core.Provider

// Factory resolves provider names to clients and caches instances by
// name for the lifetime of the process, so connection pools are shared
// across runs. Implements core.ProviderResolver.
type Factory struct {
	configs    map[string]config.ProviderConfig
	factories  map[string]ClientFactory
	clients    map[string]core.Provider
	httpClient *http.Client
	mu         sync.Mutex
}

// NewFactory creates a factory over the configured providers.
func NewFactory(configs map[string]config.ProviderConfig) *Factory {
	f := &Factory{
		configs:   configs,
		factories: make(map[string]ClientFactory),
		clients:   make(map[string]core.Provider),
		// One shared transport for every provider; per-call deadlines
		// come from StepConfig, not from here.
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	f.registerBuiltins()
	return f
}

func (f *Factory) registerBuiltins() {
	f.RegisterKind("openai", NewOpenAIClient)
	f.RegisterKind("anthropic", NewAnthropicClient)
}

// RegisterKind registers a client factory for a wire protocol kind.
func (f *Factory) RegisterKind(kind string, factory ClientFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.factories[kind] = factory
}

// Resolve returns the client for a provider name, creating it on first
// use. Repeated resolution returns the same instance.
func (f *Factory) Resolve(name string) (core.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client, nil
	}

	cfg, ok := f.configs[name]
	if !ok {
		return nil, core.ErrNotFound("provider", name)
	}

	kind := cfg.Kind
	if kind == "" {
		kind = name
	}
	factory, ok := f.factories[kind]
	if !ok {
		return nil, core.ErrConfig(core.CodeInvalidConfig, "unknown provider kind: "+kind)
	}

	client := factory(name, cfg, f.httpClient)
	f.clients[name] = client
	return client, nil
}

// List returns the configured provider names.
func (f *Factory) List() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.configs))
	for name := range f.configs {
		names = append(names, name)
	}
	return names
}
