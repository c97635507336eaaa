package config

// Stage defaults. A stage omitted from the config file runs with these;
// explicit values win field by field where distinguishable.
var defaultStages = map[string]StageConfig{
	"draft": {
		Temperature: 0.7,
		MaxTokens:   4096,
		Timeout:     "120s",
		Template:    "draft",
		Retry:       defaultRetry,
		Output: []FieldConfig{
			{Name: "translation", Tag: "TRANSLATION", Required: true},
			{Name: "notes", Tag: "NOTES"},
		},
	},
	"critique": {
		Temperature: 0.3,
		MaxTokens:   2048,
		Timeout:     "120s",
		Template:    "critique",
		Retry:       defaultRetry,
		Output: []FieldConfig{
			{Name: "suggestions", Tag: "SUGGESTIONS", Required: true},
			{Name: "notes", Tag: "NOTES"},
		},
	},
	"revision": {
		Temperature: 0.5,
		MaxTokens:   4096,
		Timeout:     "120s",
		Template:    "revision",
		Retry:       defaultRetry,
		Output: []FieldConfig{
			{Name: "translation", Tag: "TRANSLATION", Required: true},
			{Name: "notes", Tag: "NOTES"},
		},
	},
}

var defaultRetry = RetryConfig{
	MaxAttempts:   3,
	BaseDelay:     "1s",
	BackoffFactor: 2.0,
	MaxDelay:      "30s",
}

// Published list prices, USD per million tokens. Overridable per
// provider/model under the pricing key.
var defaultPricing = map[string]ModelPricing{
	"openai": {
		"gpt-4o":      {InputPerMTok: 2.50, OutputPerMTok: 10.00},
		"gpt-4o-mini": {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	},
	"anthropic": {
		"claude-sonnet-4-5": {InputPerMTok: 3.00, OutputPerMTok: 15.00},
		"claude-haiku-4-5":  {InputPerMTok: 1.00, OutputPerMTok: 5.00},
	},
}

// applyDefaults fills zero-valued sections after unmarshaling.
func applyDefaults(cfg *Config) {
	cfg.Stages.Draft = mergeStage(cfg.Stages.Draft, defaultStages["draft"])
	cfg.Stages.Critique = mergeStage(cfg.Stages.Critique, defaultStages["critique"])
	cfg.Stages.Revision = mergeStage(cfg.Stages.Revision, defaultStages["revision"])

	if cfg.Pricing == nil {
		cfg.Pricing = make(map[string]ModelPricing)
	}
	for provider, models := range defaultPricing {
		if _, ok := cfg.Pricing[provider]; !ok {
			cfg.Pricing[provider] = models
			continue
		}
		for model, price := range models {
			if _, ok := cfg.Pricing[provider][model]; !ok {
				cfg.Pricing[provider][model] = price
			}
		}
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for name, pc := range cfg.Providers {
		if pc.Kind == "" {
			pc.Kind = name
		}
		cfg.Providers[name] = pc
	}

	if cfg.Batch.Concurrency <= 0 {
		cfg.Batch.Concurrency = 4
	}
}

func mergeStage(sc, def StageConfig) StageConfig {
	if sc.Temperature == 0 {
		sc.Temperature = def.Temperature
	}
	if sc.MaxTokens == 0 {
		sc.MaxTokens = def.MaxTokens
	}
	if sc.Timeout == "" {
		sc.Timeout = def.Timeout
	}
	if sc.Template == "" {
		sc.Template = def.Template
	}
	if sc.Retry.MaxAttempts == 0 {
		sc.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if sc.Retry.BaseDelay == "" {
		sc.Retry.BaseDelay = def.Retry.BaseDelay
	}
	if sc.Retry.BackoffFactor == 0 {
		sc.Retry.BackoffFactor = def.Retry.BackoffFactor
	}
	if sc.Retry.MaxDelay == "" {
		sc.Retry.MaxDelay = def.Retry.MaxDelay
	}
	if len(sc.Output) == 0 {
		sc.Output = def.Output
	}
	return sc
}
