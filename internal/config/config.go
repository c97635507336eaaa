package config

// Config holds all application configuration.
type Config struct {
	Log       LogConfig                 `mapstructure:"log"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Tiers     TiersConfig               `mapstructure:"tiers"`
	Stages    StagesConfig              `mapstructure:"stages"`
	Pricing   map[string]ModelPricing   `mapstructure:"pricing"`
	Batch     BatchConfig               `mapstructure:"batch"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProviderConfig configures one remote LLM provider.
type ProviderConfig struct {
	// Kind selects the wire protocol: "openai" (chat completions) or
	// "anthropic" (messages). Defaults to the provider name.
	Kind     string `mapstructure:"kind"`
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	// Version is the Anthropic API version header; ignored by openai.
	Version string `mapstructure:"version"`
}

// TiersConfig assigns a provider/model pair to each capability tier.
type TiersConfig struct {
	Reasoning ModelRef `mapstructure:"reasoning"`
	Fast      ModelRef `mapstructure:"fast"`
}

// ModelRef names a model at a provider.
type ModelRef struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

// StagesConfig holds the per-stage execution configuration.
type StagesConfig struct {
	Draft    StageConfig `mapstructure:"draft"`
	Critique StageConfig `mapstructure:"critique"`
	Revision StageConfig `mapstructure:"revision"`
}

// StageConfig configures one pipeline stage. The Output section is the
// structured-output contract for the stage: the tags the prompt asks
// the model to emit and the parser extracts.
type StageConfig struct {
	Temperature   float64       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Timeout       string        `mapstructure:"timeout"`
	Template      string        `mapstructure:"template"`
	ReformatRetry bool          `mapstructure:"reformat_retry"`
	Retry         RetryConfig   `mapstructure:"retry"`
	Output        []FieldConfig `mapstructure:"output"`
}

// RetryConfig bounds the retry loop of a stage.
type RetryConfig struct {
	MaxAttempts   int     `mapstructure:"max_attempts"`
	BaseDelay     string  `mapstructure:"base_delay"`
	BackoffFactor float64 `mapstructure:"backoff_factor"`
	MaxDelay      string  `mapstructure:"max_delay"`
}

// FieldConfig documents one tagged output field of a stage response.
type FieldConfig struct {
	Name     string `mapstructure:"name"`
	Tag      string `mapstructure:"tag"`
	Required bool   `mapstructure:"required"`
}

// ModelPricing maps model id to per-million-token rates for one provider.
type ModelPricing map[string]Price

// Price holds USD rates per million tokens.
type Price struct {
	InputPerMTok  float64 `mapstructure:"input_per_mtok"`
	OutputPerMTok float64 `mapstructure:"output_per_mtok"`
}

// BatchConfig configures concurrent batch translation.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}
