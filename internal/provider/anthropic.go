package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tercet-ai/tercet/internal/config"
	"github.com/tercet-ai/tercet/internal/core"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	defaultAnthropicVersion  = "2023-06-01"
)

// AnthropicClient speaks the Anthropic messages wire format.
type AnthropicClient struct {
	name     string
	endpoint string
	apiKey   string
	version  string
	http     *http.Client
}

// NewAnthropicClient creates an Anthropic messages client.
func NewAnthropicClient(name string, cfg config.ProviderConfig, httpClient *http.Client) core.Provider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultAnthropicEndpoint
	}
	version := cfg.Version
	if version == "" {
		version = defaultAnthropicVersion
	}
	return &AnthropicClient{
		name:     name,
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		version:  version,
		http:     httpClient,
	}
}

// Name returns the provider identifier.
func (c *AnthropicClient) Name() string {
	return c.name
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Call issues exactly one messages request.
func (c *AnthropicClient) Call(ctx context.Context, params core.CallParams) (*core.CallResult, error) {
	callCtx := ctx
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       params.Model,
		System:      params.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: params.UserPrompt}},
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return nil, core.ErrConfig(core.CodeInvalidConfig, "encoding request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, core.ErrConfig(core.CodeInvalidConfig, "building request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.version)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	var parsed anthropicResponse
	if resp.StatusCode != http.StatusOK {
		message := ""
		if json.Unmarshal(data, &parsed) == nil && parsed.Error != nil {
			message = parsed.Error.Message
		}
		return nil, statusError(c.name, resp.StatusCode, message)
	}

	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, core.ErrProvider(core.CodeBadRequest,
			fmt.Sprintf("%s: undecodable response body", c.name), false).WithCause(err)
	}

	text := ""
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, core.ErrProvider(core.CodeEmptyResponse,
			fmt.Sprintf("%s: response contained no text blocks", c.name), false)
	}

	return &core.CallResult{
		Text:             text,
		PromptTokens:     parsed.Usage.InputTokens,
		CompletionTokens: parsed.Usage.OutputTokens,
	}, nil
}
