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

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIClient speaks the OpenAI chat-completions wire format. Any
// OpenAI-compatible endpoint (together, groq, local servers) works by
// pointing the provider's endpoint at it.
type OpenAIClient struct {
	name     string
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewOpenAIClient creates an OpenAI-compatible client.
func NewOpenAIClient(name string, cfg config.ProviderConfig, httpClient *http.Client) core.Provider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	return &OpenAIClient{
		name:     name,
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		http:     httpClient,
	}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_completion_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Call issues exactly one chat-completions request. The per-call
// timeout bounds this attempt only; caller cancellation is observed
// through ctx.
func (c *OpenAIClient) Call(ctx context.Context, params core.CallParams) (*core.CallResult, error) {
	callCtx := ctx
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(openAIRequest{
		Model: params.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: params.SystemPrompt},
			{Role: "user", Content: params.UserPrompt},
		},
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	var parsed openAIResponse
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
	if len(parsed.Choices) == 0 {
		return nil, core.ErrProvider(core.CodeEmptyResponse,
			fmt.Sprintf("%s: response contained no choices", c.name), false)
	}

	return &core.CallResult{
		Text:             parsed.Choices[0].Message.Content,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}, nil
}
