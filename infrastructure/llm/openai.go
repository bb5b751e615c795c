package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrEmptyResponse is returned when the model answered without content.
var ErrEmptyResponse = errors.New("no response from AI")

// OpenAIProvider implements Provider for OpenAI-compatible chat completion
// APIs.
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIProvider creates a provider. An empty baseURL targets OpenAI.
func NewOpenAIProvider(apiKey, model, baseURL string, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIProvider{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (c *OpenAIProvider) IsAvailable() bool { return c.apiKey != "" }

func (c *OpenAIProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if opts.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: opts.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}
	if opts.Format == "json" {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", statusError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// statusError turns the client's HTTP failures into a StatusError so the
// retry policy can read the status code. Transport errors pass through.
func statusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: "openai", StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &StatusError{Provider: "openai", StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
	}
	return err
}
