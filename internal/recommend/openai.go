package recommend

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIGenerator generates text through an OpenAI-compatible chat
// completions endpoint.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIGenerator creates a generator. An empty baseURL uses the OpenAI
// API; an empty model uses DefaultOpenAIModel.
func NewOpenAIGenerator(apiKey, baseURL, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNoToken
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   200,
		temperature: 0.7,
	}, nil
}

// Generate sends prompt as a single user message and returns the content of
// every choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) ([]string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, classifyHTTPError(apiErr.HTTPStatusCode, []byte(apiErr.Message))
		}
		return nil, NewTransientError(fmt.Errorf("chat completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, NewFatalError(ErrEmptyOutput)
	}
	fragments := make([]string, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		fragments = append(fragments, c.Message.Content)
	}
	return fragments, nil
}
