package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	groqBaseURL       = "https://api.groq.com/openai/v1"
	groqModel         = "llama-3.3-70b-versatile"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterModel   = "meta-llama/llama-3.3-70b-instruct:free"

	// Low temperature keeps batch classification output consistent.
	completionTemperature = 0.1
	completionMaxTokens   = 4000
)

// OpenAICompat is a provider backed by any OpenAI-compatible chat endpoint.
// Groq and OpenRouter both speak this protocol.
type OpenAICompat struct {
	name   string
	model  string
	client *openai.Client
}

func NewGroq(apiKey string) *OpenAICompat {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return &OpenAICompat{
		name:   "groq",
		model:  groqModel,
		client: openai.NewClientWithConfig(cfg),
	}
}

func NewOpenRouter(apiKey string) *OpenAICompat {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	return &OpenAICompat{
		name:   "openrouter",
		model:  openRouterModel,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (p *OpenAICompat) Name() string {
	return p.name
}

func (p *OpenAICompat) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
