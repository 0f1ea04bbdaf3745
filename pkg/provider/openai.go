package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openaiTimeout = 20 * time.Second

// OpenAIProvider implements the Provider interface for OpenAI models.
// It serves as the general-purpose backup tier.
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: client}, nil
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Models returns the supported OpenAI models.
func (p *OpenAIProvider) Models() []string {
	return []string{"gpt-4o", "gpt-4o-mini"}
}

// Generate sends a plain user prompt.
func (p *OpenAIProvider) Generate(ctx context.Context, model string, prompt string) (*Reply, error) {
	return p.GenerateWithSystem(ctx, model, "", prompt)
}

// GenerateWithSystem sends a prompt under the given persona.
func (p *OpenAIProvider) GenerateWithSystem(ctx context.Context, model string, system string, prompt string) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, openaiTimeout)
	defer cancel()

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(4096),
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &Reply{
		Content:  resp.Choices[0].Message.Content,
		Provider: p.Name(),
		Model:    model,
	}, nil
}
