package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicTimeout = 30 * time.Second

// AnthropicProvider implements the Provider interface for Claude
// models. It is not part of the default chains but can be configured as
// an extra fallback tier.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: client}, nil
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Models returns the supported Claude models.
func (p *AnthropicProvider) Models() []string {
	return []string{"claude-sonnet-4-20250514", "claude-3-5-haiku-20241022"}
}

// Generate sends a plain user prompt.
func (p *AnthropicProvider) Generate(ctx context.Context, model string, prompt string) (*Reply, error) {
	return p.GenerateWithSystem(ctx, model, "", prompt)
}

// GenerateWithSystem sends a prompt under the given persona.
func (p *AnthropicProvider) GenerateWithSystem(ctx context.Context, model string, system string, prompt string) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, anthropicTimeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &Reply{Content: content, Provider: p.Name(), Model: model}, nil
}
