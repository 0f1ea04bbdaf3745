package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// chatClient speaks the OpenAI-compatible chat completions dialect used
// by Mistral and Groq.
type chatClient struct {
	name        string
	baseURL     string
	models      []string
	temperature float64
	http        *resty.Client
}

func newChatClient(name, baseURL, apiKey string, models []string, timeout time.Duration, temperature float64) (*chatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	client := resty.New().
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &chatClient{
		name:        name,
		baseURL:     baseURL,
		models:      models,
		temperature: temperature,
		http:        client,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Name returns the provider identifier.
func (c *chatClient) Name() string {
	return c.name
}

// Models returns the supported models, most capable first.
func (c *chatClient) Models() []string {
	return c.models
}

// Generate sends a plain user prompt.
func (c *chatClient) Generate(ctx context.Context, model string, prompt string) (*Reply, error) {
	return c.GenerateWithSystem(ctx, model, "", prompt)
}

// GenerateWithSystem sends a prompt under the given persona.
func (c *chatClient) GenerateWithSystem(ctx context.Context, model string, system string, prompt string) (*Reply, error) {
	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	var body chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       model,
			Messages:    messages,
			Temperature: c.temperature,
		}).
		SetResult(&body).
		SetError(&body).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("%s API request failed: %w", c.name, err)
	}

	if resp.IsError() {
		msg := resp.String()
		if body.Error != nil {
			msg = body.Error.Message
		}
		return nil, &Error{
			Status: resp.StatusCode(),
			Err:    fmt.Errorf("%s API error (status=%d): %s", c.name, resp.StatusCode(), msg),
		}
	}
	if body.Error != nil {
		return nil, fmt.Errorf("%s API error: %s (type: %s)", c.name, body.Error.Message, body.Error.Type)
	}
	if len(body.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", c.name)
	}

	return &Reply{
		Content:  body.Choices[0].Message.Content,
		Provider: c.name,
		Model:    model,
	}, nil
}
