package provider

import "time"

const mistralBaseURL = "https://api.mistral.ai/v1"

// MistralProvider implements the Provider interface for Mistral models
// through their OpenAI-compatible API.
type MistralProvider struct {
	*chatClient
}

// NewMistralProvider creates a new Mistral provider.
func NewMistralProvider(apiKey string) (*MistralProvider, error) {
	client, err := newChatClient(
		"mistral",
		mistralBaseURL,
		apiKey,
		[]string{"mistral-large-latest", "mistral-small-latest"},
		30*time.Second,
		0.4,
	)
	if err != nil {
		return nil, err
	}
	return &MistralProvider{chatClient: client}, nil
}
