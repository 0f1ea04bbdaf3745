package provider

import "time"

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider implements the Provider interface for DeepSeek
// models through their OpenAI-compatible API. It serves as the
// reasoning-oriented backup tier.
type DeepSeekProvider struct {
	*chatClient
}

// NewDeepSeekProvider creates a new DeepSeek provider.
func NewDeepSeekProvider(apiKey string) (*DeepSeekProvider, error) {
	client, err := newChatClient(
		"deepseek",
		deepseekBaseURL,
		apiKey,
		[]string{"deepseek-reasoner", "deepseek-chat"},
		10*time.Second,
		0,
	)
	if err != nil {
		return nil, err
	}
	return &DeepSeekProvider{chatClient: client}, nil
}
