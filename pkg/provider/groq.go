package provider

import "time"

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider implements the Provider interface for Groq-hosted models
// through their OpenAI-compatible API. Groq is the fastest tier, so it
// gets the shortest call budget.
type GroqProvider struct {
	*chatClient
}

// NewGroqProvider creates a new Groq provider.
func NewGroqProvider(apiKey string) (*GroqProvider, error) {
	client, err := newChatClient(
		"groq",
		groqBaseURL,
		apiKey,
		[]string{"llama-3.3-70b-versatile"},
		15*time.Second,
		0,
	)
	if err != nil {
		return nil, err
	}
	return &GroqProvider{chatClient: client}, nil
}
