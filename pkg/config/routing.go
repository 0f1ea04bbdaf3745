package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoutingConfig holds the intent routing rules and fallback chains.
type RoutingConfig struct {
	// Intents is an ORDERED list: the first declared agent with a
	// matching keyword wins, so slice order is load-bearing.
	Intents      []IntentRule `yaml:"intents"`
	DefaultAgent string       `yaml:"default_agent"`

	// ConversationModels is the conversation agent's model preference
	// list, most capable first.
	ConversationModels []string `yaml:"conversation_models"`

	// BrainChain is the provider order for the ask-anything endpoint.
	BrainChain []string `yaml:"brain_chain"`
}

// IntentRule maps trigger keywords to one agent.
type IntentRule struct {
	Agent    string   `yaml:"agent"`
	Keywords []string `yaml:"keywords"`
}

// LoadRoutingConfig reads routing configuration from a YAML file.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RoutingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	applyRoutingDefaults(&cfg)
	return &cfg, nil
}

// Validate rejects rules with no agent or no keywords.
func (c *RoutingConfig) Validate() error {
	for i, rule := range c.Intents {
		if rule.Agent == "" {
			return fmt.Errorf("intent rule %d: agent is required", i)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("intent rule %d (%s): at least one keyword is required", i, rule.Agent)
		}
	}
	return nil
}

// DefaultRoutingConfig returns the default routing configuration.
func DefaultRoutingConfig() *RoutingConfig {
	cfg := &RoutingConfig{
		Intents: []IntentRule{
			{
				Agent:    "strategy",
				Keywords: []string{"estrategia", "analiza", "plan", "riesgo", "evalúa", "piensa", "insight", "roi"},
			},
			{
				Agent:    "sales",
				Keywords: []string{"vende", "prospecta", "lead", "cliente", "contacta", "seguimiento", "outreach", "cierra"},
			},
			{
				Agent:    "recall",
				Keywords: []string{"recuerda", "busca", "encuentra", "qué dijimos", "historial", "contexto", "conocimiento"},
			},
			{
				Agent:    "scheduling",
				Keywords: []string{"reunión", "calendario", "agenda", "cita", "programe", "agendar", "clase"},
			},
		},
	}

	applyRoutingDefaults(cfg)
	return cfg
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg == nil {
		return
	}
	if cfg.DefaultAgent == "" {
		cfg.DefaultAgent = "conversation"
	}
	if len(cfg.ConversationModels) == 0 {
		cfg.ConversationModels = []string{
			"gemini-2.0-flash",
			"gemini-1.5-flash",
			"gemini-1.5-flash-8b",
		}
	}
	if len(cfg.BrainChain) == 0 {
		cfg.BrainChain = []string{"google", "mistral", "groq", "openai", "deepseek"}
	}
}
