package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	// Provider credentials. Google is the rate-limited primary and
	// carries a rotation pool on top of the single key.
	GoogleAPIKey    string
	GoogleKeyPool   []string
	MistralAPIKey   string
	GroqAPIKey      string
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
	AnthropicAPIKey string

	// Collaborator backends.
	KnowledgeURL    string
	KnowledgeKey    string
	TasksURL        string
	TasksToken      string
	MailURL         string
	MailToken       string
	AutomationURL   string
	AutomationToken string

	// Request defaults.
	DefaultOrgID string
	MailSenders  []string

	Routing   *RoutingConfig
	ConfigDir string
}

// FileConfig represents the structure of ~/.cortexgate/config.yaml.
type FileConfig struct {
	APIKeys  APIKeysConfig  `yaml:"api_keys"`
	Backends BackendsConfig `yaml:"backends"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// APIKeysConfig holds credentials from file.
type APIKeysConfig struct {
	Google     string   `yaml:"google"`
	GooglePool []string `yaml:"google_pool"`
	Mistral    string   `yaml:"mistral"`
	Groq       string   `yaml:"groq"`
	OpenAI     string   `yaml:"openai"`
	DeepSeek   string   `yaml:"deepseek"`
	Anthropic  string   `yaml:"anthropic"`
}

// BackendsConfig holds collaborator endpoints from file.
type BackendsConfig struct {
	KnowledgeURL    string `yaml:"knowledge_url"`
	KnowledgeKey    string `yaml:"knowledge_key"`
	TasksURL        string `yaml:"tasks_url"`
	TasksToken      string `yaml:"tasks_token"`
	MailURL         string `yaml:"mail_url"`
	MailToken       string `yaml:"mail_token"`
	AutomationURL   string `yaml:"automation_url"`
	AutomationToken string `yaml:"automation_token"`
}

// DefaultsConfig holds request defaults from file.
type DefaultsConfig struct {
	OrgID       string   `yaml:"org_id"`
	MailSenders []string `yaml:"mail_senders"`
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		GoogleAPIKey:    getEnvOrDefault("GEMINI_API_KEY", fileConfig.APIKeys.Google),
		GoogleKeyPool:   loadKeyPool(fileConfig.APIKeys.GooglePool),
		MistralAPIKey:   getEnvOrDefault("MISTRAL_API_KEY", fileConfig.APIKeys.Mistral),
		GroqAPIKey:      getEnvOrDefault("GROQ_API_KEY", fileConfig.APIKeys.Groq),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		DeepSeekAPIKey:  getEnvOrDefault("DEEPSEEK_API_KEY", fileConfig.APIKeys.DeepSeek),
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),

		KnowledgeURL:    getEnvOrDefault("KNOWLEDGE_URL", fileConfig.Backends.KnowledgeURL),
		KnowledgeKey:    getEnvOrDefault("KNOWLEDGE_SERVICE_KEY", fileConfig.Backends.KnowledgeKey),
		TasksURL:        getEnvOrDefault("TASKS_URL", fileConfig.Backends.TasksURL),
		TasksToken:      getEnvOrDefault("TASKS_TOKEN", fileConfig.Backends.TasksToken),
		MailURL:         getEnvOrDefault("MAIL_URL", fileConfig.Backends.MailURL),
		MailToken:       getEnvOrDefault("MAIL_TOKEN", fileConfig.Backends.MailToken),
		AutomationURL:   getEnvOrDefault("AUTOMATION_WEBHOOK_URL", fileConfig.Backends.AutomationURL),
		AutomationToken: getEnvOrDefault("AUTOMATION_API_KEY", fileConfig.Backends.AutomationToken),

		DefaultOrgID: getEnvOrDefault("DEFAULT_ORG_ID", fileConfig.Defaults.OrgID),
		MailSenders:  fileConfig.Defaults.MailSenders,

		ConfigDir: configDir,
	}

	if senders := os.Getenv("MAIL_SYNC_SENDERS"); senders != "" {
		cfg.MailSenders = splitAndTrim(senders)
	}

	routingPath := filepath.Join(configDir, "routing.yaml")
	if _, err := os.Stat(routingPath); err == nil {
		routing, err := LoadRoutingConfig(routingPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load routing config: %w", err)
		}
		cfg.Routing = routing
	} else {
		cfg.Routing = DefaultRoutingConfig()
	}

	return cfg, nil
}

// HasProvider returns true if credentials for the given provider are
// configured.
func (c *Config) HasProvider(name string) bool {
	switch name {
	case "google":
		return c.GoogleAPIKey != "" || len(c.GoogleKeyPool) > 0
	case "mistral":
		return c.MistralAPIKey != ""
	case "groq":
		return c.GroqAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "deepseek":
		return c.DeepSeekAPIKey != ""
	case "anthropic":
		return c.AnthropicAPIKey != ""
	default:
		return false
	}
}

// loadKeyPool merges the GEMINI_KEY_POOL env var (a JSON array, often
// wrapped in shell quotes by .env files) with the file pool.
func loadKeyPool(filePool []string) []string {
	raw := os.Getenv("GEMINI_KEY_POOL")
	if raw == "" {
		return filePool
	}

	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "'\"")

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		log.Warn().Err(err).Msg("config: GEMINI_KEY_POOL is not a valid JSON array")
		return filePool
	}
	return keys
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg)
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".cortexgate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
