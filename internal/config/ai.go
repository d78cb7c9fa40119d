package config

import "os"

// AIConfig holds the settings for the answer-generation provider. The
// endpoint speaks the OpenAI-compatible chat completions protocol; the
// selected game model is mapped onto a provider model by the responder.
type AIConfig struct {
	APIKey    string `json:"-"` // Never serialize
	BaseURL   string `json:"baseUrl"`
	TimeoutMS int    `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration.
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		BaseURL:   getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		TimeoutMS: 10000,
	}
}

// IsEnabled returns true if the AI API is configured.
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ChatEndpoint returns the chat completions endpoint.
func (c *AIConfig) ChatEndpoint() string {
	return c.BaseURL + "/chat/completions"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
