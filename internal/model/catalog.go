package model

// ModelInfo describes one selectable AI model. Provider-specific secrets
// stay in config; everything here is safe to expose via the public API.
type ModelInfo struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

var modelCatalog = []ModelInfo{
	{
		ID:          "gemini-2.5-pro",
		Provider:    "google",
		DisplayName: "Gemini 2.5 Pro",
		Description: "Google DeepMind's flagship Gemini model with multimodal reasoning support.",
	},
	{
		ID:          "gpt-5",
		Provider:    "openai",
		DisplayName: "GPT-5",
		Description: "OpenAI's latest GPT series release optimized for advanced problem solving and dialogue.",
	},
	{
		ID:          "claude-opus-4.1",
		Provider:    "anthropic",
		DisplayName: "Claude Opus 4.1",
		Description: "Anthropic's top-tier Claude model tuned for deep, reliable analysis.",
	},
	{
		ID:          "grok-4",
		Provider:    "xai",
		DisplayName: "Grok 4",
		Description: "xAI's Grok model focused on high-context reasoning and code generation.",
	},
}

// Models returns the supported model catalog. Callers get a copy.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

// SupportedModel reports whether id is in the catalog.
func SupportedModel(id string) bool {
	for _, m := range modelCatalog {
		if m.ID == id {
			return true
		}
	}
	return false
}
