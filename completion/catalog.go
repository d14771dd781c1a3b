package completion

// API identifies which provider endpoint family serves a model.
type API string

const (
	APICompletions API = "completions" // legacy prompt-in, text-out endpoint
	APIChat        API = "chat"
	APIMessages    API = "messages"
)

// ModelInfo describes a known model in the catalog.
type ModelInfo struct {
	ID            string   `json:"id"`
	Provider      string   `json:"provider"`
	DisplayName   string   `json:"display_name"`
	API           API      `json:"api"`
	ContextWindow int      `json:"context_window"`
	MaxOutput     int      `json:"max_output"`
	Aliases       []string `json:"aliases,omitempty"`
}

// Models is the built-in model catalog. Entries are ordered newest first
// within each provider.
var Models = []ModelInfo{
	// OpenAI
	{
		ID: "gpt-4o", Provider: "openai", DisplayName: "GPT-4o",
		API: APIChat, ContextWindow: 128000, MaxOutput: 16384,
		Aliases: []string{"4o"},
	},
	{
		ID: "gpt-4o-mini", Provider: "openai", DisplayName: "GPT-4o mini",
		API: APIChat, ContextWindow: 128000, MaxOutput: 16384,
		Aliases: []string{"4o-mini"},
	},
	{
		ID: "gpt-3.5-turbo-instruct", Provider: "openai", DisplayName: "GPT-3.5 Turbo Instruct",
		API: APICompletions, ContextWindow: 4096, MaxOutput: 4096,
		Aliases: []string{"instruct"},
	},

	// Anthropic
	{
		ID: "claude-sonnet-4-5", Provider: "anthropic", DisplayName: "Claude Sonnet 4.5",
		API: APIMessages, ContextWindow: 200000, MaxOutput: 16384,
		Aliases: []string{"sonnet"},
	},
	{
		ID: "claude-haiku-4-5", Provider: "anthropic", DisplayName: "Claude Haiku 4.5",
		API: APIMessages, ContextWindow: 200000, MaxOutput: 8192,
		Aliases: []string{"haiku"},
	},

	// Local
	{
		ID: "llama3.1", Provider: "ollama", DisplayName: "Llama 3.1 (Ollama)",
		API: APIChat, ContextWindow: 128000, MaxOutput: 4096,
	},
}

// GetModelInfo returns the catalog entry for a model id or alias, or nil if
// unknown.
func GetModelInfo(modelID string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == modelID {
			return &Models[i]
		}
		for _, alias := range Models[i].Aliases {
			if alias == modelID {
				return &Models[i]
			}
		}
	}
	return nil
}

// ResolveModelID expands an alias to its canonical id. Unknown ids are
// returned unchanged so callers can use models the catalog does not list.
func ResolveModelID(modelID string) string {
	if info := GetModelInfo(modelID); info != nil {
		return info.ID
	}
	return modelID
}

// ListModels returns all known models, optionally filtered by provider.
func ListModels(provider string) []ModelInfo {
	if provider == "" {
		result := make([]ModelInfo, len(Models))
		copy(result, Models)
		return result
	}
	var result []ModelInfo
	for _, m := range Models {
		if m.Provider == provider {
			result = append(result, m)
		}
	}
	return result
}

// GetLatestModel returns the first catalog model for a provider, optionally
// restricted to one API family.
func GetLatestModel(provider string, api API) *ModelInfo {
	for i := range Models {
		if Models[i].Provider != provider {
			continue
		}
		if api == "" || Models[i].API == api {
			return &Models[i]
		}
	}
	return nil
}
