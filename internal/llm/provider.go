package llm

import (
	"context"
	"time"
)

// Generator defines the interface for text completion providers.
// Returned text carries no structural guarantee; callers validate and
// parse it themselves (see Decode).
type Generator interface {
	// Name returns the provider name
	Name() string

	// Generate produces a text completion for the request
	Generate(ctx context.Context, req Request) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for one generation call
type Request struct {
	// Prompt is the user prompt
	Prompt string

	// SystemPrompt sets the system message (optional)
	SystemPrompt string

	// Timeout bounds this single call. Generation calls are allowed to
	// take tens of seconds to minutes depending on stage.
	Timeout time.Duration

	// MaxTokens limits the response length (0 uses the provider default)
	MaxTokens int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout is the default per-request timeout
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   60 * time.Second,
		MaxTokens: 4000,
	}
}
