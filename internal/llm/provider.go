package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from provider")

// sectionRequest is the user turn for providers whose APIs require one.
// The instruction itself always travels as the system prompt.
const sectionRequest = "Write the section now."

// Provider defines the interface for text-generation providers.
// A provider is stateless: every call carries one system instruction and no
// conversation history.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends the instruction and returns the generated text
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one section generation
type GenerateRequest struct {
	// Instruction is the complete assembled instruction, sent as the system prompt
	Instruction string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the generated section text
type GenerateResponse struct {
	// Text is the generated body content, trimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   90,
		MaxTokens: 2000,
	}
}

// EstimateTokens gives a rough token count (about 4 characters per token).
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func (c Config) resolveModel(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

func (c Config) resolveMaxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 2000
}
