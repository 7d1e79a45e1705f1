package model

import "time"

// Config holds all runtime settings. Values are layered by viper:
// flags, LOSSREPORT_* env vars, config file, then these defaults.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Weather   WeatherConfig   `yaml:"weather" mapstructure:"weather"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Proxy     ProxyConfig     `yaml:"proxy" mapstructure:"proxy"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LLMConfig configures the text-generation provider.
type LLMConfig struct {
	Provider        string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model           string `yaml:"model" mapstructure:"model"`       // empty selects the provider default
	APIKey          string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL         string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout         int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens       int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxPromptTokens int    `yaml:"max_prompt_tokens" mapstructure:"max_prompt_tokens"`
}

// WeatherConfig configures the weather-history lookup.
type WeatherConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	APIKey  string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// SessionConfig controls how long idle review sessions live in memory.
type SessionConfig struct {
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// RateLimitConfig bounds outbound calls per upstream host.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ProxyConfig is applied to every outbound HTTP client.
type ProxyConfig struct {
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LogConfig selects slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:        "openai",
			Timeout:         90,
			MaxTokens:       2000,
			MaxPromptTokens: 6000,
		},
		Weather: WeatherConfig{
			Enabled: true,
			BaseURL: "https://api.weatherapi.com/v1",
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			WriteTimeout:    3 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Session: SessionConfig{
			TTL:             4 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
