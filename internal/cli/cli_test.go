package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lossreport/internal/model"
)

func TestLoadConfig_DefaultsAndOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.Set("llm.provider", "anthropic")
	v.Set("session.ttl", "30m")
	v.Set("rate_limit.requests_per_second", 0.5)

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "https://api.weatherapi.com/v1", cfg.Weather.BaseURL)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: ollama\n  model: llama3.1:8b\nweather:\n  enabled: false\n"), 0o600))

	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1:8b", cfg.LLM.Model)
	assert.False(t, cfg.Weather.Enabled)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
}

func TestApplyProviderEnv(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY":    "sk-openai",
		"ANTHROPIC_API_KEY": "sk-ant",
		"WEATHER_API_KEY":   "wx",
		"OLLAMA_BASE_URL":   "http://gpu-box:11434",
	}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		provider    string
		wantKey     string
		wantBaseURL string
	}{
		{"openai", "sk-openai", ""},
		{"anthropic", "sk-ant", ""},
		{"ollama", "", "http://gpu-box:11434"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := model.DefaultConfig()
			cfg.LLM.Provider = tt.provider
			applyProviderEnv(cfg, getenv)

			assert.Equal(t, tt.wantKey, cfg.LLM.APIKey)
			assert.Equal(t, tt.wantBaseURL, cfg.LLM.BaseURL)
			assert.Equal(t, "wx", cfg.Weather.APIKey)
		})
	}

	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "from-config"
	applyProviderEnv(cfg, getenv)
	assert.Equal(t, "from-config", cfg.LLM.APIKey)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Lossreport Configuration File"))
	assert.Contains(t, string(data), "provider: openai")

	// The written file loads back into the defaults.
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Server, cfg.Server)

	err = writeDefaultConfig(path)
	assert.ErrorContains(t, err, "already exists")
}

func TestRedacted(t *testing.T) {
	cfg := *model.DefaultConfig()
	cfg.LLM.APIKey = "secret"
	cfg.Weather.APIKey = "secret"

	out := redacted(cfg)
	assert.Equal(t, "***", out.LLM.APIKey)
	assert.Equal(t, "***", out.Weather.APIKey)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
}

func TestLoadFacts(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "facts.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
dateOfLoss: 2024-05-01
address: 123 Main St
stories: 2
roofTypes: [asphalt shingle, metal]
engineerLicense: N/A
`), 0o600))

	facts, err := loadFacts(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", facts.DateOfLoss.String())
	assert.Equal(t, "2", facts.Stories.String())
	assert.Equal(t, "asphalt shingle, metal", facts.RoofTypes.Join())
	assert.Empty(t, facts.EngineerLicense.String())

	jsonPath := filepath.Join(dir, "facts.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"city":"Austin","claimTypes":"wind, hail"}`), 0o600))

	facts, err = loadFacts(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "Austin", facts.City.String())
	assert.Equal(t, []string{"wind", "hail"}, facts.ClaimTypes.Values())

	_, err = loadFacts(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestPrintSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSections(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(model.AllSections())+1)
	assert.Contains(t, lines[1], "opening")
	assert.Contains(t, buf.String(), "Meteorologist Report")
}

func TestRunReview_RejectsStdin(t *testing.T) {
	err := runReview(reviewCmd, []string{"-"})
	assert.ErrorIs(t, err, errReviewStdin)
}

func TestNewApp_PromptOnlyNeedsNoCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	setDefaults(viper.GetViper(), model.DefaultConfig())

	_, err := newApp(nil, io.Discard, true)
	assert.ErrorContains(t, err, "initialize LLM provider")

	a, err := newApp(nil, io.Discard, false)
	require.NoError(t, err)
	assert.Nil(t, a.provider)

	facts := model.FactSheet{ClaimNumber: "CLM-1042", Address: "123 Main St"}
	var buf bytes.Buffer
	require.NoError(t, writePrompt(context.Background(), &buf, a.pipeline, "opening", facts, "mention the garage"))

	out := buf.String()
	assert.Contains(t, out, `You are now writing the "Opening Letter" section`)
	assert.Contains(t, out, "Claim number: CLM-1042")
	assert.Contains(t, out, "mention the garage")
}
