package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lossreport/internal/llm"
	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/observability"
	"github.com/ppiankov/lossreport/internal/pipeline"
	"github.com/ppiankov/lossreport/internal/weather"
	"github.com/ppiankov/lossreport/internal/worker"
)

// app bundles the collaborators every command builds from configuration.
type app struct {
	cfg      *model.Config
	logger   *slog.Logger
	limiter  *worker.Limiter
	provider llm.Provider
	weather  *weather.Client
	pipeline *pipeline.Pipeline
}

// newApp loads configuration and wires the generation pipeline. metrics may
// be nil for one-shot commands; logs go to logOut. Commands that never call
// the provider pass needProvider=false so missing credentials do not stop
// them; their pipeline can still look up weather.
func newApp(metrics *observability.Metrics, logOut io.Writer, needProvider bool) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if verbose && level == "info" {
		level = "debug"
	}
	logger := observability.NewLogger(logOut, level, cfg.Log.Format)

	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	var provider llm.Provider
	if needProvider {
		if provider, err = llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.Proxy)); err != nil {
			return nil, fmt.Errorf("initialize LLM provider: %w", err)
		}
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		limiter:  limiter,
		provider: provider,
	}

	var fetcher pipeline.WeatherFetcher
	if cfg.Weather.Enabled {
		a.weather = weather.NewClient(cfg.Weather, cfg.Proxy,
			weather.WithLimiter(limiter),
			weather.WithMetrics(metrics),
			weather.WithLogger(logger),
		)
		fetcher = a.weather
	} else {
		logger.Info("weather enrichment disabled")
	}

	a.pipeline = pipeline.NewPipeline(provider, fetcher,
		pipeline.WithLimiter(limiter),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logger),
		pipeline.WithLLMSettings(cfg.LLM),
	)

	providerName := "none"
	if provider != nil {
		providerName = provider.Name()
	}
	logger.Debug("pipeline ready",
		"provider", providerName,
		"model", cfg.LLM.Model,
		"weather", cfg.Weather.Enabled,
	)
	return a, nil
}

// loadFacts reads a fact sheet from a YAML or JSON file, or stdin for "-".
func loadFacts(path string) (model.FactSheet, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.FactSheet{}, fmt.Errorf("read fact sheet: %w", err)
	}

	var facts model.FactSheet
	// yaml.v3 also accepts JSON documents.
	if err := yaml.Unmarshal(data, &facts); err != nil {
		return model.FactSheet{}, fmt.Errorf("parse fact sheet %s: %w", filepath.Base(path), err)
	}
	return facts, nil
}
