package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/ppiankov/lossreport/internal/llm"
	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/observability"
	"github.com/ppiankov/lossreport/internal/prompt"
	"github.com/ppiankov/lossreport/internal/worker"
)

var (
	// ErrGenerationFailed wraps every provider failure for one section.
	ErrGenerationFailed = errors.New("section generation failed")

	// ErrInvalidRequest is returned for a request without a section id.
	ErrInvalidRequest = errors.New("invalid section request")
)

// WeatherFetcher looks up historical weather. Failures are reported in the
// result, never as an error.
type WeatherFetcher interface {
	Fetch(ctx context.Context, location, lossDate string) model.WeatherResult
}

// endpointer is implemented by providers that call a remote host.
type endpointer interface {
	Endpoint() string
}

// SectionRequest is the input for one section generation.
type SectionRequest struct {
	Section            string          `json:"section"`
	Facts              model.FactSheet `json:"context"`
	CustomInstructions string          `json:"customInstructions,omitempty"`
}

// SectionResponse carries the generated text and the weather used to build it.
type SectionResponse struct {
	Section     string               `json:"section"`
	SectionName string               `json:"sectionName"`
	WeatherData model.WeatherSummary `json:"weatherData"`
}

// Pipeline orchestrates one section generation: weather enrichment when the
// section needs it, prompt assembly, then the provider call.
type Pipeline struct {
	provider        llm.Provider
	weather         WeatherFetcher
	limiter         *worker.Limiter
	metrics         *observability.Metrics
	logger          *slog.Logger
	clock           clockwork.Clock
	model           string
	maxTokens       int
	maxPromptTokens int
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLimiter throttles provider calls per host.
func WithLimiter(l *worker.Limiter) Option {
	return func(p *Pipeline) { p.limiter = l }
}

// WithMetrics records generation outcomes and durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the clock used for duration measurement.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLLMSettings sets the model override and token limits.
func WithLLMSettings(cfg model.LLMConfig) Option {
	return func(p *Pipeline) {
		p.model = cfg.Model
		p.maxTokens = cfg.MaxTokens
		p.maxPromptTokens = cfg.MaxPromptTokens
	}
}

// NewPipeline creates a pipeline. A nil weather fetcher disables enrichment.
func NewPipeline(provider llm.Provider, weather WeatherFetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		weather:  weather,
		logger:   observability.DiscardLogger(),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GenerateSection produces the content for one section.
//
// Weather is looked up only for sections that require it. A failed lookup is
// logged and generation proceeds with an empty summary. Provider failures are
// returned wrapped in ErrGenerationFailed and are never retried.
func (p *Pipeline) GenerateSection(ctx context.Context, req SectionRequest) (*SectionResponse, error) {
	sectionName := strings.TrimSpace(req.Section)
	if sectionName == "" {
		return nil, fmt.Errorf("%w: section is required", ErrInvalidRequest)
	}
	def, known := model.LookupSection(sectionName)
	label := string(def.ID)
	if !known {
		label = "other"
	}

	start := p.clock.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.GenerationDuration.WithLabelValues(label).Observe(p.clock.Since(start).Seconds())
		}
	}()

	weather := p.enrich(ctx, def, req.Facts)
	instruction := prompt.Build(sectionName, req.Facts, weather, req.CustomInstructions)

	estimated := llm.EstimateTokens(instruction)
	if p.metrics != nil {
		p.metrics.PromptTokens.Observe(float64(estimated))
	}
	if p.maxPromptTokens > 0 && estimated > p.maxPromptTokens {
		p.logger.Warn("instruction exceeds prompt budget",
			"section", label,
			"estimated_tokens", estimated,
			"max_prompt_tokens", p.maxPromptTokens,
		)
	}

	text, err := p.generate(ctx, instruction)
	if err != nil {
		p.recordOutcome(label, "error")
		p.logger.Error("section generation failed", "section", label, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrGenerationFailed, sectionName, err)
	}
	p.recordOutcome(label, "success")
	p.logger.Info("section generated", "section", label, "chars", len(text))

	return &SectionResponse{
		Section:     text,
		SectionName: req.Section,
		WeatherData: weather,
	}, nil
}

// Weather returns the summary a section would be generated with.
func (p *Pipeline) Weather(ctx context.Context, section string, facts model.FactSheet) model.WeatherSummary {
	def, _ := model.LookupSection(section)
	return p.enrich(ctx, def, facts)
}

func (p *Pipeline) enrich(ctx context.Context, def model.SectionDef, facts model.FactSheet) model.WeatherSummary {
	if !def.RequiresWeather || p.weather == nil {
		if p.metrics != nil {
			p.metrics.WeatherLookups.WithLabelValues(observability.WeatherOutcomeSkipped).Inc()
		}
		return model.WeatherSummary{}
	}

	result := p.weather.Fetch(ctx, facts.Location(), facts.DateOfLoss.String())
	if !result.Success {
		p.logger.Warn("weather lookup failed, continuing without weather",
			"section", def.ID,
			"error", result.Error,
		)
		return model.WeatherSummary{}
	}
	return result.Data
}

func (p *Pipeline) generate(ctx context.Context, instruction string) (string, error) {
	if p.provider == nil {
		return "", errors.New("no LLM provider configured")
	}
	if e, ok := p.provider.(endpointer); ok {
		if err := p.limiter.Wait(ctx, e.Endpoint()); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := p.provider.Generate(ctx, llm.GenerateRequest{
		Instruction: instruction,
		Model:       p.model,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (p *Pipeline) recordOutcome(section, outcome string) {
	if p.metrics != nil {
		p.metrics.SectionsGenerated.WithLabelValues(section, outcome).Inc()
	}
}
