package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lossreport/internal/llm"
	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/observability"
)

type fakeProvider struct {
	mu           sync.Mutex
	instructions []string
	text         string
	err          error
}

func (f *fakeProvider) Name() string                         { return "fake" }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeProvider) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instructions = append(f.instructions, req.Instruction)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Text: f.text}, nil
}

type fakeWeather struct {
	calls  int
	result model.WeatherResult
}

func (f *fakeWeather) Fetch(_ context.Context, _, _ string) model.WeatherResult {
	f.calls++
	return f.result
}

func sheet() model.FactSheet {
	return model.FactSheet{
		DateOfLoss: "2024-05-01",
		Address:    "123 Main St",
		City:       "Austin",
	}
}

func TestGenerateSection_WeatherRelevant(t *testing.T) {
	provider := &fakeProvider{text: "Hail fell."}
	weather := &fakeWeather{result: model.WeatherResult{
		Success: true,
		Data:    model.WeatherSummary{MaxTemp: "88.3°F", HailIndicated: true},
	}}
	metrics := observability.NewMetricsForTesting()
	p := NewPipeline(provider, weather, WithMetrics(metrics))

	resp, err := p.GenerateSection(context.Background(), SectionRequest{
		Section: "Meteorologist",
		Facts:   sheet(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Hail fell.", resp.Section)
	assert.Equal(t, "Meteorologist", resp.SectionName)
	assert.Equal(t, "88.3°F", resp.WeatherData.MaxTemp)
	assert.Equal(t, 1, weather.calls)
	require.Len(t, provider.instructions, 1)
	assert.Contains(t, provider.instructions[0], "High temperature: 88.3°F")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SectionsGenerated.WithLabelValues("meteorologist", "success")))
}

func TestGenerateSection_ExcludedSectionsSkipWeather(t *testing.T) {
	for _, section := range []string{"opening", "TableOfContents", " introduction "} {
		t.Run(section, func(t *testing.T) {
			weather := &fakeWeather{result: model.WeatherResult{Success: true}}
			p := NewPipeline(&fakeProvider{text: "ok"}, weather)

			resp, err := p.GenerateSection(context.Background(), SectionRequest{Section: section, Facts: sheet()})
			require.NoError(t, err)
			assert.Equal(t, 0, weather.calls)
			assert.True(t, resp.WeatherData.IsEmpty())
		})
	}
}

func TestGenerateSection_UnknownSectionStillFetchesWeather(t *testing.T) {
	weather := &fakeWeather{result: model.WeatherResult{Success: true}}
	provider := &fakeProvider{text: "ok"}
	p := NewPipeline(provider, weather)

	_, err := p.GenerateSection(context.Background(), SectionRequest{Section: "appendix", Facts: sheet()})
	require.NoError(t, err)
	assert.Equal(t, 1, weather.calls)
	assert.Contains(t, provider.instructions[0], `"appendix"`)
}

func TestGenerateSection_WeatherFailureDowngrades(t *testing.T) {
	weather := &fakeWeather{result: model.WeatherResult{Success: false, Error: "status 500"}}
	provider := &fakeProvider{text: "Background text."}
	p := NewPipeline(provider, weather)

	resp, err := p.GenerateSection(context.Background(), SectionRequest{Section: "background", Facts: sheet()})
	require.NoError(t, err)
	assert.True(t, resp.WeatherData.IsEmpty())
	assert.NotContains(t, provider.instructions[0], "Weather on the date of loss")
}

func TestGenerateSection_FutureDateNoteReachesPrompt(t *testing.T) {
	note := "Weather data not found for a future date: 2099-01-01"
	weather := &fakeWeather{result: model.WeatherResult{Success: true, Data: model.WeatherSummary{Note: note}}}
	provider := &fakeProvider{text: "ok"}
	p := NewPipeline(provider, weather)

	resp, err := p.GenerateSection(context.Background(), SectionRequest{
		Section: "meteorologist",
		Facts:   model.FactSheet{DateOfLoss: "2099-01-01", Address: "123 Main St"},
	})
	require.NoError(t, err)
	assert.Equal(t, note, resp.WeatherData.Note)
	assert.Contains(t, provider.instructions[0], "Weather data: "+note)
}

func TestGenerateSection_ProviderError(t *testing.T) {
	upstream := errors.New("boom")
	metrics := observability.NewMetricsForTesting()
	p := NewPipeline(&fakeProvider{err: upstream}, nil, WithMetrics(metrics))

	resp, err := p.GenerateSection(context.Background(), SectionRequest{Section: "conclusions"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SectionsGenerated.WithLabelValues("conclusions", "error")))
}

func TestGenerateSection_CustomInstructionsForwarded(t *testing.T) {
	provider := &fakeProvider{text: "ok"}
	p := NewPipeline(provider, nil)

	_, err := p.GenerateSection(context.Background(), SectionRequest{
		Section:            "limitations",
		CustomInstructions: "Mention the inaccessible attic.",
	})
	require.NoError(t, err)
	assert.Contains(t, provider.instructions[0], "Mention the inaccessible attic.")
}

func TestGenerateSection_MissingSection(t *testing.T) {
	provider := &fakeProvider{text: "ok"}
	p := NewPipeline(provider, nil)

	_, err := p.GenerateSection(context.Background(), SectionRequest{Section: "  "})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, provider.instructions)
}

func TestGenerateSection_NoProvider(t *testing.T) {
	p := NewPipeline(nil, nil)

	_, err := p.GenerateSection(context.Background(), SectionRequest{Section: "opening"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}
