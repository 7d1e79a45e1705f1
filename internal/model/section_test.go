package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowSections_Order(t *testing.T) {
	var ids []SectionID
	for _, s := range WorkflowSections() {
		ids = append(ids, s.ID)
	}

	assert.Equal(t, []SectionID{
		SectionOpening,
		SectionIntroduction,
		SectionAuthorization,
		SectionBackground,
		SectionObservations,
		SectionMoisture,
		SectionMeteorologist,
		SectionConclusions,
		SectionRebuttal,
		SectionLimitations,
	}, ids)
}

func TestRequiresWeather_ExclusionList(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"opening", false},
		{"  Opening ", false},
		{"tableOfContents", false},
		{"INTRODUCTION", false},
		{"meteorologist", true},
		{"background", true},
		{"appendix", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiresWeather(tt.raw))
		})
	}
}

func TestLookupSection_Fallback(t *testing.T) {
	def, ok := LookupSection(" Appendix ")
	assert.False(t, ok)
	assert.Equal(t, SectionID("appendix"), def.ID)
	assert.Equal(t, "Appendix", def.Title)

	def, ok = LookupSection("Moisture")
	assert.True(t, ok)
	assert.Equal(t, "Survey (Moisture)", def.Title)
}

func TestWeatherSummary_States(t *testing.T) {
	assert.True(t, WeatherSummary{}.IsEmpty())
	assert.True(t, WeatherSummary{Note: "n"}.HasNote())
	assert.False(t, WeatherSummary{Note: "n"}.IsPopulated())
	assert.True(t, WeatherSummary{HailIndicated: true}.IsPopulated())
}
