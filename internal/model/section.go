package model

import "strings"

// SectionID identifies a report section. IDs are lower-case; use
// NormalizeSectionID for raw input.
type SectionID string

const (
	SectionOpening         SectionID = "opening"         // Cover letter to the client
	SectionTableOfContents SectionID = "tableofcontents" // Prompt-only, built from the catalog
	SectionIntroduction    SectionID = "introduction"
	SectionAuthorization   SectionID = "authorization"
	SectionBackground      SectionID = "background"
	SectionObservations    SectionID = "observations"
	SectionMoisture        SectionID = "moisture"
	SectionMeteorologist   SectionID = "meteorologist"
	SectionConclusions     SectionID = "conclusions"
	SectionRebuttal        SectionID = "rebuttal"
	SectionLimitations     SectionID = "limitations"
)

// SectionDef is one entry of the static section table.
type SectionDef struct {
	ID              SectionID `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	RequiresWeather bool      `json:"requiresWeather" yaml:"requiresWeather"`
	InWorkflow      bool      `json:"inWorkflow" yaml:"inWorkflow"`
}

// sectionTable is the single source for titles, order and weather relevance.
var sectionTable = []SectionDef{
	{ID: SectionOpening, Title: "Opening Letter", RequiresWeather: false, InWorkflow: true},
	{ID: SectionTableOfContents, Title: "Table of Contents", RequiresWeather: false, InWorkflow: false},
	{ID: SectionIntroduction, Title: "Introduction", RequiresWeather: false, InWorkflow: true},
	{ID: SectionAuthorization, Title: "Authorization and Scope", RequiresWeather: true, InWorkflow: true},
	{ID: SectionBackground, Title: "Background Information", RequiresWeather: true, InWorkflow: true},
	{ID: SectionObservations, Title: "Site Observations and Analysis", RequiresWeather: true, InWorkflow: true},
	{ID: SectionMoisture, Title: "Survey (Moisture)", RequiresWeather: true, InWorkflow: true},
	{ID: SectionMeteorologist, Title: "Meteorologist Report", RequiresWeather: true, InWorkflow: true},
	{ID: SectionConclusions, Title: "Conclusions and Recommendations", RequiresWeather: true, InWorkflow: true},
	{ID: SectionRebuttal, Title: "Rebuttal", RequiresWeather: true, InWorkflow: true},
	{ID: SectionLimitations, Title: "Limitations", RequiresWeather: true, InWorkflow: true},
}

// NormalizeSectionID trims and lower-cases a raw section identifier.
func NormalizeSectionID(raw string) SectionID {
	return SectionID(strings.ToLower(strings.TrimSpace(raw)))
}

// LookupSection resolves a raw id against the table. Unknown ids return a
// fallback entry titled with the trimmed input that still requires weather.
func LookupSection(raw string) (SectionDef, bool) {
	id := NormalizeSectionID(raw)
	for _, def := range sectionTable {
		if def.ID == id {
			return def, true
		}
	}
	return SectionDef{
		ID:              id,
		Title:           strings.TrimSpace(raw),
		RequiresWeather: true,
	}, false
}

// RequiresWeather reports whether a section may trigger a weather lookup.
func RequiresWeather(raw string) bool {
	def, _ := LookupSection(raw)
	return def.RequiresWeather
}

// Title returns the display title for a known id, or the id itself.
func (id SectionID) Title() string {
	def, _ := LookupSection(string(id))
	return def.Title
}

// WorkflowSections returns the ordered sections the review workflow walks.
func WorkflowSections() []SectionDef {
	out := make([]SectionDef, 0, len(sectionTable))
	for _, def := range sectionTable {
		if def.InWorkflow {
			out = append(out, def)
		}
	}
	return out
}

// AllSections returns a copy of the full table, including prompt-only entries.
func AllSections() []SectionDef {
	out := make([]SectionDef, len(sectionTable))
	copy(out, sectionTable)
	return out
}
