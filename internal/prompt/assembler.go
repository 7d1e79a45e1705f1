// Package prompt builds the instruction text sent to the generation service
// for one report section.
//
// The service keeps no memory between sections, so every instruction restates
// the consistency rules and the facts that section needs. Output is a pure
// function of its inputs: the same section, facts, weather and reviewer
// feedback always produce byte-identical text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lossreport/internal/model"
)

// Build assembles the full instruction for sectionID. It never fails; missing
// inputs degrade to omitted text.
func Build(sectionID string, sheet model.FactSheet, weather model.WeatherSummary, customInstructions string) string {
	f := extract(sheet)
	def, known := model.LookupSection(sectionID)

	var sb strings.Builder
	sb.WriteString(globalBlock(f, WeatherNarrative(weather)))
	sb.WriteString("\n\n")
	sb.WriteString(sectionStatement(def))
	sb.WriteString("\n\n")

	if known {
		sb.WriteString(instructions[def.ID](f))
	} else {
		sb.WriteString(fallbackInstruction(def))
	}

	if custom := strings.TrimSpace(customInstructions); custom != "" {
		sb.WriteString("\n\nAdditional instructions from the reviewer:\n")
		sb.WriteString(custom)
		sb.WriteString("\nApply these instructions to this section. They never permit a heading that repeats the section title.")
	}

	return sb.String()
}

func sectionStatement(def model.SectionDef) string {
	title := def.Title
	if title == "" {
		title = "requested"
	}
	return fmt.Sprintf("You are now writing the %q section of the report.", title)
}

// facts holds every fact-sheet value as a display string. Blank and
// placeholder input is already "".
type facts struct {
	DateOfLoss        string
	InvestigationDate string
	InsuredName       string
	ClientName        string
	ClientCompany     string
	ClaimNumber       string
	Location          string
	PropertyType      string
	YearBuilt         string
	Stories           string
	SquareFootage     string
	ConstructionType  string
	FoundationType    string
	RoofTypes         string
	RoofAge           string
	ClaimTypes        string
	AffectedAreas     string
	EngineerName      string
	EngineerTitle     string
	EngineerLicense   string
	CompanyName       string
	Notes             string
	ObservationNotes  string
	MoistureNotes     string
	RebuttalNotes     string
}

func extract(fs model.FactSheet) facts {
	return facts{
		DateOfLoss:        fs.DateOfLoss.String(),
		InvestigationDate: fs.InvestigationDate.String(),
		InsuredName:       fs.InsuredName.String(),
		ClientName:        fs.ClientName.String(),
		ClientCompany:     fs.ClientCompany.String(),
		ClaimNumber:       fs.ClaimNumber.String(),
		Location:          fs.Location(),
		PropertyType:      fs.PropertyType.String(),
		YearBuilt:         fs.YearBuilt.String(),
		Stories:           fs.Stories.String(),
		SquareFootage:     fs.SquareFootage.String(),
		ConstructionType:  fs.ConstructionType.String(),
		FoundationType:    fs.FoundationType.String(),
		RoofTypes:         fs.RoofTypes.Join(),
		RoofAge:           fs.RoofAge.String(),
		ClaimTypes:        fs.ClaimTypes.Join(),
		AffectedAreas:     fs.AffectedAreas.Join(),
		EngineerName:      fs.EngineerName.String(),
		EngineerTitle:     fs.EngineerTitle.String(),
		EngineerLicense:   fs.EngineerLicense.String(),
		CompanyName:       fs.CompanyName.String(),
		Notes:             fs.Notes.String(),
		ObservationNotes:  fs.ObservationNotes.String(),
		MoistureNotes:     fs.MoistureNotes.String(),
		RebuttalNotes:     fs.RebuttalNotes.String(),
	}
}

// WeatherNarrative renders the weather summary for the instruction: the note
// verbatim with a label, a readable block for populated data, or "".
func WeatherNarrative(w model.WeatherSummary) string {
	if w.HasNote() {
		return "Weather data: " + w.Note
	}
	if !w.IsPopulated() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Weather on the date of loss:")
	line := func(label, value string) {
		if value != "" {
			sb.WriteString("\n- " + label + ": " + value)
		}
	}
	line("High temperature", w.MaxTemp)
	line("Low temperature", w.MinTemp)
	line("Average temperature", w.AvgTemp)
	gust := w.MaxWindGust
	if gust != "" && w.MaxWindGustTime != "" {
		gust += " at " + w.MaxWindGustTime
	}
	line("Maximum wind gust", gust)
	line("Total precipitation", w.TotalPrecip)
	line("Average humidity", w.Humidity)
	line("Conditions", w.Conditions)
	line("Hail indicated", yesNo(w.HailIndicated))
	line("Thunderstorms indicated", yesNo(w.ThunderstormIndicated))
	return sb.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
