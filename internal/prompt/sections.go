package prompt

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lossreport/internal/model"
)

type sectionInstruction func(f facts) string

// instructions has one entry per catalog id; see TestInstructions_CoverCatalog.
var instructions = map[model.SectionID]sectionInstruction{
	model.SectionOpening:         openingInstruction,
	model.SectionTableOfContents: tableOfContentsInstruction,
	model.SectionIntroduction:    introductionInstruction,
	model.SectionAuthorization:   authorizationInstruction,
	model.SectionBackground:      backgroundInstruction,
	model.SectionObservations:    observationsInstruction,
	model.SectionMoisture:        moistureInstruction,
	model.SectionMeteorologist:   meteorologistInstruction,
	model.SectionConclusions:     conclusionsInstruction,
	model.SectionRebuttal:        rebuttalInstruction,
	model.SectionLimitations:     limitationsInstruction,
}

func fallbackInstruction(def model.SectionDef) string {
	return fmt.Sprintf(
		"Write the section requested as %q in a formal engineering register. "+
			"Use only the supplied facts and never output placeholders; omit anything that was not supplied.",
		string(def.ID))
}

func openingInstruction(f facts) string {
	var sb strings.Builder
	sb.WriteString("Write a formal cover letter that transmits the report")
	if to := joinNonEmpty(" of ", f.ClientName, f.ClientCompany); to != "" {
		sb.WriteString(" to " + to)
	} else {
		sb.WriteString(" to the client")
	}
	sb.WriteString(". Reference the property address, claim number and date of loss where supplied. ")
	sb.WriteString("State that the site investigation was performed on the investigation date and that the enclosed report presents the findings. ")
	sb.WriteString("Close with the signature block of the engineer and firm listed in the key facts. Keep it under 250 words.")
	return sb.String()
}

func tableOfContentsInstruction(_ facts) string {
	var sb strings.Builder
	sb.WriteString("Produce a numbered table of contents listing exactly these sections in this order, one per line, with no page numbers and no other text:")
	n := 0
	for _, def := range model.WorkflowSections() {
		if def.ID == model.SectionOpening {
			continue
		}
		n++
		sb.WriteString(fmt.Sprintf("\n%d. %s", n, def.Title))
	}
	return sb.String()
}

func introductionInstruction(f facts) string {
	var sb strings.Builder
	sb.WriteString("Write one or two paragraphs introducing the investigation: who requested it, the property, and the purpose, ")
	sb.WriteString("which is to determine the cause and extent of the reported damage")
	if f.ClaimTypes != "" {
		sb.WriteString(" related to " + f.ClaimTypes)
	}
	sb.WriteString(". Do not state conclusions here.")
	return sb.String()
}

func authorizationInstruction(f facts) string {
	var sb strings.Builder
	sb.WriteString("Describe who authorized the investigation and its scope. ")
	sb.WriteString("Present the scope as a short list of tasks: site inspection on the investigation date, documentation of conditions")
	if f.AffectedAreas != "" {
		sb.WriteString(" at the " + f.AffectedAreas)
	}
	sb.WriteString(", review of available weather history for the date of loss, and evaluation of the reported cause")
	if f.ClaimTypes != "" {
		sb.WriteString(" (" + f.ClaimTypes + ")")
	}
	sb.WriteString(". Do not list tasks that were not part of this scope.")
	return sb.String()
}

func backgroundInstruction(f facts) string {
	var sb strings.Builder
	sb.WriteString("Describe the property and the reported event using only the key facts: property type, age, number of stories, size, construction, foundation and roof. ")
	if f.Stories != "" {
		sb.WriteString("Number of stories: " + f.Stories + ". Do not describe any other floor count. ")
	}
	if f.RoofTypes != "" {
		sb.WriteString("The roof coverings are exactly: " + f.RoofTypes + ". ")
	}
	sb.WriteString("Then summarize what was reported to have happened on the date of loss.")
	if f.Notes != "" {
		sb.WriteString("\nBackground notes from the engineer:\n" + f.Notes)
	}
	return sb.String()
}

func observationsInstruction(f facts) string {
	var sb strings.Builder
	sb.WriteString("Describe the site observations and analysis area by area")
	if f.AffectedAreas != "" {
		sb.WriteString(", covering these areas in this order: " + f.AffectedAreas)
	}
	sb.WriteString(". For each area state what was observed and whether it is consistent with the reported cause")
	if f.ClaimTypes != "" {
		sb.WriteString(" (" + f.ClaimTypes + ")")
	}
	sb.WriteString(". Describe only roof coverings from the supplied list.")
	if f.ObservationNotes != "" {
		sb.WriteString("\nField observation notes:\n" + f.ObservationNotes)
	} else {
		sb.WriteString(" No field notes were supplied, so keep the descriptions general and do not invent measurements.")
	}
	return sb.String()
}

func moistureInstruction(f facts) string {
	var sb strings.Builder
	sb.WriteString("Describe the moisture survey: the method, where readings were taken, and what the readings indicate about water intrusion")
	if f.AffectedAreas != "" {
		sb.WriteString(" at the " + f.AffectedAreas)
	}
	sb.WriteString(".")
	if f.MoistureNotes != "" {
		sb.WriteString("\nMoisture survey notes:\n" + f.MoistureNotes)
	} else {
		sb.WriteString(" No moisture readings were supplied; describe the survey approach without stating any readings or values.")
	}
	return sb.String()
}

func meteorologistInstruction(f facts) string {
	var sb strings.Builder
	sb.WriteString("Summarize the historical weather for the property location on the date of loss using only the weather data above. ")
	sb.WriteString("Report temperatures, the maximum wind gust and its time, precipitation and conditions, and whether hail or thunderstorms were indicated. ")
	if f.ClaimTypes != "" {
		sb.WriteString("Relate the data to the reported " + f.ClaimTypes + " without overstating it. ")
	}
	sb.WriteString("If no weather data is given above, state in one sentence that historical weather data was not available and stop.")
	return sb.String()
}

func conclusionsInstruction(f facts) string {
	var sb strings.Builder
	sb.WriteString("State the conclusions as a numbered list, one conclusion per claim type")
	if f.ClaimTypes != "" {
		sb.WriteString(" (" + f.ClaimTypes + ")")
	}
	sb.WriteString(", each tied to the affected areas and the observations. Follow with a short list of recommendations. ")
	sb.WriteString("Introduce no facts, areas or roof types that were not supplied.")
	if f.Notes != "" {
		sb.WriteString("\nEngineer notes:\n" + f.Notes)
	}
	return sb.String()
}

func rebuttalInstruction(f facts) string {
	if f.RebuttalNotes == "" {
		return "Write a brief, professional paragraph stating that the conclusions rest on the documented site observations, the moisture survey and the weather history, and that they would be revisited if new information were provided."
	}
	return "Respond point by point, in a professional and non-adversarial tone, to the following positions. " +
		"Support each response only with the supplied facts and observations.\nPositions to address:\n" + f.RebuttalNotes
}

func limitationsInstruction(_ facts) string {
	return "Write the standard limitations of a forensic property investigation: the findings are based on visual, non-destructive observation at the time of the site visit and on information supplied by others; concealed conditions were not evaluated; the report is for the named client and this claim; and the engineer reserves the right to revise the opinions if new information becomes available. Keep it to one or two paragraphs."
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
