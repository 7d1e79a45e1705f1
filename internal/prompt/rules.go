package prompt

import "strings"

const rulesText = `You are a licensed forensic engineer drafting one section of a property loss investigation report.

RULES FOR EVERY SECTION:
1. Use only the facts supplied below. Never contradict them and never add facts that are not listed.
2. Do not invent roofing or structural details. Name only the roof types listed, and if none are listed do not name any. Do not change the number of stories and do not add floors, basements, attics or additions that are not supplied.
3. The date of loss and the investigation date are different events. Label each one correctly and never merge, swap or average them.
4. If weather data is missing, or the date of loss is in the future, say so in one brief sentence. Never use "not applicable" style filler in place of data.
5. Never output square-bracketed placeholders or fill-in tokens of any kind. If a fact is not supplied, leave it out of the text entirely.
6. Write body content only. Do not begin with, or include, a heading that repeats the section title; the report supplies that heading.`

// globalBlock returns the block shared by every section: the consistency
// rules, the key facts that are present, and the weather narrative.
func globalBlock(f facts, weatherNarrative string) string {
	var sb strings.Builder
	sb.WriteString(rulesText)
	sb.WriteString("\n\n")
	sb.WriteString(keyFacts(f))
	if weatherNarrative != "" {
		sb.WriteString("\n\n")
		sb.WriteString(weatherNarrative)
	}
	return sb.String()
}

func keyFacts(f facts) string {
	rows := []struct {
		label string
		value string
	}{
		{"Date of loss", f.DateOfLoss},
		{"Investigation date", f.InvestigationDate},
		{"Insured", f.InsuredName},
		{"Client", f.ClientName},
		{"Client company", f.ClientCompany},
		{"Claim number", f.ClaimNumber},
		{"Property address", f.Location},
		{"Property type", f.PropertyType},
		{"Year built", f.YearBuilt},
		{"Number of stories", f.Stories},
		{"Square footage", f.SquareFootage},
		{"Construction", f.ConstructionType},
		{"Foundation", f.FoundationType},
		{"Roof types (complete list)", f.RoofTypes},
		{"Roof age", f.RoofAge},
		{"Claim types", f.ClaimTypes},
		{"Affected areas", f.AffectedAreas},
		{"Engineer", f.EngineerName},
		{"Engineer title", f.EngineerTitle},
		{"Engineer license", f.EngineerLicense},
		{"Engineering firm", f.CompanyName},
	}

	var sb strings.Builder
	sb.WriteString("KEY FACTS:")
	n := 0
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		sb.WriteString("\n- " + r.label + ": " + r.value)
		n++
	}
	if n == 0 {
		sb.WriteString("\nNo case facts were supplied. Write in general professional terms without inventing specifics.")
		return sb.String()
	}
	sb.WriteString("\nAny fact not listed above was not supplied.")
	return sb.String()
}
