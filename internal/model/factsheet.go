package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FactSheet is the structured claim/property context collected from the operator.
// Every field is optional; consumers read values through String/Join so that
// blank input and placeholder tokens always come back as the empty string.
type FactSheet struct {
	DateOfLoss        Text `json:"dateOfLoss,omitempty" yaml:"dateOfLoss,omitempty"`
	InvestigationDate Text `json:"investigationDate,omitempty" yaml:"investigationDate,omitempty"`

	InsuredName   Text `json:"insuredName,omitempty" yaml:"insuredName,omitempty"`
	ClientName    Text `json:"clientName,omitempty" yaml:"clientName,omitempty"`
	ClientCompany Text `json:"clientCompany,omitempty" yaml:"clientCompany,omitempty"`
	ClaimNumber   Text `json:"claimNumber,omitempty" yaml:"claimNumber,omitempty"`

	Address Text `json:"address,omitempty" yaml:"address,omitempty"`
	City    Text `json:"city,omitempty" yaml:"city,omitempty"`
	State   Text `json:"state,omitempty" yaml:"state,omitempty"`
	ZipCode Text `json:"zipCode,omitempty" yaml:"zipCode,omitempty"`

	PropertyType     Text `json:"propertyType,omitempty" yaml:"propertyType,omitempty"`
	YearBuilt        Text `json:"yearBuilt,omitempty" yaml:"yearBuilt,omitempty"`
	Stories          Text `json:"stories,omitempty" yaml:"stories,omitempty"`
	SquareFootage    Text `json:"squareFootage,omitempty" yaml:"squareFootage,omitempty"`
	ConstructionType Text `json:"constructionType,omitempty" yaml:"constructionType,omitempty"`
	FoundationType   Text `json:"foundationType,omitempty" yaml:"foundationType,omitempty"`
	RoofTypes        List `json:"roofTypes,omitempty" yaml:"roofTypes,omitempty"`
	RoofAge          Text `json:"roofAge,omitempty" yaml:"roofAge,omitempty"`

	ClaimTypes    List `json:"claimTypes,omitempty" yaml:"claimTypes,omitempty"`
	AffectedAreas List `json:"affectedAreas,omitempty" yaml:"affectedAreas,omitempty"`

	EngineerName    Text `json:"engineerName,omitempty" yaml:"engineerName,omitempty"`
	EngineerTitle   Text `json:"engineerTitle,omitempty" yaml:"engineerTitle,omitempty"`
	EngineerLicense Text `json:"engineerLicense,omitempty" yaml:"engineerLicense,omitempty"`
	CompanyName     Text `json:"companyName,omitempty" yaml:"companyName,omitempty"`

	Notes            Text `json:"notes,omitempty" yaml:"notes,omitempty"`
	ObservationNotes Text `json:"observationNotes,omitempty" yaml:"observationNotes,omitempty"`
	MoistureNotes    Text `json:"moistureNotes,omitempty" yaml:"moistureNotes,omitempty"`
	RebuttalNotes    Text `json:"rebuttalNotes,omitempty" yaml:"rebuttalNotes,omitempty"`
}

// Location joins the address parts used for the weather lookup.
func (f FactSheet) Location() string {
	var parts []string
	for _, p := range []Text{f.Address, f.City, f.State, f.ZipCode} {
		if s := p.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Text is a fact-sheet scalar. It accepts strings, numbers, booleans and null
// from JSON or YAML and always renders as a trimmed display string.
type Text string

// String returns the display value, or "" when the value is blank or a placeholder.
func (t Text) String() string {
	return clean(string(t))
}

// IsBlank reports whether the value is absent for display purposes.
func (t Text) IsBlank() bool {
	return t.String() == ""
}

func (t *Text) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	*t = Text(displayValue(raw))
	return nil
}

func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	raw, err := decodeYAML(node)
	if err != nil {
		return err
	}
	*t = Text(displayValue(raw))
	return nil
}

// List is a list-valued fact. It accepts an array of scalars or a single
// comma-separated string.
type List []string

// Values returns the non-blank items in input order.
func (l List) Values() []string {
	out := make([]string, 0, len(l))
	for _, item := range l {
		if s := clean(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Join renders the list with a comma-and-space separator.
func (l List) Join() string {
	return strings.Join(l.Values(), ", ")
}

func (l *List) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}
	*l = listValue(raw)
	return nil
}

func (l *List) UnmarshalYAML(node *yaml.Node) error {
	raw, err := decodeYAML(node)
	if err != nil {
		return err
	}
	*l = listValue(raw)
	return nil
}

// decodeJSON keeps numbers as their literal text so claim and license
// numbers survive unchanged.
func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeYAML is decodeJSON for YAML: numeric scalars keep their source text.
func decodeYAML(node *yaml.Node) (interface{}, error) {
	switch {
	case node.Kind == yaml.ScalarNode && (node.ShortTag() == "!!int" || node.ShortTag() == "!!float"):
		return json.Number(node.Value), nil
	case node.Kind == yaml.SequenceNode:
		items := make([]interface{}, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := decodeYAML(child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	}
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func listValue(raw interface{}) List {
	switch v := raw.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make(List, 0, len(v))
		for _, item := range v {
			out = append(out, displayValue(item))
		}
		return out
	case string:
		return List(strings.Split(v, ","))
	default:
		return List{displayValue(v)}
	}
}

func displayValue(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	case []interface{}:
		return listValue(v).Join()
	case map[string]interface{}:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

var placeholderTokens = map[string]bool{
	"n/a":       true,
	"na":        true,
	"n.a.":      true,
	"none":      true,
	"null":      true,
	"nil":       true,
	"undefined": true,
	"tbd":       true,
	"-":         true,
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if placeholderTokens[strings.ToLower(s)] {
		return ""
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return ""
	}
	return s
}
