package model

// WeatherSummary is the normalized historical weather for the loss date.
// It is either empty, note-only, or populated.
type WeatherSummary struct {
	Note string `json:"note,omitempty"`

	MaxTemp         string `json:"maxTemp,omitempty"`
	MinTemp         string `json:"minTemp,omitempty"`
	AvgTemp         string `json:"avgTemp,omitempty"`
	MaxWindGust     string `json:"maxWindGust,omitempty"`
	MaxWindGustTime string `json:"maxWindGustTime,omitempty"`
	TotalPrecip     string `json:"totalPrecip,omitempty"`
	Humidity        string `json:"humidity,omitempty"`
	Conditions      string `json:"conditions,omitempty"`

	HailIndicated         bool `json:"hailIndicated,omitempty"`
	ThunderstormIndicated bool `json:"thunderstormIndicated,omitempty"`
}

// HasNote reports whether the summary is an explanatory note.
func (w WeatherSummary) HasNote() bool {
	return w.Note != ""
}

// IsPopulated reports whether any normalized weather field is set.
func (w WeatherSummary) IsPopulated() bool {
	return w.MaxTemp != "" || w.MinTemp != "" || w.AvgTemp != "" ||
		w.MaxWindGust != "" || w.MaxWindGustTime != "" || w.TotalPrecip != "" ||
		w.Humidity != "" || w.Conditions != "" ||
		w.HailIndicated || w.ThunderstormIndicated
}

// IsEmpty reports whether no data was attempted or available.
func (w WeatherSummary) IsEmpty() bool {
	return !w.HasNote() && !w.IsPopulated()
}

// WeatherResult wraps a lookup outcome. Success=false carries the failure
// message in Error; callers proceed without weather data.
type WeatherResult struct {
	Success bool           `json:"success"`
	Data    WeatherSummary `json:"data"`
	Error   string         `json:"error,omitempty"`
}
