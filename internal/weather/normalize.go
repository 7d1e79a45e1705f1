package weather

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/lossreport/internal/model"
)

const (
	dateLayout = "2006-01-02"
	hourLayout = "2006-01-02 15:04"
)

var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// ParseDate parses a loss date in any accepted layout and returns the
// calendar day at UTC midnight.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// isFutureDate compares calendar days only; today is not in the future.
func isFutureDate(date, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return date.After(today)
}

// WeatherAPI history response, reduced to the fields we normalize.
type historyResponse struct {
	Forecast struct {
		Forecastday []forecastDay `json:"forecastday"`
	} `json:"forecast"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type forecastDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempF      *float64 `json:"maxtemp_f"`
		MinTempF      *float64 `json:"mintemp_f"`
		AvgTempF      *float64 `json:"avgtemp_f"`
		TotalPrecipIn *float64 `json:"totalprecip_in"`
		AvgHumidity   *float64 `json:"avghumidity"`
		Condition     struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"day"`
	Hour []hourSample `json:"hour"`
}

type hourSample struct {
	Time    string   `json:"time"`
	GustMph *float64 `json:"gust_mph"`
}

func normalize(hist historyResponse) (model.WeatherSummary, error) {
	if len(hist.Forecast.Forecastday) == 0 {
		return model.WeatherSummary{}, errors.New("no forecast day in weather response")
	}
	fd := hist.Forecast.Forecastday[0]
	day := fd.Day

	if day.MaxTempF == nil || day.MinTempF == nil || day.AvgTempF == nil {
		return model.WeatherSummary{}, errors.New("weather response is missing temperature fields")
	}
	if day.TotalPrecipIn == nil || day.AvgHumidity == nil {
		return model.WeatherSummary{}, errors.New("weather response is missing precipitation or humidity")
	}

	conditions := strings.TrimSpace(day.Condition.Text)
	lower := strings.ToLower(conditions)

	summary := model.WeatherSummary{
		MaxTemp:               formatNumber(*day.MaxTempF) + "°F",
		MinTemp:               formatNumber(*day.MinTempF) + "°F",
		AvgTemp:               formatNumber(*day.AvgTempF) + "°F",
		TotalPrecip:           formatNumber(*day.TotalPrecipIn) + " in",
		Humidity:              formatNumber(*day.AvgHumidity) + "%",
		Conditions:            conditions,
		HailIndicated:         strings.Contains(lower, "hail"),
		ThunderstormIndicated: strings.Contains(lower, "thunder"),
	}

	gust, at, ok := maxGust(fd.Hour)
	if !ok {
		return model.WeatherSummary{}, errors.New("weather response is missing hourly wind gusts")
	}
	summary.MaxWindGust = formatNumber(gust) + " mph"
	summary.MaxWindGustTime = at

	return summary, nil
}

// maxGust returns the highest gust of the day and the first hour, in
// chronological order, that reached it.
func maxGust(hours []hourSample) (float64, string, bool) {
	samples := make([]hourSample, 0, len(hours))
	for _, h := range hours {
		if h.GustMph != nil {
			samples = append(samples, h)
		}
	}
	if len(samples) == 0 {
		return 0, "", false
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return sampleTime(samples[i]).Before(sampleTime(samples[j]))
	})

	best := samples[0]
	for _, s := range samples[1:] {
		if *s.GustMph > *best.GustMph {
			best = s
		}
	}
	return *best.GustMph, clockLabel(best.Time), true
}

func sampleTime(h hourSample) time.Time {
	t, err := time.Parse(hourLayout, strings.TrimSpace(h.Time))
	if err != nil {
		return time.Time{}
	}
	return t
}

func clockLabel(raw string) string {
	if t, err := time.Parse(hourLayout, strings.TrimSpace(raw)); err == nil {
		return t.Format("15:04")
	}
	if i := strings.LastIndex(raw, " "); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
