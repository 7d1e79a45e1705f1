package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/observability"
)

const historyBody = `{
  "location": {"name": "Austin"},
  "forecast": {
    "forecastday": [{
      "date": "2024-05-01",
      "day": {
        "maxtemp_f": 88.3,
        "mintemp_f": 67.1,
        "avgtemp_f": 76.5,
        "totalprecip_in": 1.25,
        "avghumidity": 72,
        "condition": {"text": "Moderate or heavy rain with Thunder and Hail"}
      },
      "hour": [
        {"time": "2024-05-01 16:00", "gust_mph": 51.2},
        {"time": "2024-05-01 09:00", "gust_mph": 20.0},
        {"time": "2024-05-01 14:00", "gust_mph": 51.2},
        {"time": "2024-05-01 18:00", "gust_mph": 33.4}
      ]
    }]
  }
}`

func fixedClock() clockwork.Clock {
	return clockwork.NewFakeClockAt(time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC))
}

func testClient(baseURL string, metrics *observability.Metrics) *Client {
	return NewClient(
		model.WeatherConfig{APIKey: "test-key", BaseURL: baseURL, Timeout: 5 * time.Second},
		model.ProxyConfig{},
		WithClock(fixedClock()),
		WithMetrics(metrics),
	)
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "123 Main St, Austin, TX", r.URL.Query().Get("q"))
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("dt"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(historyBody))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	result := testClient(srv.URL, metrics).Fetch(context.Background(), "123 Main St, Austin, TX", "2024-05-01")

	require.True(t, result.Success, result.Error)
	assert.Equal(t, model.WeatherSummary{
		MaxTemp:               "88.3°F",
		MinTemp:               "67.1°F",
		AvgTemp:               "76.5°F",
		MaxWindGust:           "51.2 mph",
		MaxWindGustTime:       "14:00",
		TotalPrecip:           "1.25 in",
		Humidity:              "72%",
		Conditions:            "Moderate or heavy rain with Thunder and Hail",
		HailIndicated:         true,
		ThunderstormIndicated: true,
	}, result.Data)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherLookups.WithLabelValues(observability.WeatherOutcomeSuccess)))
}

func TestClient_Fetch_FutureDateMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	result := testClient(srv.URL, nil).Fetch(context.Background(), "123 Main St", "2099-01-01")

	assert.True(t, result.Success)
	assert.Equal(t, model.WeatherSummary{Note: "Weather data not found for a future date: 2099-01-01"}, result.Data)
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_Fetch_TodayIsNotFuture(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(historyBody))
	}))
	defer srv.Close()

	result := testClient(srv.URL, nil).Fetch(context.Background(), "Austin", "2024-06-15")
	assert.True(t, result.Success)
	assert.False(t, result.Data.HasNote())
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Fetch_MissingInputsReturnEmpty(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()
	c := testClient(srv.URL, nil)

	tests := []struct {
		name     string
		location string
		date     string
	}{
		{"no location", "", "2024-05-01"},
		{"blank location", "   ", "2024-05-01"},
		{"no date", "Austin", ""},
		{"unparsable date", "Austin", "last Tuesday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Fetch(context.Background(), tt.location, tt.date)
			assert.True(t, result.Success)
			assert.True(t, result.Data.IsEmpty())
			assert.Empty(t, result.Error)
		})
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_Fetch_FailuresAreReportedNotReturned(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "api error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
			},
			wantErr: "No matching location found.",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: "status 500",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{malformed`))
			},
			wantErr: "decode response",
		},
		{
			name: "missing fields",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"forecast":{"forecastday":[{"day":{"condition":{"text":"Sunny"}}}]}}`))
			},
			wantErr: "missing temperature",
		},
		{
			name: "no hourly gusts",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"forecast":{"forecastday":[{"day":{"maxtemp_f":80,"mintemp_f":60,"avgtemp_f":70,"totalprecip_in":0,"avghumidity":50,"condition":{"text":"Sunny"}},"hour":[{"time":"2024-05-01 10:00"}]}]}}`))
			},
			wantErr: "missing hourly wind gusts",
		},
		{
			name: "no forecast day",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"forecast":{"forecastday":[]}}`))
			},
			wantErr: "no forecast day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			metrics := observability.NewMetricsForTesting()
			result := testClient(srv.URL, metrics).Fetch(context.Background(), "Austin", "2024-05-01")

			assert.False(t, result.Success)
			assert.Contains(t, result.Error, tt.wantErr)
			assert.True(t, result.Data.IsEmpty())
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherLookups.WithLabelValues(observability.WeatherOutcomeError)))
		})
	}
}

func TestClient_Fetch_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	result := testClient(srv.URL, nil).Fetch(context.Background(), "Austin", "2024-05-01")
	assert.False(t, result.Success)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Fetch_MissingAPIKey(t *testing.T) {
	c := NewClient(model.WeatherConfig{BaseURL: "http://127.0.0.1:1"}, model.ProxyConfig{}, WithClock(fixedClock()))
	result := c.Fetch(context.Background(), "Austin", "2024-05-01")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "API key")
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-05-01", " 2024-05-01 ", "2024-05-01T13:45:00Z", "05/01/2024", "5/1/2024", "2024/05/01"} {
		got, ok := ParseDate(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseDate("yesterday")
	assert.False(t, ok)
}

func TestMaxGust_FirstChronologicalHourWins(t *testing.T) {
	g := func(v float64) *float64 { return &v }
	gust, at, ok := maxGust([]hourSample{
		{Time: "2024-05-01 22:00", GustMph: g(40)},
		{Time: "2024-05-01 03:00", GustMph: g(40)},
		{Time: "2024-05-01 01:00", GustMph: nil},
	})
	require.True(t, ok)
	assert.Equal(t, 40.0, gust)
	assert.Equal(t, "03:00", at)

	_, _, ok = maxGust(nil)
	assert.False(t, ok)
}
