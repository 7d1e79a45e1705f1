package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ppiankov/lossreport/internal/model"
	"github.com/ppiankov/lossreport/internal/observability"
	"github.com/ppiankov/lossreport/internal/util"
	"github.com/ppiankov/lossreport/internal/worker"
)

// Client looks up historical weather for a location and calendar date using
// the WeatherAPI history endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *worker.Limiter
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithClock injects the time source used for the future-date rule.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLimiter shares an outbound rate limiter with the client.
func WithLimiter(l *worker.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithMetrics records lookup outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a weather client from configuration.
func NewClient(cfg model.WeatherConfig, proxy model.ProxyConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(proxy.HTTPProxy, proxy.HTTPSProxy, proxy.NoProxy),
			},
		},
		clock:  clockwork.NewRealClock(),
		logger: observability.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the weather summary for location on lossDate.
//
// Missing or unparsable inputs yield an empty successful result. A date after
// today yields a note-only result without contacting the upstream service.
// Lookup failures are reported in the result, never as a Go error, and are
// not retried.
func (c *Client) Fetch(ctx context.Context, location, lossDate string) model.WeatherResult {
	location = strings.TrimSpace(location)
	date, ok := ParseDate(lossDate)
	if location == "" || !ok {
		c.record(observability.WeatherOutcomeEmpty)
		return model.WeatherResult{Success: true}
	}

	if isFutureDate(date, c.clock.Now()) {
		c.record(observability.WeatherOutcomeFuture)
		return model.WeatherResult{
			Success: true,
			Data:    model.WeatherSummary{Note: FutureDateNote(date)},
		}
	}

	summary, err := c.lookup(ctx, location, date)
	if err != nil {
		c.record(observability.WeatherOutcomeError)
		c.logger.Warn("weather lookup failed", "location", location, "date", date.Format(dateLayout), "error", err)
		return model.WeatherResult{Success: false, Error: err.Error()}
	}

	c.record(observability.WeatherOutcomeSuccess)
	return model.WeatherResult{Success: true, Data: summary}
}

// FutureDateNote is the note returned for loss dates after today.
func FutureDateNote(date time.Time) string {
	return "Weather data not found for a future date: " + date.Format(dateLayout)
}

func (c *Client) lookup(ctx context.Context, location string, date time.Time) (model.WeatherSummary, error) {
	if c.apiKey == "" {
		return model.WeatherSummary{}, errors.New("weather API key is not configured")
	}

	params := url.Values{
		"key": {c.apiKey},
		"q":   {location},
		"dt":  {date.Format(dateLayout)},
	}
	fullURL := c.baseURL + "/history.json?" + params.Encode()

	if err := c.limiter.Wait(ctx, fullURL); err != nil {
		return model.WeatherSummary{}, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return model.WeatherSummary{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.WeatherSummary{}, fmt.Errorf("weather request: %w", redactKey(err, c.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return model.WeatherSummary{}, fmt.Errorf("read response: %w", err)
	}

	var hist historyResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &hist) == nil && hist.Error != nil {
			return model.WeatherSummary{}, fmt.Errorf("weather API error (%d): %s", resp.StatusCode, hist.Error.Message)
		}
		return model.WeatherSummary{}, fmt.Errorf("weather API error: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, &hist); err != nil {
		return model.WeatherSummary{}, fmt.Errorf("decode response: %w", err)
	}

	return normalize(hist)
}

func (c *Client) record(outcome string) {
	if c.metrics != nil {
		c.metrics.WeatherLookups.WithLabelValues(outcome).Inc()
	}
}

// redactKey keeps the API key out of error text that reaches operators.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
