// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jaekwang-park/task-api/internal/adapter"
)

// Client-facing failure messages.
const (
	MsgNotConfigured = "API key de OpenWeatherMap no configurada"
	MsgUnavailable   = "Error al obtener información del clima"
)

// Snapshot is a normalised view of the provider's current-weather payload.
type Snapshot struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature int     `json:"temperature"`
	FeelsLike   int     `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	WindSpeed   float64 `json:"wind_speed"`
}

type Config struct {
	APIKey      string
	BaseURL     string
	DefaultCity string
	// HTTPClient defaults to a client without timeout; requests are bounded
	// by the caller's context.
	HTTPClient *http.Client
}

type Client struct {
	apiKey      string
	baseURL     string
	defaultCity string
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	city := cfg.DefaultCity
	if city == "" {
		city = "Madrid"
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		defaultCity: city,
		httpClient:  hc,
		logger:      logger,
	}
}

type currentWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch returns the current weather for city, or for the configured default
// city when city is empty. Every error is an *adapter.Failure.
func (c *Client) Fetch(ctx context.Context, city string) (Snapshot, error) {
	if c.apiKey == "" {
		return Snapshot{}, adapter.Fail(MsgNotConfigured, nil)
	}
	if city == "" {
		city = c.defaultCity
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "es")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return Snapshot{}, c.fail(ctx, city, fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, c.fail(ctx, city, redactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Snapshot{}, c.fail(ctx, city,
			fmt.Errorf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snapshot{}, c.fail(ctx, city, fmt.Errorf("failed to decode response: %w", err))
	}

	return normalize(payload), nil
}

func (c *Client) fail(ctx context.Context, city string, cause error) error {
	c.logger.ErrorContext(ctx, "openweathermap request failed", "city", city, "error", cause)
	return adapter.Fail(MsgUnavailable, cause)
}

func normalize(p currentWeatherResponse) Snapshot {
	s := Snapshot{
		City:        p.Name,
		Country:     p.Sys.Country,
		Temperature: int(math.Round(p.Main.Temp)),
		FeelsLike:   int(math.Round(p.Main.FeelsLike)),
		Humidity:    int(math.Round(p.Main.Humidity)),
	}
	if len(p.Weather) > 0 {
		s.Description = sentenceCase(p.Weather[0].Description)
		s.Icon = p.Weather[0].Icon
	}
	if p.Wind.Speed != nil {
		s.WindSpeed = *p.Wind.Speed
	}
	return s
}

// sentenceCase upper-cases only the first letter, leaving the rest as sent.
func sentenceCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	// Casers keep state; one per call.
	return cases.Upper(language.Spanish).String(string(r)) + s[size:]
}

// redactURL drops the request URL from transport errors so the API key in
// the query string never reaches the logs.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request: %w", ue.Op, ue.Err)
	}
	return err
}
