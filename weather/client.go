// Package weather wraps the OpenWeather current-conditions API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"aquawatch-be/common"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ErrNotConfigured is returned when no API key is present; callers degrade
// with user-visible error text instead of failing.
var ErrNotConfigured = errors.New("weather api key is not configured")

// Conditions is the subset of the current-weather response the map uses.
type Conditions struct {
	Location    [2]float64 `json:"location"`
	Temperature float64    `json:"temperature"`
	Condition   string     `json:"condition"`
	Humidity    int        `json:"humidity"`
	Rainfall    float64    `json:"rainfall"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Client fetches conditions by coordinate pair.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type currentWeatherResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Message string `json:"message"`
}

// Current looks up conditions for a latitude-first pair in metric units.
func (c *Client) Current(ctx context.Context, lat, lng float64) (*Conditions, error) {
	if c.APIKey == "" {
		return nil, ErrNotConfigured
	}

	logger := common.GetLoggerWith(common.LoggerNameWeather)

	url := fmt.Sprintf("%s/weather?lat=%f&lon=%f&appid=%s&units=metric", c.BaseURL, lat, lng, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		logger.Warn("weather lookup failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	var body currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("weather lookup failed",
			zap.Int("status", resp.StatusCode), zap.String("message", body.Message))
		return nil, fmt.Errorf("weather api: status %d: %s", resp.StatusCode, body.Message)
	}

	condition := ""
	if len(body.Weather) > 0 {
		condition = body.Weather[0].Main
	}

	return &Conditions{
		Location:    [2]float64{lat, lng},
		Temperature: body.Main.Temp,
		Condition:   condition,
		Humidity:    body.Main.Humidity,
		Rainfall:    body.Rain.OneHour,
		UpdatedAt:   time.Now(),
	}, nil
}
