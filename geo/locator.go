package geo

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

// ErrLocationUnavailable is returned when no usable position could be
// acquired within the timeout. Callers fall back to DefaultCenter.
var ErrLocationUnavailable = errors.New("location unavailable")

const defaultLocatorBaseURL = "http://ip-api.com/json"

// Locator resolves a best-effort position for a client IP. The lookup is
// bounded by Timeout; whichever of the response and the deadline settles
// first wins.
type Locator struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// NewLocator returns a Locator with a 5 second acquisition bound.
func NewLocator() *Locator {
	return &Locator{
		BaseURL: defaultLocatorBaseURL,
		Timeout: 5 * time.Second,
		Client:  &http.Client{},
	}
}

type locatorResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate returns a validated latitude-first pair for ip, or
// ErrLocationUnavailable. A successful lookup with out-of-range values is
// still treated as failure.
func (l *Locator) Locate(ctx context.Context, ip string) ([2]float64, error) {
	logger := common.GetLoggerWith(common.LoggerNameGeo)

	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", l.BaseURL, ip), nil)
	if err != nil {
		return [2]float64{}, ErrLocationUnavailable
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		logger.Warn("geolocation lookup failed", zap.String("ip", ip), zap.Error(err))
		return [2]float64{}, ErrLocationUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("geolocation lookup failed", zap.String("ip", ip), zap.Int("status", resp.StatusCode))
		return [2]float64{}, ErrLocationUnavailable
	}

	var body locatorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return [2]float64{}, ErrLocationUnavailable
	}
	if body.Status != "success" {
		logger.Warn("geolocation provider rejected lookup",
			zap.String("ip", ip), zap.String("message", body.Message))
		return [2]float64{}, ErrLocationUnavailable
	}

	if !Validate(body.Lat, body.Lon) {
		logger.Warn("geolocation returned out-of-range coordinates",
			zap.Float64("lat", body.Lat), zap.Float64("lon", body.Lon))
		return [2]float64{}, ErrLocationUnavailable
	}

	return Normalize([2]float64{body.Lat, body.Lon}), nil
}

// LocateOrDefault is Locate with the fallback applied.
func (l *Locator) LocateOrDefault(ctx context.Context, ip string) [2]float64 {
	pair, err := l.Locate(ctx, ip)
	if err != nil {
		return DefaultCenter
	}
	return pair
}
