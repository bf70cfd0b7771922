package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"aquawatch-be/common"
)

func TestCurrentNotConfigured(t *testing.T) {
	c := NewClient("")
	_, err := c.Current(context.Background(), 28.61, 77.21)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCurrentSuccess(t *testing.T) {
	common.SetTestLoggerNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		_, _ = w.Write([]byte(`{
			"weather": [{"main": "Rain"}],
			"main": {"temp": 24.5, "humidity": 78},
			"rain": {"1h": 2.3}
		}`))
	}))
	defer server.Close()

	c := &Client{APIKey: "test-key", BaseURL: server.URL, HTTP: server.Client()}

	conditions, err := c.Current(context.Background(), 28.61, 77.21)
	assert.NoError(t, err)
	assert.Equal(t, [2]float64{28.61, 77.21}, conditions.Location)
	assert.Equal(t, 24.5, conditions.Temperature)
	assert.Equal(t, "Rain", conditions.Condition)
	assert.Equal(t, 78, conditions.Humidity)
	assert.Equal(t, 2.3, conditions.Rainfall)
	assert.False(t, conditions.UpdatedAt.IsZero())
}

func TestCurrentAPIError(t *testing.T) {
	common.SetTestLoggerNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Invalid API key"}`))
	}))
	defer server.Close()

	c := &Client{APIKey: "bad-key", BaseURL: server.URL, HTTP: server.Client()}

	_, err := c.Current(context.Background(), 28.61, 77.21)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestCurrentMissingConditionField(t *testing.T) {
	common.SetTestLoggerNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main": {"temp": 10, "humidity": 50}}`))
	}))
	defer server.Close()

	c := &Client{APIKey: "test-key", BaseURL: server.URL, HTTP: server.Client()}

	conditions, err := c.Current(context.Background(), 0, 0)
	assert.NoError(t, err)
	assert.Empty(t, conditions.Condition)
	assert.Equal(t, 0.0, conditions.Rainfall)
}
