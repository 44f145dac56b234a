package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	DefaultOpenWeatherBaseURL    = "https://api.openweathermap.org/data/2.5"
	DefaultOpenWeatherGeocodeURL = "https://api.openweathermap.org/geo/1.0/direct"
)

// OpenWeatherConfig configures an OpenWeatherClient. Empty URLs fall back to
// the public endpoints.
type OpenWeatherConfig struct {
	APIKey     string
	BaseURL    string
	GeocodeURL string
}

// OpenWeatherClient implements weather.Geocoder and weather.WeatherFetcher
// against OpenWeatherMap.
type OpenWeatherClient struct {
	apiKey     string
	baseURL    string
	geocodeURL string
	client     *http.Client
	logger     *zap.Logger

	geocodeCircuit *gobreaker.CircuitBreaker
	weatherCircuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient fails with weather.ErrMissingAPIKey when no key is set.
func NewOpenWeatherClient(client *http.Client, cfg OpenWeatherConfig, logger *zap.Logger) (*OpenWeatherClient, error) {
	if cfg.APIKey == "" {
		return nil, weather.ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenWeatherBaseURL
	}
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = DefaultOpenWeatherGeocodeURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenWeatherClient{
		apiKey:         cfg.APIKey,
		baseURL:        cfg.BaseURL,
		geocodeURL:     cfg.GeocodeURL,
		client:         client,
		logger:         logger.Named("openweather"),
		geocodeCircuit: newCircuitBreaker("openweather-geocode"),
		weatherCircuit: newCircuitBreaker("openweather-weather"),
	}, nil
}

// Geocode returns the first match for q. Non-200 replies, empty result lists
// and matches without coordinates are reported as weather.ErrCityNotFound.
func (p *OpenWeatherClient) Geocode(ctx context.Context, q weather.CityQuery) (weather.Coordinates, error) {
	query := q.Query()

	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", "1")
	values.Set("appid", p.apiKey)

	p.logger.Debug("geocoding request", zap.String("query", query))
	resp, err := doRequest(ctx, p.client, p.geocodeCircuit, p.geocodeURL+"?"+values.Encode())
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	p.logger.Debug("geocoding response", zap.String("query", query), zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return weather.Coordinates{}, fmt.Errorf("%w: geocode %q returned status %d", weather.ErrCityNotFound, query, resp.StatusCode)
	}

	var matches []struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal(resp.Body, &matches); err != nil {
		return weather.Coordinates{}, fmt.Errorf("decode geocode response for %q: %w", query, err)
	}
	if len(matches) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: no geocode match for %q", weather.ErrCityNotFound, query)
	}
	if matches[0].Lat == nil || matches[0].Lon == nil {
		return weather.Coordinates{}, fmt.Errorf("%w: geocode match for %q has no coordinates", weather.ErrCityNotFound, query)
	}

	return weather.Coordinates{Lat: *matches[0].Lat, Lon: *matches[0].Lon}, nil
}

// CurrentWeather fetches metric current conditions for coords.
func (p *OpenWeatherClient) CurrentWeather(ctx context.Context, coords weather.Coordinates) (weather.UpstreamResponse, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	p.logger.Debug("weather request", zap.Float64("lat", coords.Lat), zap.Float64("lon", coords.Lon))
	resp, err := doRequest(ctx, p.client, p.weatherCircuit, p.baseURL+"/weather?"+values.Encode())
	if err != nil {
		return weather.UpstreamResponse{}, fmt.Errorf("fetch weather: %w", err)
	}
	p.logger.Debug("weather response", zap.Int("status", resp.StatusCode))

	return resp, nil
}
