package weather

import (
	"context"
	"errors"
)

var (
	// ErrCityNotFound is returned when a city cannot be resolved to coordinates.
	ErrCityNotFound = errors.New("city not found")
	// ErrInvalidCityQuery is returned for input that is not "name" or "name, state".
	ErrInvalidCityQuery = errors.New("invalid city query")
	// ErrMissingAPIKey is returned when no OpenWeatherMap API key is configured.
	ErrMissingAPIKey = errors.New("openweather api key is not configured")
)

// Geocoder resolves a parsed city query to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, q CityQuery) (Coordinates, error)
}

// WeatherFetcher fetches current conditions for a position and returns the
// raw upstream reply, whatever its status.
type WeatherFetcher interface {
	CurrentWeather(ctx context.Context, coords Coordinates) (UpstreamResponse, error)
}

// Store is the contract for favorite-city and history persistence.
type Store interface {
	SaveFavorite(ctx context.Context, fav FavoriteCity) (FavoriteCity, error)
	ListFavorites(ctx context.Context) ([]FavoriteCity, error)
	DeleteFavorite(ctx context.Context, id int64) error
	SaveHistory(ctx context.Context, rec HistoryRecord) (HistoryRecord, error)
	Close() error
}
