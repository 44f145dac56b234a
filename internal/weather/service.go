package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Service sequences geocoding and weather calls into one lookup and manages
// favorite cities.
type Service struct {
	store    Store
	geocoder Geocoder
	fetcher  WeatherFetcher
	logger   *zap.Logger

	now func() time.Time
}

// NewService creates a new Service. A nil logger disables logging.
func NewService(store Store, geocoder Geocoder, fetcher WeatherFetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		geocoder: geocoder,
		fetcher:  fetcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve parses a raw city string and geocodes it. Every failure, parse
// errors and transport errors included, is reported as ErrCityNotFound.
func (s *Service) Resolve(ctx context.Context, city string) (Coordinates, error) {
	q, err := ParseCityQuery(city)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrCityNotFound, err)
	}

	coords, err := s.geocoder.Geocode(ctx, q)
	if err != nil {
		if errors.Is(err, ErrCityNotFound) {
			return Coordinates{}, err
		}
		return Coordinates{}, fmt.Errorf("%w: %v", ErrCityNotFound, err)
	}
	return coords, nil
}

// Lookup resolves the city, fetches current conditions and augments them with
// Fahrenheit temperatures and clothing suggestions. Failures are reported in
// Result.Err, never as a Go error.
func (s *Service) Lookup(ctx context.Context, city string) Result {
	log := s.logger.With(zap.String("city", city))
	log.Info("weather lookup started")

	res := s.lookup(ctx, city, log)
	if res.Err != nil {
		log.Warn("weather lookup failed",
			zap.Stringer("kind", res.Err.Kind),
			zap.String("error", res.Err.Message))
	}
	return res
}

func (s *Service) lookup(ctx context.Context, city string, log *zap.Logger) Result {
	coords, err := s.Resolve(ctx, city)
	if err != nil {
		log.Debug("geocoding failed", zap.Error(err))
		return errorResult(ErrorNotFound, "Could not find coordinates for city: "+city)
	}

	resp, err := s.fetcher.CurrentWeather(ctx, coords)
	if err != nil {
		return unexpected(err)
	}
	if resp.StatusCode != http.StatusOK {
		return errorResult(ErrorUpstream, "Weather API error: "+string(resp.Body))
	}

	payload, err := decodePayload(resp.Body)
	if err != nil {
		return unexpected(err)
	}
	if err := augment(payload); err != nil {
		return unexpected(err)
	}
	return Result{Weather: payload}
}

func errorResult(kind ErrorKind, msg string) Result {
	return Result{Err: &LookupError{Kind: kind, Message: msg}}
}

func unexpected(err error) Result {
	return errorResult(ErrorUnexpected, "Failed to get weather data: "+err.Error())
}

// AddFavorite geocodes name and saves it as a favorite city.
func (s *Service) AddFavorite(ctx context.Context, name string) (FavoriteCity, error) {
	name = strings.TrimSpace(name)

	coords, err := s.Resolve(ctx, name)
	if err != nil {
		return FavoriteCity{}, err
	}

	fav, err := s.store.SaveFavorite(ctx, FavoriteCity{
		Name:        name,
		Coordinates: coords.String(),
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return FavoriteCity{}, fmt.Errorf("save favorite %q: %w", name, err)
	}
	s.logger.Info("favorite city added", zap.String("city", name), zap.Int64("id", fav.ID))
	return fav, nil
}

// Favorites delegates to the underlying store.
func (s *Service) Favorites(ctx context.Context) ([]FavoriteCity, error) {
	return s.store.ListFavorites(ctx)
}

// RemoveFavorite delegates to the underlying store.
func (s *Service) RemoveFavorite(ctx context.Context, id int64) error {
	return s.store.DeleteFavorite(ctx, id)
}

// RefreshFavorites looks up every favorite city in turn and records a history
// entry for each successful lookup. It returns the number of records saved.
func (s *Service) RefreshFavorites(ctx context.Context) (int, error) {
	favs, err := s.store.ListFavorites(ctx)
	if err != nil {
		return 0, fmt.Errorf("list favorites: %w", err)
	}

	saved := 0
	for _, fav := range favs {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		res := s.Lookup(ctx, fav.Name)
		rec, ok := HistoryFromResult(fav.Name, res, s.now())
		if !ok {
			continue
		}
		if _, err := s.store.SaveHistory(ctx, rec); err != nil {
			return saved, fmt.Errorf("save history for %q: %w", fav.Name, err)
		}
		saved++
	}
	return saved, nil
}
