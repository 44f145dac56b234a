package weather

import (
	"fmt"
	"strings"
)

// countryCode is appended to every geocoding query; lookups are US-only.
const countryCode = "US"

// CityQuery is a parsed "City" or "City, State" input.
type CityQuery struct {
	Name  string
	State string
}

// ParseCityQuery trims raw and splits it on a single comma into name and
// state. More than one comma is rejected.
func ParseCityQuery(raw string) (CityQuery, error) {
	raw = strings.TrimSpace(raw)

	parts := strings.Split(raw, ",")
	if len(parts) > 2 {
		return CityQuery{}, fmt.Errorf("%w: expected \"city\" or \"city, state\", got %q", ErrInvalidCityQuery, raw)
	}

	q := CityQuery{Name: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		q.State = strings.TrimSpace(parts[1])
	}
	if q.Name == "" {
		return CityQuery{}, fmt.Errorf("%w: empty city name", ErrInvalidCityQuery)
	}
	return q, nil
}

// Query renders the geocoding query string, e.g. "Chicago,IL,US".
func (q CityQuery) Query() string {
	if q.State != "" {
		return q.Name + "," + q.State + "," + countryCode
	}
	return q.Name + "," + countryCode
}
