package weather

import (
	"encoding/json"
	"strconv"
	"time"
)

// Coordinates is a geocoded position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String renders the coordinates as "lat,lon".
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// Payload is the provider's weather object, augmented in place on success.
type Payload map[string]any

// ClothingSuggestions groups suggested items per body area.
type ClothingSuggestions struct {
	Top         []string `json:"top"`
	Bottom      []string `json:"bottom"`
	Outerwear   []string `json:"outerwear"`
	Accessories []string `json:"accessories"`
}

// UpstreamResponse is a raw reply from the weather endpoint.
type UpstreamResponse struct {
	StatusCode int
	Body       []byte
}

// ErrorKind classifies a failed lookup.
type ErrorKind int

const (
	ErrorNotFound ErrorKind = iota + 1
	ErrorUpstream
	ErrorUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNotFound:
		return "not_found"
	case ErrorUpstream:
		return "upstream"
	case ErrorUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// LookupError is a result-level error.
type LookupError struct {
	Kind    ErrorKind
	Message string
}

func (e *LookupError) Error() string {
	return e.Message
}

// Result is either a weather payload or a lookup error. Callers must check
// Err before using Weather.
type Result struct {
	Weather Payload
	Err     *LookupError
}

// OK reports whether the lookup succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// MarshalJSON renders an error result as {"error": "..."} and a successful
// one as the payload itself.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(map[string]string{"error": r.Err.Message})
	}
	return json.Marshal(r.Weather)
}

// FavoriteCity is a saved city with its geocoded coordinates.
type FavoriteCity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Coordinates string    `json:"coordinates"` // "lat,lon"
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryRecord is a point-in-time weather observation for a city.
type HistoryRecord struct {
	ID          int64     `json:"id"`
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	CloudCover  float64   `json:"cloud_cover"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
}
