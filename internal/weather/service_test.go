package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	coords  Coordinates
	err     error
	queries []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, q CityQuery) (Coordinates, error) {
	f.queries = append(f.queries, q.Query())
	return f.coords, f.err
}

type fakeFetcher struct {
	resp  UpstreamResponse
	err   error
	calls []Coordinates
}

func (f *fakeFetcher) CurrentWeather(_ context.Context, coords Coordinates) (UpstreamResponse, error) {
	f.calls = append(f.calls, coords)
	return f.resp, f.err
}

type fakeStore struct {
	favorites []FavoriteCity
	history   []HistoryRecord
	err       error
}

func (s *fakeStore) SaveFavorite(_ context.Context, fav FavoriteCity) (FavoriteCity, error) {
	if s.err != nil {
		return FavoriteCity{}, s.err
	}
	fav.ID = int64(len(s.favorites) + 1)
	s.favorites = append(s.favorites, fav)
	return fav, nil
}

func (s *fakeStore) ListFavorites(context.Context) ([]FavoriteCity, error) {
	return s.favorites, s.err
}

func (s *fakeStore) DeleteFavorite(context.Context, int64) error {
	return s.err
}

func (s *fakeStore) SaveHistory(_ context.Context, rec HistoryRecord) (HistoryRecord, error) {
	if s.err != nil {
		return HistoryRecord{}, s.err
	}
	s.history = append(s.history, rec)
	return rec, nil
}

func (s *fakeStore) Close() error { return nil }

const chicagoWeather = `{"main":{"temp":20,"feels_like":19,"temp_min":18,"temp_max":22,"humidity":40},` +
	`"wind":{"speed":3.5},"clouds":{"all":75},"name":"Chicago"}`

func okResponse(body string) UpstreamResponse {
	return UpstreamResponse{StatusCode: http.StatusOK, Body: []byte(body)}
}

func TestLookupChicago(t *testing.T) {
	geo := &fakeGeocoder{coords: Coordinates{Lat: 41.85, Lon: -87.65}}
	fetch := &fakeFetcher{resp: okResponse(chicagoWeather)}
	svc := NewService(nil, geo, fetch, nil)

	res := svc.Lookup(context.Background(), "Chicago")
	require.True(t, res.OK(), "unexpected error: %+v", res.Err)

	assert.Equal(t, []string{"Chicago,US"}, geo.queries)
	assert.Equal(t, []Coordinates{{Lat: 41.85, Lon: -87.65}}, fetch.calls)

	main := res.Weather["main"].(map[string]any)
	assert.Equal(t, 68.0, main["temp_f"])
	assert.Equal(t, 66.2, main["feels_like_f"])
	assert.Equal(t, 64.4, main["temp_min_f"])
	assert.Equal(t, 71.6, main["temp_max_f"])
	assert.Equal(t, json.Number("20"), main["temp"])

	assert.Equal(t, mild, res.Weather["clothing_suggestions"])
	assert.Equal(t, "Chicago", res.Weather["name"])
}

func TestLookupSendsStateInQuery(t *testing.T) {
	geo := &fakeGeocoder{coords: Coordinates{Lat: 41.85, Lon: -87.65}}
	svc := NewService(nil, geo, &fakeFetcher{resp: okResponse(chicagoWeather)}, nil)

	res := svc.Lookup(context.Background(), "Chicago, IL")
	require.True(t, res.OK())
	assert.Equal(t, []string{"Chicago,IL,US"}, geo.queries)
}

func TestLookupNotFound(t *testing.T) {
	tests := []struct {
		name string
		city string
		geo  *fakeGeocoder
	}{
		{"empty geocode result", "Atlantis", &fakeGeocoder{err: ErrCityNotFound}},
		{"geocode transport failure", "Chicago", &fakeGeocoder{err: errors.New("connection refused")}},
		{"too many commas", "Portland, OR, US", &fakeGeocoder{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetch := &fakeFetcher{resp: okResponse(chicagoWeather)}
			svc := NewService(nil, tt.geo, fetch, nil)

			res := svc.Lookup(context.Background(), tt.city)
			require.False(t, res.OK())
			assert.Equal(t, ErrorNotFound, res.Err.Kind)
			assert.Equal(t, "Could not find coordinates for city: "+tt.city, res.Err.Message)
			assert.Empty(t, fetch.calls, "weather endpoint must not be called")
		})
	}
}

func TestLookupUpstreamError(t *testing.T) {
	body := `{"cod":500,"message":"internal error"}`
	fetch := &fakeFetcher{resp: UpstreamResponse{StatusCode: http.StatusInternalServerError, Body: []byte(body)}}
	svc := NewService(nil, &fakeGeocoder{}, fetch, nil)

	res := svc.Lookup(context.Background(), "Chicago")
	require.False(t, res.OK())
	assert.Equal(t, ErrorUpstream, res.Err.Kind)
	assert.Equal(t, "Weather API error: "+body, res.Err.Message)
}

func TestLookupWithoutMainReturnsPayloadUnchanged(t *testing.T) {
	body := `{"name":"Nowhere","cod":200,"coord":{"lat":1.5,"lon":2}}`
	svc := NewService(nil, &fakeGeocoder{}, &fakeFetcher{resp: okResponse(body)}, nil)

	res := svc.Lookup(context.Background(), "Nowhere")
	require.True(t, res.OK())
	assert.NotContains(t, res.Weather, "clothing_suggestions")

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))
}

func TestLookupAcceptsTrailingWhitespace(t *testing.T) {
	fetch := &fakeFetcher{resp: okResponse("{\"name\":\"Chicago\"}\n  ")}
	svc := NewService(nil, &fakeGeocoder{}, fetch, nil)

	res := svc.Lookup(context.Background(), "Chicago")
	require.True(t, res.OK(), "unexpected error: %+v", res.Err)
	assert.Equal(t, "Chicago", res.Weather["name"])
}

func TestLookupUnexpectedErrors(t *testing.T) {
	tests := []struct {
		name    string
		fetch   *fakeFetcher
		message string
	}{
		{
			name:    "transport failure",
			fetch:   &fakeFetcher{err: errors.New("dial tcp: connection refused")},
			message: "Failed to get weather data: dial tcp: connection refused",
		},
		{
			name:    "malformed json",
			fetch:   &fakeFetcher{resp: okResponse(`{"main":`)},
			message: "Failed to get weather data: decode weather payload: unexpected EOF",
		},
		{
			name:    "not an object",
			fetch:   &fakeFetcher{resp: okResponse(`null`)},
			message: "Failed to get weather data: decode weather payload: not a JSON object",
		},
		{
			name:    "trailing data",
			fetch:   &fakeFetcher{resp: okResponse(`{"main":{"temp":20,"feels_like":19,"temp_min":18,"temp_max":22}} garbage`)},
			message: "Failed to get weather data: decode weather payload: trailing data after JSON object",
		},
		{
			name:    "second object",
			fetch:   &fakeFetcher{resp: okResponse(`{"name":"Chicago"}{"name":"Springfield"}`)},
			message: "Failed to get weather data: decode weather payload: trailing data after JSON object",
		},
		{
			name:    "missing temperature",
			fetch:   &fakeFetcher{resp: okResponse(`{"main":{"temp":20,"feels_like":19,"temp_min":18}}`)},
			message: "Failed to get weather data: missing main.temp_max",
		},
		{
			name:    "non-numeric temperature",
			fetch:   &fakeFetcher{resp: okResponse(`{"main":{"temp":"warm","feels_like":19,"temp_min":18,"temp_max":22}}`)},
			message: "Failed to get weather data: main.temp is not a number",
		},
		{
			name:    "main not an object",
			fetch:   &fakeFetcher{resp: okResponse(`{"main":[]}`)},
			message: "Failed to get weather data: main section is not an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(nil, &fakeGeocoder{}, tt.fetch, nil)

			res := svc.Lookup(context.Background(), "Chicago")
			require.False(t, res.OK())
			assert.Equal(t, ErrorUnexpected, res.Err.Kind)
			assert.Equal(t, tt.message, res.Err.Message)
		})
	}
}

func TestResultMarshalJSON(t *testing.T) {
	out, err := json.Marshal(errorResult(ErrorNotFound, "Could not find coordinates for city: X"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Could not find coordinates for city: X"}`, string(out))

	svc := NewService(nil, &fakeGeocoder{}, &fakeFetcher{resp: okResponse(chicagoWeather)}, nil)
	out, err = json.Marshal(svc.Lookup(context.Background(), "Chicago"))
	require.NoError(t, err)

	var decoded struct {
		Main struct {
			TempF float64 `json:"temp_f"`
		} `json:"main"`
		Clothing ClothingSuggestions `json:"clothing_suggestions"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 68.0, decoded.Main.TempF)
	assert.Equal(t, mild, decoded.Clothing)
}

func TestAddFavorite(t *testing.T) {
	st := &fakeStore{}
	geo := &fakeGeocoder{coords: Coordinates{Lat: 41.85, Lon: -87.65}}
	svc := NewService(st, geo, &fakeFetcher{}, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	fav, err := svc.AddFavorite(context.Background(), "  Chicago, IL ")
	require.NoError(t, err)
	assert.Equal(t, FavoriteCity{ID: 1, Name: "Chicago, IL", Coordinates: "41.85,-87.65", CreatedAt: fixed}, fav)
	assert.Equal(t, []string{"Chicago,IL,US"}, geo.queries)
}

func TestAddFavoriteNotFound(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(st, &fakeGeocoder{err: ErrCityNotFound}, &fakeFetcher{}, nil)

	_, err := svc.AddFavorite(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
	assert.Empty(t, st.favorites)
}

func TestRefreshFavorites(t *testing.T) {
	st := &fakeStore{favorites: []FavoriteCity{{ID: 1, Name: "Chicago"}, {ID: 2, Name: "Nowhere"}}}
	svc := NewService(st, &fakeGeocoder{}, &fakeFetcher{resp: okResponse(chicagoWeather)}, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	saved, err := svc.RefreshFavorites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	require.Len(t, st.history, 2)
	assert.Equal(t, HistoryRecord{
		City:        "Chicago",
		Temperature: 20,
		Humidity:    40,
		WindSpeed:   3.5,
		CloudCover:  75,
		Timestamp:   fixed,
	}, st.history[0])
	assert.Equal(t, "Nowhere", st.history[1].City)
}

func TestRefreshFavoritesSkipsFailedLookups(t *testing.T) {
	st := &fakeStore{favorites: []FavoriteCity{{ID: 1, Name: "Atlantis"}}}
	svc := NewService(st, &fakeGeocoder{err: ErrCityNotFound}, &fakeFetcher{}, nil)

	saved, err := svc.RefreshFavorites(context.Background())
	require.NoError(t, err)
	assert.Zero(t, saved)
	assert.Empty(t, st.history)
}

func TestRefreshFavoritesStoreError(t *testing.T) {
	st := &fakeStore{err: fmt.Errorf("disk full")}
	svc := NewService(st, &fakeGeocoder{}, &fakeFetcher{resp: okResponse(chicagoWeather)}, nil)

	_, err := svc.RefreshFavorites(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestHistoryFromResult(t *testing.T) {
	_, ok := HistoryFromResult("X", errorResult(ErrorUpstream, "boom"), time.Now())
	assert.False(t, ok)

	_, ok = HistoryFromResult("X", Result{Weather: Payload{"name": "X"}}, time.Now())
	assert.False(t, ok)

	rec, ok := HistoryFromResult("X", Result{Weather: Payload{"main": map[string]any{"temp": 1.5}}}, time.Now())
	require.True(t, ok)
	assert.Equal(t, 1.5, rec.Temperature)
	assert.Zero(t, rec.Humidity)
	assert.Zero(t, rec.WindSpeed)
	assert.Zero(t, rec.CloudCover)
}
