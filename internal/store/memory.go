package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	favorites map[int64]weather.FavoriteCity
	// key: city, value: time-ordered history
	history map[string][]weather.HistoryRecord
	nextID  int64

	// retention configuration
	maxHistory int           // max number of records per city
	maxAge     time.Duration // optional max age for records
}

// NewMemoryStore creates a new MemoryStore with optional history limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		favorites:  make(map[int64]weather.FavoriteCity),
		history:    make(map[string][]weather.HistoryRecord),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

func (s *MemoryStore) SaveFavorite(_ context.Context, fav weather.FavoriteCity) (weather.FavoriteCity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	fav.ID = s.nextID
	s.favorites[fav.ID] = fav
	return fav, nil
}

// ListFavorites returns favorites in creation order.
func (s *MemoryStore) ListFavorites(_ context.Context) ([]weather.FavoriteCity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.FavoriteCity, 0, len(s.favorites))
	for _, fav := range s.favorites {
		out = append(out, fav)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) DeleteFavorite(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.favorites[id]; !ok {
		return ErrNotFound
	}
	delete(s.favorites, id)
	return nil
}

// SaveHistory appends a record for its city and enforces retention.
func (s *MemoryStore) SaveHistory(_ context.Context, rec weather.HistoryRecord) (weather.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID

	records := append(s.history[rec.City], rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(records) > s.maxHistory {
		over := len(records) - s.maxHistory
		records = records[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(records); i++ {
			if !records[i].Timestamp.Before(cutoff) {
				break
			}
		}
		records = records[i:]
	}

	s.history[rec.City] = records
	return rec, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ weather.Store = (*MemoryStore)(nil)
