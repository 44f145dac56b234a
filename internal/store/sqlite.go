package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const schema = `
CREATE TABLE IF NOT EXISTS favorite_cities (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	coordinates TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS weather_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	city        TEXT NOT NULL,
	temperature REAL NOT NULL,
	humidity    REAL NOT NULL,
	wind_speed  REAL NOT NULL,
	cloud_cover REAL NOT NULL,
	timestamp   TEXT NOT NULL
);`

// SQLiteStore implements weather.Store on top of the pure Go sqlite driver.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil && logger != nil {
		logger.Warn("could not set WAL mode", zap.Error(err))
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveFavorite(ctx context.Context, fav weather.FavoriteCity) (weather.FavoriteCity, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO favorite_cities(name, coordinates, created_at) VALUES(?,?,?)`,
		fav.Name, fav.Coordinates, fav.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return weather.FavoriteCity{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return weather.FavoriteCity{}, err
	}
	fav.ID = id
	return fav, nil
}

func (s *SQLiteStore) ListFavorites(ctx context.Context) ([]weather.FavoriteCity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, coordinates, created_at FROM favorite_cities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]weather.FavoriteCity, 0)
	for rows.Next() {
		var fav weather.FavoriteCity
		var created string
		if err := rows.Scan(&fav.ID, &fav.Name, &fav.Coordinates, &created); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			fav.CreatedAt = t
		}
		out = append(out, fav)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteFavorite(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorite_cities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveHistory(ctx context.Context, rec weather.HistoryRecord) (weather.HistoryRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO weather_history(city, temperature, humidity, wind_speed, cloud_cover, timestamp) VALUES(?,?,?,?,?,?)`,
		rec.City, rec.Temperature, rec.Humidity, rec.WindSpeed, rec.CloudCover, rec.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return weather.HistoryRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return weather.HistoryRecord{}, err
	}
	rec.ID = id
	return rec, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ weather.Store = (*SQLiteStore)(nil)
