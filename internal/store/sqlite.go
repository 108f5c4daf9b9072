package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-destinations/internal/destination"
)

// PlaceStore is the sqlite-backed destination catalog.
type PlaceStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewPlaceStore opens (or creates) the catalog at dbPath. Use ":memory:"
// for a throwaway catalog.
func NewPlaceStore(dbPath string) (*PlaceStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if dbPath == ":memory:" {
		// Every new connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &PlaceStore{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS places (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		population INTEGER NOT NULL DEFAULT 0,
		attractiveness REAL,
		country_code TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_places_coords ON places(lat, lng);
	CREATE INDEX IF NOT EXISTS idx_places_country ON places(country_code);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces places and returns how many rows were written.
func (s *PlaceStore) Upsert(ctx context.Context, places []destination.Place) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO places (id, name, lat, lng, population, attractiveness, country_code)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			lat = excluded.lat,
			lng = excluded.lng,
			population = excluded.population,
			attractiveness = excluded.attractiveness,
			country_code = excluded.country_code,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, p := range places {
		var attr sql.NullFloat64
		if p.Attractiveness != nil {
			attr = sql.NullFloat64{Float64: *p.Attractiveness, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Position.Lat, p.Position.Lon, p.Population, attr, p.CountryCode,
		); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("upserting place %s: %w", p.ID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}
	return written, nil
}

// All returns every place ordered by id.
func (s *PlaceStore) All(ctx context.Context) ([]destination.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, lat, lng, population, attractiveness, country_code
		FROM places ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying places: %w", err)
	}
	return scanPlaces(rows)
}

// Within returns the places within radiusKm of center ordered by id. The
// bounding box narrows the query; the exact distance decides.
func (s *PlaceStore) Within(ctx context.Context, center destination.Position, radiusKm float64) ([]destination.Place, error) {
	bound := destination.BoundAround(center, radiusKm)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, lat, lng, population, attractiveness, country_code
		FROM places
		WHERE lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?
		ORDER BY id`,
		bound.Min.Lat(), bound.Max.Lat(), bound.Min.Lon(), bound.Max.Lon())
	if err != nil {
		return nil, fmt.Errorf("querying places: %w", err)
	}
	all, err := scanPlaces(rows)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, p := range all {
		if destination.DistanceKm(center, p.Position) <= radiusKm {
			out = append(out, p)
		}
	}
	return out, nil
}

func scanPlaces(rows *sql.Rows) ([]destination.Place, error) {
	defer rows.Close()

	var out []destination.Place
	for rows.Next() {
		var (
			p    destination.Place
			attr sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Position.Lat, &p.Position.Lon, &p.Population, &attr, &p.CountryCode); err != nil {
			return nil, fmt.Errorf("scanning place: %w", err)
		}
		if attr.Valid {
			v := attr.Float64
			p.Attractiveness = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating places: %w", err)
	}
	return out, nil
}

// Count returns the number of places in the catalog.
func (s *PlaceStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM places").Scan(&count)
	return count, err
}

func (s *PlaceStore) Close() error {
	return s.db.Close()
}
