package climatology

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store over a SQLite database. Pass ":memory:" as
// the path for an ephemeral store.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLiteStore opens the database, verifies the connection, and creates
// the schema if it is missing.
func NewSQLiteStore(path string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps writes serialized and makes ":memory:"
	// behave as one database instead of one per pooled connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS stations (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			days INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS daily_probabilities (
			station_id  TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
			day_index   INTEGER NOT NULL,
			probability REAL NOT NULL,
			PRIMARY KEY (station_id, day_index)
		);`)
	if err != nil {
		return fmt.Errorf("failed to create climatology schema: %w", err)
	}
	return nil
}

// ListStations returns all stations ordered by name.
func (s *SQLiteStore) ListStations(ctx context.Context) ([]Station, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, days FROM stations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []Station
	for rows.Next() {
		var st Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Days); err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// GetStation returns one station by name.
func (s *SQLiteStore) GetStation(ctx context.Context, name string) (*Station, error) {
	var st Station
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, days FROM stations WHERE name = ?`, name).
		Scan(&st.ID, &st.Name, &st.Days)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("station %q: %w", name, ErrStationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query station: %w", err)
	}
	return &st, nil
}

// GetDailyProbabilities returns the station's full probability vector
// ordered by day index.
func (s *SQLiteStore) GetDailyProbabilities(ctx context.Context, name string) ([]float64, error) {
	st, err := s.GetStation(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT probability FROM daily_probabilities
		WHERE station_id = ? ORDER BY day_index`, st.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query probabilities: %w", err)
	}
	defer rows.Close()

	probabilities := make([]float64, 0, st.Days)
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan probability row: %w", err)
		}
		probabilities = append(probabilities, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(probabilities) != st.Days {
		return nil, fmt.Errorf("station %q has %d of %d daily probabilities", name, len(probabilities), st.Days)
	}
	return probabilities, nil
}

// UpsertStation stores a station and replaces its probability vector in a
// single transaction.
func (s *SQLiteStore) UpsertStation(ctx context.Context, name string, probabilities []float64) (*Station, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	st := Station{Name: name, Days: len(probabilities)}
	err = tx.QueryRowContext(ctx, `SELECT id FROM stations WHERE name = ?`, name).Scan(&st.ID)
	switch {
	case err == sql.ErrNoRows:
		st.ID = uuid.New().String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stations (id, name, days) VALUES (?, ?, ?)`,
			st.ID, st.Name, st.Days); err != nil {
			return nil, fmt.Errorf("failed to insert station: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query station: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE stations SET days = ? WHERE id = ?`, st.Days, st.ID); err != nil {
			return nil, fmt.Errorf("failed to update station: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM daily_probabilities WHERE station_id = ?`, st.ID); err != nil {
			return nil, fmt.Errorf("failed to clear probabilities: %w", err)
		}
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_probabilities (station_id, day_index, probability)
		VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	for day, p := range probabilities {
		if _, err := insert.ExecContext(ctx, st.ID, day, p); err != nil {
			return nil, fmt.Errorf("failed to insert day %d: %w", day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	if s.logger != nil {
		s.logger.Infof("stored climatology for station %s (%d days)", name, len(probabilities))
	}
	return &st, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
