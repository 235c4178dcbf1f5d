package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite-backed configuration.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens the configuration database and verifies the
// connection.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return &SQLiteProvider{db: db, dbPath: dbPath}, nil
}

// LoadConfig loads the complete configuration from the SQLite database.
func (s *SQLiteProvider) LoadConfig() (*Data, error) {
	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}

	return &Data{Storage: *storage, Controllers: controllers}, nil
}

// GetStorageConfig reads the single-row storage_config table.
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	row := s.db.QueryRow(`
		SELECT COALESCE(sqlite_path, ''), COALESCE(timescaledb_connection, '')
		FROM storage_config LIMIT 1`)

	var sqlitePath, timescaleConn string
	if err := row.Scan(&sqlitePath, &timescaleConn); err != nil {
		if err == sql.ErrNoRows {
			return &StorageData{}, nil
		}
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	}

	storage := &StorageData{}
	if sqlitePath != "" {
		storage.SQLite = &SQLiteData{Path: sqlitePath}
	}
	if timescaleConn != "" {
		storage.TimescaleDB = &TimescaleDBData{ConnectionString: timescaleConn}
	}
	return storage, nil
}

// GetControllers reads the controllers table.
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	rows, err := s.db.Query(`
		SELECT type,
		       COALESCE(listen_addr, ''), COALESCE(port, 0),
		       COALESCE(cert, ''), COALESCE(key, ''),
		       COALESCE(default_trials, 0)
		FROM controllers`)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var (
			c    ControllerData
			rest RESTServerData
		)
		if err := rows.Scan(&c.Type, &rest.ListenAddr, &rest.Port,
			&rest.TLSCert, &rest.TLSKey, &rest.DefaultTrials); err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}
		if c.Type == "rest" {
			c.RESTServer = &rest
		}
		controllers = append(controllers, c)
	}
	return controllers, rows.Err()
}

// Close closes the underlying database handle.
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
