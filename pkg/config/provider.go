// Package config defines the rainodds configuration model and its loadable
// backends (YAML files and SQLite databases).
package config

// Provider defines the interface for configuration data sources.
type Provider interface {
	// LoadConfig loads the complete configuration.
	LoadConfig() (*Data, error)

	// GetStorageConfig returns only the storage section.
	GetStorageConfig() (*StorageData, error)

	// GetControllers returns only the controller section.
	GetControllers() ([]ControllerData, error)

	Close() error
}

// Data represents the complete configuration structure.
type Data struct {
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// StorageData selects and configures the climatology backend. Exactly one
// backend should be set; SQLite wins if both are.
type StorageData struct {
	SQLite      *SQLiteData      `json:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

// SQLiteData configures the file-backed climatology database.
type SQLiteData struct {
	Path string `json:"path"`
}

// TimescaleDBData configures the PostgreSQL/TimescaleDB climatology database.
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// ControllerData holds the configuration for the controller backends.
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

// RESTServerData configures the HTTP API controller.
type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
	TLSCert    string `json:"cert,omitempty"`
	TLSKey     string `json:"key,omitempty"`

	// DefaultTrials bounds the Monte Carlo endpoints when the caller does
	// not pass trials explicitly.
	DefaultTrials int `json:"default_trials,omitempty"`
}
