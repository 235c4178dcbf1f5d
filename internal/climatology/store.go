// Package climatology stores and serves per-station daily rain
// probabilities, the input vectors for the distribution kernel. Backends
// exist for SQLite (file or in-memory) and PostgreSQL/TimescaleDB. Only the
// measured climatology is persisted; computed distributions never are.
package climatology

import (
	"context"
	"errors"
	"fmt"

	"github.com/wxcompute/rainodds/pkg/config"
	"go.uber.org/zap"
)

// ErrStationNotFound indicates the named station does not exist in the store.
var ErrStationNotFound = errors.New("station not found")

// Station identifies one location with a stored daily probability vector.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Days int    `json:"days"`
}

// Store is the interface all climatology backends implement.
type Store interface {
	// ListStations returns all stations with stored climatology.
	ListStations(ctx context.Context) ([]Station, error)

	// GetStation returns one station by name.
	GetStation(ctx context.Context, name string) (*Station, error)

	// GetDailyProbabilities returns the station's probability vector ordered
	// by day index. A station whose stored vector is shorter than its
	// declared day count is an error; probabilities are never zero-filled.
	GetDailyProbabilities(ctx context.Context, name string) ([]float64, error)

	// UpsertStation stores a station and replaces its probability vector.
	UpsertStation(ctx context.Context, name string, probabilities []float64) (*Station, error)

	Close() error
}

// NewStore opens the backend selected by the storage configuration. SQLite
// wins when both backends are configured.
func NewStore(cfg *config.StorageData, logger *zap.SugaredLogger) (Store, error) {
	switch {
	case cfg.SQLite != nil && cfg.SQLite.Path != "":
		return NewSQLiteStore(cfg.SQLite.Path, logger)
	case cfg.TimescaleDB != nil && cfg.TimescaleDB.ConnectionString != "":
		return NewTimescaleStore(cfg.TimescaleDB.ConnectionString, logger)
	default:
		return nil, fmt.Errorf("no climatology storage backend configured")
	}
}
