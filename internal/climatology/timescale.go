package climatology

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wxcompute/rainodds/internal/log"
)

// StationModel is the GORM model backing the stations table.
type StationModel struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
	Days int    `gorm:"not null"`
}

// TableName maps StationModel to the stations table.
func (StationModel) TableName() string { return "stations" }

// DailyProbabilityModel is the GORM model backing one (station, day) row.
type DailyProbabilityModel struct {
	StationID   string  `gorm:"primaryKey"`
	DayIndex    int     `gorm:"primaryKey"`
	Probability float64 `gorm:"not null"`
}

// TableName maps DailyProbabilityModel to the daily_probabilities table.
func (DailyProbabilityModel) TableName() string { return "daily_probabilities" }

// TimescaleStore implements Store over PostgreSQL/TimescaleDB via GORM.
type TimescaleStore struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewTimescaleStore connects to the database with the GORM logger bridged
// to zap, then ensures the schema exists.
func NewTimescaleStore(connectionString string, logger *zap.SugaredLogger) (*TimescaleStore, error) {
	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to TimescaleDB: %w", err)
	}

	if err := db.AutoMigrate(&StationModel{}, &DailyProbabilityModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate climatology schema: %w", err)
	}

	return &TimescaleStore{db: db, logger: logger}, nil
}

// ListStations returns all stations ordered by name.
func (s *TimescaleStore) ListStations(ctx context.Context) ([]Station, error) {
	var models []StationModel
	if err := s.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}

	stations := make([]Station, 0, len(models))
	for _, m := range models {
		stations = append(stations, Station{ID: m.ID, Name: m.Name, Days: m.Days})
	}
	return stations, nil
}

// GetStation returns one station by name.
func (s *TimescaleStore) GetStation(ctx context.Context, name string) (*Station, error) {
	var m StationModel
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("station %q: %w", name, ErrStationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query station: %w", err)
	}
	return &Station{ID: m.ID, Name: m.Name, Days: m.Days}, nil
}

// GetDailyProbabilities returns the station's full probability vector
// ordered by day index.
func (s *TimescaleStore) GetDailyProbabilities(ctx context.Context, name string) ([]float64, error) {
	st, err := s.GetStation(ctx, name)
	if err != nil {
		return nil, err
	}

	var models []DailyProbabilityModel
	if err := s.db.WithContext(ctx).
		Where("station_id = ?", st.ID).
		Order("day_index").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query probabilities: %w", err)
	}

	if len(models) != st.Days {
		return nil, fmt.Errorf("station %q has %d of %d daily probabilities", name, len(models), st.Days)
	}
	probabilities := make([]float64, 0, st.Days)
	for _, m := range models {
		probabilities = append(probabilities, m.Probability)
	}
	return probabilities, nil
}

// UpsertStation stores a station and replaces its probability vector in a
// single transaction.
func (s *TimescaleStore) UpsertStation(ctx context.Context, name string, probabilities []float64) (*Station, error) {
	st := &Station{Name: name, Days: len(probabilities)}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing StationModel
		err := tx.Where("name = ?", name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			st.ID = uuid.New().String()
			if err := tx.Create(&StationModel{ID: st.ID, Name: name, Days: st.Days}).Error; err != nil {
				return fmt.Errorf("failed to insert station: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to query station: %w", err)
		default:
			st.ID = existing.ID
			if err := tx.Model(&existing).Update("days", st.Days).Error; err != nil {
				return fmt.Errorf("failed to update station: %w", err)
			}
			if err := tx.Where("station_id = ?", st.ID).
				Delete(&DailyProbabilityModel{}).Error; err != nil {
				return fmt.Errorf("failed to clear probabilities: %w", err)
			}
		}

		rows := make([]DailyProbabilityModel, 0, len(probabilities))
		for day, p := range probabilities {
			rows = append(rows, DailyProbabilityModel{StationID: st.ID, DayIndex: day, Probability: p})
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 500).Error; err != nil {
				return fmt.Errorf("failed to insert probabilities: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Infof("stored climatology for station %s (%d days)", name, len(probabilities))
	}
	return st, nil
}

// Close closes the underlying connection pool.
func (s *TimescaleStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
