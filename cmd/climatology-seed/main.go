// climatology-seed loads a station's daily rain probabilities into the
// climatology store from a CSV file (day_index,probability per row), or
// synthesizes a random demonstration year. Targets are a SQLite file or a
// PostgreSQL/TimescaleDB connection string.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	station := flag.String("station", "", "Station name to seed (required)")
	csvPath := flag.String("csv", "", "CSV file of day_index,probability rows")
	days := flag.Int("days", 365, "Days to synthesize when no CSV is given")
	seed := flag.Int64("seed", 1, "Seed for synthesized probabilities")
	sqlitePath := flag.String("sqlite", "", "Path to the SQLite climatology database")
	postgresConn := flag.String("postgres", "", "PostgreSQL/TimescaleDB connection string")
	flag.Parse()

	if *station == "" {
		fmt.Fprintln(os.Stderr, "the -station flag is required")
		os.Exit(1)
	}

	var probabilities []float64
	var err error
	if *csvPath != "" {
		probabilities, err = readCSV(*csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading %s: %v\n", *csvPath, err)
			os.Exit(1)
		}
	} else {
		src := rand.New(rand.NewSource(*seed))
		probabilities = make([]float64, *days)
		for i := range probabilities {
			probabilities[i] = src.Float64()
		}
	}

	db, driver, err := openTarget(*sqlitePath, *postgresConn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := seedStation(db, driver, *station, probabilities); err != nil {
		fmt.Fprintf(os.Stderr, "seeding %s: %v\n", *station, err)
		os.Exit(1)
	}
	fmt.Printf("seeded station %s with %d daily probabilities\n", *station, len(probabilities))
}

// readCSV parses day_index,probability rows. Rows may appear in any order;
// the day indices must form a gapless range starting at zero.
func readCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	byDay := make(map[int]float64)
	maxDay := -1
	reader := csv.NewReader(f)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("expected 2 columns, got %d", len(record))
		}

		day, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("bad day index %q: %w", record[0], err)
		}
		p, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad probability %q: %w", record[1], err)
		}
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("day %d: probability %v outside [0,1]", day, p)
		}
		if _, dup := byDay[day]; dup {
			return nil, fmt.Errorf("duplicate day index %d", day)
		}
		byDay[day] = p
		if day > maxDay {
			maxDay = day
		}
	}

	probabilities := make([]float64, maxDay+1)
	for day := 0; day <= maxDay; day++ {
		p, ok := byDay[day]
		if !ok {
			return nil, fmt.Errorf("missing day index %d", day)
		}
		probabilities[day] = p
	}
	return probabilities, nil
}

func openTarget(sqlitePath, postgresConn string) (*sql.DB, string, error) {
	switch {
	case sqlitePath != "" && postgresConn != "":
		return nil, "", fmt.Errorf("pass only one of -sqlite and -postgres")
	case sqlitePath != "":
		db, err := sql.Open("sqlite", sqlitePath)
		if err != nil {
			return nil, "", fmt.Errorf("opening %s: %w", sqlitePath, err)
		}
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil
	case postgresConn != "":
		db, err := sql.Open("postgres", postgresConn)
		if err != nil {
			return nil, "", fmt.Errorf("connecting to postgres: %w", err)
		}
		return db, "postgres", nil
	default:
		return nil, "", fmt.Errorf("pass one of -sqlite or -postgres")
	}
}

// placeholder renders the driver's positional parameter marker.
func placeholder(driver string, n int) string {
	if driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func seedStation(db *sql.DB, driver, station string, probabilities []float64) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS stations (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			days INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating stations table: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_probabilities (
			station_id  TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
			day_index   INTEGER NOT NULL,
			probability REAL NOT NULL,
			PRIMARY KEY (station_id, day_index)
		)`)
	if err != nil {
		return fmt.Errorf("creating probabilities table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow(
		fmt.Sprintf(`SELECT id FROM stations WHERE name = %s`, placeholder(driver, 1)),
		station).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		id = uuid.New().String()
		if _, err := tx.Exec(
			fmt.Sprintf(`INSERT INTO stations (id, name, days) VALUES (%s, %s, %s)`,
				placeholder(driver, 1), placeholder(driver, 2), placeholder(driver, 3)),
			id, station, len(probabilities)); err != nil {
			return fmt.Errorf("inserting station: %w", err)
		}
	case err != nil:
		return fmt.Errorf("querying station: %w", err)
	default:
		if _, err := tx.Exec(
			fmt.Sprintf(`UPDATE stations SET days = %s WHERE id = %s`,
				placeholder(driver, 1), placeholder(driver, 2)),
			len(probabilities), id); err != nil {
			return fmt.Errorf("updating station: %w", err)
		}
		if _, err := tx.Exec(
			fmt.Sprintf(`DELETE FROM daily_probabilities WHERE station_id = %s`,
				placeholder(driver, 1)),
			id); err != nil {
			return fmt.Errorf("clearing probabilities: %w", err)
		}
	}

	insert, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO daily_probabilities (station_id, day_index, probability)
		VALUES (%s, %s, %s)`,
		placeholder(driver, 1), placeholder(driver, 2), placeholder(driver, 3)))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	for day, p := range probabilities {
		if _, err := insert.Exec(id, day, p); err != nil {
			return fmt.Errorf("inserting day %d: %w", day, err)
		}
	}
	return tx.Commit()
}
