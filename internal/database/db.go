package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"hydrodash/internal/metrics"
	"hydrodash/internal/models"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
// example: "user:pass@tcp(localhost:3306)/hydrodash?parseTime=true"
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func (db *DB) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stations (
			station_key VARCHAR(255) NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			station_id INT NOT NULL DEFAULT 0,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			summary TEXT NOT NULL,
			href VARCHAR(1024) NOT NULL DEFAULT '',
			periods JSON NULL,
			csv_path VARCHAR(1024) NOT NULL DEFAULT '',
			eval_image_path VARCHAR(1024) NOT NULL DEFAULT '',
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_stations_station_id (station_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// UpsertStation inserts a station or replaces the row with the same key
func (db *DB) UpsertStation(ctx context.Context, st models.Station) error {
	periods, err := encodePeriods(st.Periods)
	if err != nil {
		return fmt.Errorf("failed to encode periods for %s: %w", st.Key, err)
	}

	query := `INSERT INTO stations (station_key, name, station_id, latitude, longitude, summary, href, periods, csv_path, eval_image_path, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON DUPLICATE KEY UPDATE name = VALUES(name), station_id = VALUES(station_id), latitude = VALUES(latitude),
	          longitude = VALUES(longitude), summary = VALUES(summary), href = VALUES(href), periods = VALUES(periods),
	          csv_path = VALUES(csv_path), eval_image_path = VALUES(eval_image_path), updated_at = VALUES(updated_at)`

	queryStart := time.Now()
	_, err = db.conn.ExecContext(ctx, query, st.Key, st.Name, st.StationID, st.Latitude, st.Longitude,
		st.Summary, st.Href, periods, st.CSVPath, st.EvalImagePath, time.Now().UTC())
	metrics.RecordDBQuery("UPSERT", "stations", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to upsert station %s: %w", st.Key, err)
	}
	return nil
}

// GetAllStations retrieves the whole directory ordered by key
func (db *DB) GetAllStations(ctx context.Context) ([]models.Station, error) {
	query := `SELECT station_key, name, station_id, latitude, longitude, summary, href, periods, csv_path, eval_image_path
	          FROM stations ORDER BY station_key`

	queryStart := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("SELECT", "stations", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		var periods sql.NullString
		if err := rows.Scan(&st.Key, &st.Name, &st.StationID, &st.Latitude, &st.Longitude,
			&st.Summary, &st.Href, &periods, &st.CSVPath, &st.EvalImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}

		st.Periods, err = decodePeriods(periods)
		if err != nil {
			return nil, fmt.Errorf("failed to decode periods for %s: %w", st.Key, err)
		}
		stations = append(stations, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stations: %w", err)
	}

	return stations, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func encodePeriods(periods map[string]string) (sql.NullString, error) {
	if len(periods) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(periods)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodePeriods(ns sql.NullString) (map[string]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var periods map[string]string
	if err := json.Unmarshal([]byte(ns.String), &periods); err != nil {
		return nil, err
	}
	return periods, nil
}
