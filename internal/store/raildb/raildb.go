package raildb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/config"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
)

// DB wraps the relational database holding historical departures and
// station reference data.
type DB struct{ sql *sql.DB }

// Open connects using the configured driver and verifies the connection.
// The training run uses a single connection for its one query; no pooling.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	var d *sql.DB
	var err error
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		d, err = sql.Open("mysql", dsn)
	case "sqlite":
		d, err = sql.Open("sqlite", cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.SetMaxOpenConns(1)
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{sql: d}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// LoadDepartures runs the single read-only join of departures with the
// stations table (twice, for origin and destination coordinates). Delays
// are cleaned to the non-negative domain on the way in.
func (d *DB) LoadDepartures(ctx context.Context) ([]model.Departure, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT d.train_id, d.origin, d.destination, d.hour, d.delay_min,
		       so.lat, so.long, sd.lat, sd.long
		FROM departures d
		JOIN stations so ON so.code = d.origin
		JOIN stations sd ON sd.code = d.destination
		ORDER BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("load departures: %w", err)
	}
	defer rows.Close()
	var out []model.Departure
	for rows.Next() {
		var dep model.Departure
		if err := rows.Scan(&dep.TrainID, &dep.Origin, &dep.Destination, &dep.Hour, &dep.DelayMin,
			&dep.OriginLat, &dep.OriginLong, &dep.DestLat, &dep.DestLong); err != nil {
			return nil, err
		}
		if dep.DelayMin < 0 {
			dep.DelayMin = 0
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

// LoadStation fetches one station's reference row by code.
func (d *DB) LoadStation(ctx context.Context, code string) (model.Station, error) {
	var s model.Station
	row := d.sql.QueryRowContext(ctx, `SELECT code, lat, long FROM stations WHERE code = ?`, code)
	if err := row.Scan(&s.Code, &s.Lat, &s.Long); err != nil {
		return s, fmt.Errorf("load station %q: %w", code, err)
	}
	return s, nil
}

// Migrate creates the schema. Used by the sqlite fixture path for local
// runs and tests; the production MySQL schema is managed externally.
func (d *DB) Migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS stations (
	  code TEXT PRIMARY KEY,
	  lat REAL NOT NULL,
	  long REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS departures (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  train_id TEXT NOT NULL,
	  origin TEXT NOT NULL,
	  destination TEXT NOT NULL,
	  hour INTEGER NOT NULL,
	  delay_min REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_departures_route ON departures(origin, destination);
	`)
	return err
}

// InsertStation upserts one station reference row.
func (d *DB) InsertStation(ctx context.Context, s model.Station) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO stations(code, lat, long) VALUES(?,?,?)
		 ON CONFLICT(code) DO UPDATE SET lat=excluded.lat, long=excluded.long`,
		s.Code, s.Lat, s.Long)
	return err
}

// InsertDeparture stores one historical departure row.
func (d *DB) InsertDeparture(ctx context.Context, dep model.Departure) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO departures(train_id, origin, destination, hour, delay_min) VALUES(?,?,?,?,?)`,
		dep.TrainID, dep.Origin, dep.Destination, dep.Hour, dep.DelayMin)
	return err
}
