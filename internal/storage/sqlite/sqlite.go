package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// HistoryStore keeps flattened survey rows in a SQLite database. Compared to
// the CSV store it pushes the per-survey rate grouping into SQL, which keeps
// trend queries fast as history grows.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (creating if needed) the database at path and runs
// the embedded schema migrations.
func NewHistoryStore(ctx context.Context, path string) (*HistoryStore, error) {
	if path == "" {
		path = "som_history.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database at path '%s': %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database at path '%s': %w", path, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Append inserts rows inside a single transaction.
func (s *HistoryStore) Append(ctx context.Context, rows []storage.HistoryRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (timestamp, category, model, brand, mentioned, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		var position interface{}
		if row.Position != nil {
			position = *row.Position
		}
		ts := row.Timestamp.UTC().Format(time.RFC3339)
		if _, err := stmt.ExecContext(ctx, ts, row.Category, row.Model, row.Brand, row.Mentioned, position); err != nil {
			return fmt.Errorf("failed to insert history row: %w", err)
		}
	}

	return tx.Commit()
}

// RateSeries groups rows by survey timestamp and averages the mentioned flag,
// which is exactly the per-survey mention rate.
func (s *HistoryStore) RateSeries(ctx context.Context, brand string, filter storage.SeriesFilter) ([]models.TimeSeriesPoint, error) {
	query := `
		SELECT timestamp, AVG(mentioned)
		FROM history
		WHERE brand = ?`
	args := []interface{}{brand}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Model != "" {
		query += " AND model = ?"
		args = append(args, filter.Model)
	}
	query += " GROUP BY timestamp ORDER BY timestamp ASC"

	dbRows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer dbRows.Close()

	var points []models.TimeSeriesPoint
	for dbRows.Next() {
		var ts string
		var rate float64
		if err := dbRows.Scan(&ts, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("malformed history timestamp %q: %w", ts, err)
		}
		points = append(points, models.TimeSeriesPoint{Timestamp: parsed, Rate: rate})
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	if len(points) == 0 {
		return nil, storage.ErrNoHistory
	}
	return points, nil
}

// Close closes the underlying database.
func (s *HistoryStore) Close(ctx context.Context) error {
	return s.db.Close()
}
