package jsonfile

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
)

// ResultStore writes each survey to its own timestamped JSON file under a
// results directory and reads the newest one back for reporting.
type ResultStore struct {
	dir string
}

// NewResultStore creates the results directory if needed.
func NewResultStore(dir string) (*ResultStore, error) {
	if dir == "" {
		dir = "results"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &ResultStore{dir: dir}, nil
}

// SaveResults writes the survey to som_results_<timestamp>.json.
func (s *ResultStore) SaveResults(ctx context.Context, results []models.QueryResult) error {
	if len(results) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	name := fmt.Sprintf("som_results_%s.json", results[0].Timestamp.UTC().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

// LoadLatest reads back the most recent results file. File names embed the
// survey timestamp, so lexical order is chronological order.
func (s *ResultStore) LoadLatest(ctx context.Context) ([]models.QueryResult, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "som_results_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list results directory: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no results found in %s", s.dir)
	}
	sort.Strings(matches)

	data, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var results []models.QueryResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return results, nil
}

// Close is a no-op for the file store.
func (s *ResultStore) Close(ctx context.Context) error {
	return nil
}

var csvHeader = []string{"timestamp", "category", "model", "brand", "mentioned", "position"}

// HistoryStore appends flattened rows to a single CSV file. Appending keeps
// earlier surveys intact, so the file accumulates the full series over time.
type HistoryStore struct {
	path string
}

// NewHistoryStore creates the parent directory if needed.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if path == "" {
		path = "som_history.csv"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return &HistoryStore{path: path}, nil
}

// Append writes rows to the CSV file, adding the header on first write.
func (s *HistoryStore) Append(ctx context.Context, rows []storage.HistoryRow) error {
	if len(rows) == 0 {
		return nil
	}

	_, statErr := os.Stat(s.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write history header: %w", err)
		}
	}
	for _, row := range rows {
		position := ""
		if row.Position != nil {
			position = strconv.Itoa(*row.Position)
		}
		record := []string{
			row.Timestamp.UTC().Format(time.RFC3339),
			row.Category,
			row.Model,
			row.Brand,
			strconv.FormatBool(row.Mentioned),
			position,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write history row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// RateSeries reads the whole file and groups rows by survey timestamp.
func (s *HistoryStore) RateSeries(ctx context.Context, brand string, filter storage.SeriesFilter) ([]models.TimeSeriesPoint, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNoHistory
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	if len(records) <= 1 {
		return nil, storage.ErrNoHistory
	}

	rows := make([]storage.HistoryRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(csvHeader) {
			return nil, fmt.Errorf("malformed history row: expected %d fields, got %d", len(csvHeader), len(rec))
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("malformed history timestamp %q: %w", rec[0], err)
		}
		mentioned, err := strconv.ParseBool(rec[4])
		if err != nil {
			return nil, fmt.Errorf("malformed history row: %w", err)
		}
		row := storage.HistoryRow{
			Timestamp: ts,
			Category:  rec[1],
			Model:     rec[2],
			Brand:     rec[3],
			Mentioned: mentioned,
		}
		if rec[5] != "" {
			pos, err := strconv.Atoi(rec[5])
			if err != nil {
				return nil, fmt.Errorf("malformed history position %q: %w", rec[5], err)
			}
			row.Position = &pos
		}
		rows = append(rows, row)
	}

	return storage.SeriesFromRows(rows, brand, filter)
}

// Close is a no-op for the file store.
func (s *HistoryStore) Close(ctx context.Context) error {
	return nil
}
