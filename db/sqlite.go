package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	StatusLoaded   = "loaded"
	StatusRejected = "rejected"
)

// ModelLoad is one attempt to load the model artifact. Prediction inputs and
// outputs are never written here.
type ModelLoad struct {
	ModelType string    `json:"model_type"`
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum,omitempty"`
	Version   string    `json:"version,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	LoadedAt  time.Time `json:"loaded_at"`
}

type Store struct {
	database *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	database.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS model_loads (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_type VARCHAR(50) NOT NULL,
        path TEXT NOT NULL,
        checksum VARCHAR(64),
        version VARCHAR(50),
        status VARCHAR(20) NOT NULL,
        error TEXT,
        loaded_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_model_loads_loaded_at ON model_loads(loaded_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{database: database}, nil
}

func (s *Store) RecordModelLoad(load ModelLoad) error {
	if s == nil || s.database == nil {
		return errors.New("database not initialized")
	}
	if load.LoadedAt.IsZero() {
		load.LoadedAt = time.Now().UTC()
	}
	_, err := s.database.Exec(`
        INSERT INTO model_loads (model_type, path, checksum, version, status, error, loaded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		load.ModelType, load.Path, load.Checksum, load.Version, load.Status, load.Error, load.LoadedAt)
	return err
}

// RecentModelLoads returns up to limit rows, newest first.
func (s *Store) RecentModelLoads(limit int) ([]ModelLoad, error) {
	if s == nil || s.database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.database.Query(`
        SELECT model_type, path, checksum, version, status, error, loaded_at
        FROM model_loads
        ORDER BY loaded_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := make([]ModelLoad, 0)
	for rows.Next() {
		var load ModelLoad
		var checksum, version, loadErr sql.NullString
		if err := rows.Scan(&load.ModelType, &load.Path, &checksum, &version, &load.Status, &loadErr, &load.LoadedAt); err != nil {
			return nil, err
		}
		load.Checksum = checksum.String
		load.Version = version.String
		load.Error = loadErr.String
		loads = append(loads, load)
	}
	return loads, rows.Err()
}

func (s *Store) Close() error {
	if s == nil || s.database == nil {
		return nil
	}
	return s.database.Close()
}
