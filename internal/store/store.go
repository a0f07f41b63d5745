// Package store is the durable side of the registry: named collections of
// JSON documents keyed by id, backed by a single SQLite file.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Collection names. Profile and Pomodoro hold a single record each.
const (
	Tasks       = "tasks"
	Logs        = "logs"
	Journals    = "journals"
	Profile     = "profile"
	Pomodoro    = "pomodoro"
	Reflections = "reflections"
)

// Record is anything the store can persist.
type Record interface {
	Key() string
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// BaseDir returns the root data directory (~/.mirror).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".mirror"), nil
}

// Open opens (creating if necessary) the registry database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening registry database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the registry database under BaseDir.
func OpenDefault() (*Store, error) {
	base, err := BaseDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(base, "registry.db"))
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or overwrites a single record by its identifier without
// touching other members of the collection.
func Upsert[T Record](s *Store, collection string, item T) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshalling %s record: %w", collection, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data
	`, collection, item.Key(), string(data))
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, item.Key(), err)
	}
	return nil
}

// ReplaceCollection atomically clears the collection and rewrites it from
// items. Used when the in-memory list is the source of truth after a bulk
// edit.
func ReplaceCollection[T Record](s *Store, collection string, items []T) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshalling %s record: %w", collection, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO records (collection, id, data) VALUES (?, ?, ?)",
			collection, item.Key(), string(data),
		); err != nil {
			return fmt.Errorf("writing %s/%s: %w", collection, item.Key(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s replace: %w", collection, err)
	}
	return nil
}

// ReadAll returns every record in the collection. Order is undefined;
// callers sort by timestamp where needed.
func ReadAll[T Record](s *Store, collection string) ([]T, error) {
	rows, err := s.db.Query("SELECT data FROM records WHERE collection = ?", collection)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", collection, err)
		}
		var item T
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("corrupt %s record: %w", collection, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReadOne returns the record with the given id, or ok=false if absent.
func ReadOne[T Record](s *Store, collection, id string) (T, bool, error) {
	var item T
	var data string
	err := s.db.QueryRow(
		"SELECT data FROM records WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return item, false, nil
	}
	if err != nil {
		return item, false, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return item, false, fmt.Errorf("corrupt %s record %s: %w", collection, id, err)
	}
	return item, true, nil
}

// Delete removes a single record. Deleting an absent record is not an error.
func (s *Store) Delete(collection, id string) error {
	_, err := s.db.Exec(
		"DELETE FROM records WHERE collection = ? AND id = ?",
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}
