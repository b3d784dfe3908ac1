// ABOUTME: Key-value store abstraction and its SQLite implementation
// ABOUTME: Every persisted value lives under one of the app's flat storage keys
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Storage keys. The names match the original browser layout so data exported
// from either side stays interchangeable.
const (
	ReportsKey        = "report_master_om_data"
	ShiftTemplatesKey = "report_master_shift_templates"
	ThemeKey          = "report_master_theme"
	UsersKey          = "report_master_users"
	SessionKey        = "report_master_session"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidBackup = errors.New("invalid backup file")
)

// Store is a flat key-value store. Get returns nil, nil for a missing key.
type Store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
}

// SQLStore keeps values in the kv table of a SQLite database.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(database *sql.DB) *SQLStore {
	return &SQLStore{db: database}
}

// DB exposes the underlying connection.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, string(key)).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(key, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, string(key), value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(key []byte) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, string(key))
	return err
}

func (s *SQLStore) Keys() ([][]byte, error) {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys [][]byte
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, []byte(k))
	}
	return keys, rows.Err()
}

// CopyStore copies every key from src into dst.
func CopyStore(dst, src Store) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}
	for i, k := range keys {
		v, err := src.Get(k)
		if err != nil {
			return i, err
		}
		if v == nil {
			continue
		}
		if err := dst.Set(k, v); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}
