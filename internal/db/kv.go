package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used for device-local state.
const (
	KeyBlockedUsers     = "blocked_users_cache"
	KeyTryVoxxySession  = "try_voxxy_session_token"
	KeyTryVoxxyLastRun  = "try_voxxy_last_run"
	KeyTryVoxxyResults  = "try_voxxy_results"
	KeyPolicyAcceptance = "policy_acceptance"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// KV is a small JSON key/value store on top of the kv table.
type KV struct {
	db *sql.DB
}

// NewKV wraps an opened database.
func NewKV(database *sql.DB) *KV {
	return &KV{db: database}
}

// GetValue decodes the value stored under key into dst.
func (s *KV) GetValue(key string, dst any) error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// SetValue stores value under key, replacing any previous value.
func (s *KV) SetValue(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func (s *KV) DeleteValue(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
