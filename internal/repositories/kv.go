package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// TokenKey is the kv key holding the bearer token.
const TokenKey = "token"

// ErrKeyNotFound is returned by [KVRepository.Get] for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// KVRepository stores string values by key.
type KVRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new [KVRepository] with the given database connection
func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key
func (r *KVRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key
func (r *KVRepository) Set(key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *KVRepository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in lexical order
func (r *KVRepository) Keys() ([]string, error) {
	rows, err := r.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// LoadToken returns the persisted bearer token or [shared.ErrNoStoredToken].
func (r *KVRepository) LoadToken() (string, error) {
	token, err := r.Get(TokenKey)
	if errors.Is(err, ErrKeyNotFound) || (err == nil && token == "") {
		return "", shared.ErrNoStoredToken
	}
	return token, err
}

// SaveToken persists the bearer token; an empty token clears it.
func (r *KVRepository) SaveToken(token string) error {
	if token == "" {
		return r.ClearToken()
	}
	return r.Set(TokenKey, token)
}

// ClearToken removes the persisted bearer token.
func (r *KVRepository) ClearToken() error {
	return r.Delete(TokenKey)
}
