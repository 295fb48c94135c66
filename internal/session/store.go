package session

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/desertthunder/shelf/internal/models"
)

const (
	keyToken = "token"
	keyRole  = "role"
)

// Store persists the token and role. Both are written and cleared together.
type Store interface {
	Load() (token string, role models.Role, err error)
	Save(token string, role models.Role) error
	Clear() error
}

// SQLiteStore implements [Store] on the kv_store table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a [SQLiteStore]. The kv_store migration must already have run.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load() (string, models.Role, error) {
	rows, err := s.db.Query(`SELECT key, value FROM kv_store WHERE key IN (?, ?)`, keyToken, keyRole)
	if err != nil {
		return "", "", fmt.Errorf("failed to read session: %w", err)
	}
	defer rows.Close()

	var token, role string
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return "", "", fmt.Errorf("failed to scan session value: %w", err)
		}
		switch k {
		case keyToken:
			token = v
		case keyRole:
			role = v
		}
	}
	if err := rows.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read session: %w", err)
	}

	return token, models.Role(role), nil
}

func (s *SQLiteStore) Save(token string, role models.Role) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	for _, kv := range [][2]string{{keyToken, token}, {keyRole, string(role)}} {
		if _, err := tx.Exec(query, kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to save %s: %w", kv[0], err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM kv_store WHERE key IN (?, ?)`, keyToken, keyRole); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// MemoryStore is an in-process [Store].
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	role  models.Role
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (string, models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.role, nil
}

func (m *MemoryStore) Save(token string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.role = token, role
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.role = "", ""
	return nil
}
