// Package store owns the SQLite connection and schema for todoapp.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// MemoryPath opens a private in-memory database. Useful for tests.
const MemoryPath = ":memory:"

// Manager holds the application database connection.
type Manager struct {
	path   string
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// Option configures Open.
type Option func(*Manager)

// WithLogger logs schema changes to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Open opens (creating if necessary) the database at path and brings its
// schema up to date.
func Open(path string, opts ...Option) (*Manager, error) {
	m := &Manager{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}

	dsn := ":memory:?_foreign_keys=on"
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryPath {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := Migrate(context.Background(), db, Schema, m.logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	m.db = db
	return m, nil
}

// DB returns the underlying connection pool.
func (m *Manager) DB() *sql.DB {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db
}

// Path returns the database file path.
func (m *Manager) Path() string {
	return m.path
}

// Ping verifies the connection is alive.
func (m *Manager) Ping() error {
	db := m.DB()
	if db == nil {
		return fmt.Errorf("database is closed")
	}
	return db.Ping()
}

// Close closes the database. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
