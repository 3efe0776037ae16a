// Package sqlite opens a SQLite-backed warehouse store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"entgo.io/ent/dialect"
	"github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/tubestar/pkg/warehouse"
)

// InMemory is the path for a private in-memory database.
const InMemory = ":memory:"

// Backend implements warehouse.Backend for SQLite.
type Backend struct{}

var _ warehouse.Backend = Backend{}

func (Backend) Name() string {
	return dialect.SQLite
}

func (Backend) ColumnExistsQuery() string {
	return `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`
}

func (Backend) IsForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func (Backend) IsDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// NewStore opens the SQLite database at dbPath, or a private in-memory
// database for ":memory:". Foreign keys are enforced on every connection.
func NewStore(dbPath string, logger *slog.Logger) (*warehouse.Store, error) {
	memory := dbPath == InMemory || dbPath == ""

	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dsn(dbPath, memory))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each in-memory connection is its own database, so pin the pool to one.
	if memory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return warehouse.New(db, Backend{}, warehouse.WithLogger(logger)), nil
}

func dsn(dbPath string, memory bool) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")

	if memory {
		return "file::memory:?" + params.Encode()
	}
	params.Set("_journal_mode", "WAL")
	return "file:" + dbPath + "?" + params.Encode()
}
