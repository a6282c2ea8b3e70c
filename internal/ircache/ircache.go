// Package ircache is a SQL-backed cache of compiled IR units, keyed by a
// content hash of the translation unit's source bytes (SPEC_FULL.md §2).
// Grounded on the teacher's internal/database/database.go connection-pool-
// over-database/sql pattern (driver selection by a type string, DSN built
// per driver, a single *sql.DB held behind a mutex) — adapted here from a
// security-scanning connection pool to a single incremental-recompilation
// cache table, with the scan/credential/vulnerability surface dropped since
// it has no role in a compiler cache.
package ircache

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"weakc/internal/ir"
	"weakc/internal/ircodec"
)

// Driver names a supported database/sql driver. sqlite3 requires cgo;
// sqlite (modernc.org/sqlite) is the pure-Go fallback for cgo-less builds.
type Driver string

const (
	SQLite3  Driver = "sqlite3"
	SQLite   Driver = "sqlite"
	MySQL    Driver = "mysql"
	Postgres Driver = "postgres"
	MSSQL    Driver = "sqlserver"
)

// Store is a connection-pooled IR cache. One Store serves one build
// process; concurrent Lookup/Put calls are safe.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// dsn builds the driver-specific data source name, mirroring the teacher's
// per-type switch in DatabaseModule.Connect.
func dsn(driver Driver, path string) (string, error) {
	switch driver {
	case SQLite3, SQLite:
		return path, nil
	case MySQL:
		return path, nil // caller supplies a full DSN, e.g. "user:pass@tcp(host:port)/db"
	case Postgres:
		return path, nil // e.g. "host=... user=... password=... dbname=... sslmode=disable"
	case MSSQL:
		return path, nil // e.g. "server=...;user id=...;password=...;database=..."
	default:
		return "", fmt.Errorf("ircache: unsupported driver %q", driver)
	}
}

// Open connects to the cache database identified by driver/path and
// ensures the cache table exists. path is the sqlite file path for
// SQLite3/SQLite, or a driver-specific DSN for the network drivers.
func Open(driver Driver, path string) (*Store, error) {
	source, err := dsn(driver, path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(driver), source)
	if err != nil {
		return nil, fmt.Errorf("ircache: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ircache: ping %s: %w", driver, err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS ir_cache (
			id       TEXT PRIMARY KEY,
			hash     TEXT UNIQUE NOT NULL,
			payload  BLOB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ircache: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the cached IR unit for hash, if present.
func (s *Store) Lookup(hash string) (*ir.Unit, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM ir_cache WHERE hash = ?`, hash).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ircache: lookup %s: %w", hash, err)
	}

	unit, err := ircodec.Read(bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("ircache: decode %s: %w", hash, err)
	}
	return unit, true, nil
}

// Put stores unit under hash, overwriting any prior entry for the same
// hash (a recompile of identical source bytes).
func (s *Store) Put(hash string, unit *ir.Unit) error {
	var buf bytes.Buffer
	if err := ircodec.Write(&buf, unit); err != nil {
		return fmt.Errorf("ircache: encode %s: %w", hash, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	_, err := s.db.Exec(`
		INSERT INTO ir_cache (id, hash, payload) VALUES (?, ?, ?)
		ON CONFLICT (hash) DO UPDATE SET payload = excluded.payload`,
		id, hash, buf.Bytes())
	if err != nil {
		return fmt.Errorf("ircache: put %s: %w", hash, err)
	}
	return nil
}

// DriverFromDSN guesses a Driver from a CLI-supplied cache target by its
// prefix: "mysql://", "postgres://" and "sqlserver://" select the network
// drivers, "sqlite://" selects the pure-Go SQLite driver, and anything else
// (such as a bare file path) is SQLite3, matching the informal
// convention the CLI's --cache flag documents (SPEC_FULL.md §1 config).
func DriverFromDSN(target string) Driver {
	switch {
	case strings.HasPrefix(target, "mysql://"):
		return MySQL
	case strings.HasPrefix(target, "postgres://"):
		return Postgres
	case strings.HasPrefix(target, "sqlserver://"):
		return MSSQL
	case strings.HasPrefix(target, "sqlite://"):
		return SQLite
	default:
		return SQLite3
	}
}
