// Package sqlite implements the repository interfaces on an embedded SQLite
// database.
//
// It is the local-development backend (STORE_DRIVER=sqlite) and, opened with
// ":memory:", the store behind the service and server tests. It honours the
// same contract as the Mongo store: ObjectID identifiers, case-insensitive
// subject search, atomic counter increments and Mongo-shaped acknowledgments.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C compiler is
// needed to build or test.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and hands out the collection stores.
type DB struct {
	conn     *sql.DB
	partners *PartnerStore
	requests *RequestStore
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/studymate.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperror.StoreUnavailable(fmt.Errorf("sqlite: opening database: %w", err))
	}

	// A single connection: SQLite serialises writers anyway, and every
	// connection to ":memory:" would otherwise get its own empty database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, apperror.StoreUnavailable(fmt.Errorf("sqlite: pinging database: %w", err))
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{
		conn:     conn,
		partners: &PartnerStore{conn: conn},
		requests: &RequestStore{conn: conn},
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Partners() repository.PartnerRepository { return db.partners }

func (db *DB) Requests() repository.RequestRepository { return db.requests }

func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: pinging database: %w", err)
	}
	return nil
}

// Close closes the connection pool. The context is unused; it exists to
// satisfy repository.Store.
func (db *DB) Close(_ context.Context) error {
	return db.conn.Close()
}

// migrate creates the tables. CREATE ... IF NOT EXISTS makes it safe to run on
// every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS partners (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL DEFAULT '',
			profile_image     TEXT NOT NULL DEFAULT '',
			subject           TEXT NOT NULL DEFAULT '',
			study_mode        TEXT NOT NULL DEFAULT '',
			availability_time TEXT NOT NULL DEFAULT '',
			location          TEXT NOT NULL DEFAULT '',
			experience_level  TEXT NOT NULL DEFAULT '',
			rating            REAL NOT NULL DEFAULT 0,
			email             TEXT NOT NULL DEFAULT '',
			partner_count     INTEGER NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_partners_rating ON partners(rating);
		CREATE INDEX IF NOT EXISTS idx_partners_email ON partners(email);
	`)
	if err != nil {
		return fmt.Errorf("creating partners table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS requests (
			id            TEXT PRIMARY KEY,
			partner_id    TEXT NOT NULL DEFAULT '',
			partner_name  TEXT NOT NULL DEFAULT '',
			partner_email TEXT NOT NULL DEFAULT '',
			profile_image TEXT NOT NULL DEFAULT '',
			subject       TEXT NOT NULL DEFAULT '',
			study_mode    TEXT NOT NULL DEFAULT '',
			message       TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT '',
			user_email    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_requests_user_email ON requests(user_email, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating requests table: %w", err)
	}

	return nil
}
