// Package sqlite implements the repository interfaces on SQLite.
//
// SQLite is an embedded database — the whole store is one file inside the
// deployment, no separate server to run. The modernc.org/sqlite driver is a
// pure-Go translation of the SQLite C sources, so there is no CGo and
// cross-compilation stays trivial.
//
// The uniqueness rules the API promises (one email per user, one DNI per
// alumno, one codigo per materia, one nota row per alumno/materia pair) are
// all declared as UNIQUE constraints here. Handlers and services also
// pre-check for friendlier messages, but the constraint is what actually
// holds under concurrency — a pre-check alone is a check-then-act race.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init function.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and carries the repository method sets.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs the migrations.
// Use ":memory:" in tests for a throwaway database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection only. PRAGMAs apply per connection, so a pool would
	// leave foreign keys off everywhere but the connection that ran the
	// Exec below — and a ":memory:" database would be a separate empty
	// database on every pooled connection.
	conn.SetMaxOpenConns(1)

	// Force a real connection now so a bad path fails at startup,
	// not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — necessary for a
	// web server where requests run concurrently against the one file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// SQLite ships with foreign keys OFF for backwards compatibility.
	// The notas table references alumnos and materias, so we need them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it runs unconditionally at every startup.
func (db *DB) migrate() error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"usuarios", `
			CREATE TABLE IF NOT EXISTS usuarios (
				id            TEXT PRIMARY KEY,
				nombre        TEXT NOT NULL,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`},
		{"alumnos", `
			CREATE TABLE IF NOT EXISTS alumnos (
				id         TEXT PRIMARY KEY,
				nombre     TEXT NOT NULL,
				apellido   TEXT NOT NULL,
				dni        TEXT NOT NULL UNIQUE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_alumnos_apellido ON alumnos(apellido, nombre);
		`},
		{"materias", `
			CREATE TABLE IF NOT EXISTS materias (
				id         TEXT PRIMARY KEY,
				nombre     TEXT NOT NULL,
				codigo     TEXT NOT NULL UNIQUE,
				anio       INTEGER NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`},
		// The UNIQUE(alumno_id, materia_id) index is what makes the grade
		// upsert race-free: INSERT ... ON CONFLICT serializes on it.
		{"notas", `
			CREATE TABLE IF NOT EXISTS notas (
				id         TEXT PRIMARY KEY,
				alumno_id  TEXT NOT NULL REFERENCES alumnos(id) ON DELETE CASCADE,
				materia_id TEXT NOT NULL REFERENCES materias(id) ON DELETE CASCADE,
				nota1      REAL,
				nota2      REAL,
				nota3      REAL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (alumno_id, materia_id)
			);
			CREATE INDEX IF NOT EXISTS idx_notas_materia ON notas(materia_id);
		`},
	}

	for _, m := range stmts {
		if _, err := db.conn.Exec(m.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", m.name, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given column (e.g. "alumnos.dni"). The driver exposes constraint
// failures as "constraint failed: UNIQUE constraint failed: <table>.<col>",
// so matching the text is the portable way to classify them.
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
