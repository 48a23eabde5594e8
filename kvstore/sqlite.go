package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps values in a single kv table of a SQLite database file.
type SQLiteStore struct {
	db *sqlx.DB

	getStmt    *sqlx.Stmt
	setStmt    *sqlx.Stmt
	removeStmt *sqlx.Stmt
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite store: empty database path")
	}
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases prepared statements and closes the DB.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sqlx.Stmt{s.getStmt, s.setStmt, s.removeStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	// WAL lets a reader open the file while the CLI writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.Get(&current, `SELECT value FROM meta WHERE key='schema_version';`)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
            key TEXT PRIMARY KEY,
            value BLOB NOT NULL,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, schemaVersion); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (s *SQLiteStore) prepareStatements() error {
	var err error
	if s.getStmt, err = s.db.Preparex(`SELECT value FROM kv WHERE key=?`); err != nil {
		return err
	}
	if s.setStmt, err = s.db.Preparex(`INSERT INTO kv(key,value,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`); err != nil {
		return err
	}
	if s.removeStmt, err = s.db.Preparex(`DELETE FROM kv WHERE key=?`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Key-value operations
// ---------------------------------------------------------------------------

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.getStmt.GetContext(ctx, &value, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.setStmt.ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// SetMany writes every entry in one transaction.
func (s *SQLiteStore) SetMany(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt := tx.StmtxContext(ctx, s.setStmt)
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Key, e.Value); err != nil {
			return fmt.Errorf("set %q: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	_, err := s.removeStmt.ExecContext(ctx, key)
	return err
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv`)
	return err
}
