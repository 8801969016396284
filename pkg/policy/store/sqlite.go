package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend implements Backend using SQLite for persistence.
// It is suitable for single-instance deployments where policy
// definitions must survive restarts.
//
// The database runs in WAL mode with a busy timeout; the connection
// pool is capped at one connection since SQLite supports a single
// writer.
type SQLiteBackend struct {
	db        *sql.DB
	dbPath    string
	closeOnce sync.Once
	closeErr  error

	saveStmt   *sql.Stmt
	getStmt    *sql.Stmt
	listStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// SQLiteBackendConfig configures the SQLite backend.
type SQLiteBackendConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteBackend creates a SQLite policy store with default settings.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	return NewSQLiteBackendWithConfig(SQLiteBackendConfig{DBPath: dbPath})
}

// NewSQLiteBackendWithConfig creates a SQLite policy store with custom
// configuration.
func NewSQLiteBackendWithConfig(cfg SQLiteBackendConfig) (*SQLiteBackend, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{db: db, dbPath: cfg.DBPath}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return backend, nil
}

func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		source BLOB NOT NULL,
		source_file TEXT NOT NULL,
		compilation_id TEXT NOT NULL,
		compiled_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_policies_updated_at ON policies(updated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO policies (id, version, source, source_file, compilation_id, compiled_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			version = excluded.version,
			source = excluded.source,
			source_file = excluded.source_file,
			compilation_id = excluded.compilation_id,
			compiled_at = excluded.compiled_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.getStmt, err = s.db.Prepare(`
		SELECT id, version, source, source_file, compilation_id, compiled_at, updated_at
		FROM policies WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT id, version, source, source_file, compilation_id, compiled_at, updated_at
		FROM policies ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM policies WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// Save stores or replaces a policy record.
func (s *SQLiteBackend) Save(ctx context.Context, record *PolicyRecord) error {
	now := time.Now().UTC()
	_, err := s.saveStmt.ExecContext(ctx,
		record.ID,
		record.Version,
		record.Source,
		record.SourceFile,
		record.CompilationID,
		record.CompiledAt.UTC().Unix(),
		now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save policy %q: %w", record.ID, err)
	}
	return nil
}

// Get retrieves a policy record by id.
func (s *SQLiteBackend) Get(ctx context.Context, id string) (*PolicyRecord, error) {
	row := s.getStmt.QueryRowContext(ctx, id)
	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy %q: %w", id, err)
	}
	return record, nil
}

// List returns all stored records ordered by id.
func (s *SQLiteBackend) List(ctx context.Context) ([]*PolicyRecord, error) {
	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var records []*PolicyRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate policy rows: %w", err)
	}
	return records, nil
}

// Delete removes a policy record.
func (s *SQLiteBackend) Delete(ctx context.Context, id string) error {
	result, err := s.deleteStmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete policy %q: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database and prepared statements.
func (s *SQLiteBackend) Close() error {
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.saveStmt, s.getStmt, s.listStmt, s.deleteStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*PolicyRecord, error) {
	var record PolicyRecord
	var compiledAt, updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.Version,
		&record.Source,
		&record.SourceFile,
		&record.CompilationID,
		&compiledAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	record.CompiledAt = time.Unix(compiledAt, 0).UTC()
	record.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &record, nil
}
