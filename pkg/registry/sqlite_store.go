package registry

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	return &SQLiteStore{
		path: cfg.Path,
	}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	// Open database with SQLite-specific connection parameters
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection and set PRAGMAs
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Ensure foreign keys are enabled (connection-level setting)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	// Create migration source from embedded FS
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	// Create database driver
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	// Create migration instance
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
}

// CommitTx commits a transaction
func (s *SQLiteStore) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// RollbackTx rolls back a transaction
func (s *SQLiteStore) RollbackTx(tx *sql.Tx) error {
	return tx.Rollback()
}

// CreateRun creates a new derivation run record
func (s *SQLiteStore) CreateRun(ctx context.Context, run *DerivationRun) error {
	query := `
		INSERT INTO derivation_runs (
			id, format, documents, status, schemas_derived, error_count,
			error, started_at, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Format,
		run.Documents,
		run.Status,
		run.SchemasDerived,
		run.ErrorCount,
		run.Error,
		run.StartedAt,
		run.CompletedAt,
		run.CreatedAt,
		run.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a derivation run by ID
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*DerivationRun, error) {
	query := `
		SELECT id, format, documents, status, schemas_derived, error_count,
		       error, started_at, completed_at, created_at, updated_at
		FROM derivation_runs
		WHERE id = ?
	`

	run := &DerivationRun{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Format,
		&run.Documents,
		&run.Status,
		&run.SchemasDerived,
		&run.ErrorCount,
		&run.Error,
		&run.StartedAt,
		&run.CompletedAt,
		&run.CreatedAt,
		&run.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// UpdateRunStatus updates the status and counters of a derivation run
func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, id string, status RunStatus, schemas, errorCount int, errMsg *string) error {
	query := `
		UPDATE derivation_runs
		SET status = ?, schemas_derived = ?, error_count = ?, error = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now()
	var completedAt *time.Time
	if status == RunStatusCompleted || status == RunStatusFailed {
		completedAt = &now
	}

	result, err := s.db.ExecContext(ctx, query, status, schemas, errorCount, errMsg, completedAt, now, id)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// ListRuns lists derivation runs with pagination
func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*DerivationRun, error) {
	query := `
		SELECT id, format, documents, status, schemas_derived, error_count,
		       error, started_at, completed_at, created_at, updated_at
		FROM derivation_runs
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*DerivationRun{}
	for rows.Next() {
		run := &DerivationRun{}
		err := rows.Scan(
			&run.ID,
			&run.Format,
			&run.Documents,
			&run.Status,
			&run.SchemasDerived,
			&run.ErrorCount,
			&run.Error,
			&run.StartedAt,
			&run.CompletedAt,
			&run.CreatedAt,
			&run.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// DeleteRun deletes a derivation run by ID
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	query := `DELETE FROM derivation_runs WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// UpsertSchema inserts or updates a stored schema
func (s *SQLiteStore) UpsertSchema(ctx context.Context, schema *StoredSchema) error {
	query := `
		INSERT INTO resource_schemas (type_name, upstream_type, format, run_id, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(type_name) DO UPDATE SET
			upstream_type = excluded.upstream_type,
			format = excluded.format,
			run_id = excluded.run_id,
			document = excluded.document,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	if schema.CreatedAt.IsZero() {
		schema.CreatedAt = now
	}
	schema.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, query,
		schema.TypeName,
		schema.UpstreamType,
		schema.Format,
		schema.RunID,
		schema.Document,
		schema.CreatedAt,
		schema.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert schema: %w", err)
	}

	return nil
}

// GetSchema retrieves a stored schema by resource type name
func (s *SQLiteStore) GetSchema(ctx context.Context, typeName string) (*StoredSchema, error) {
	query := `
		SELECT type_name, upstream_type, format, run_id, document, created_at, updated_at
		FROM resource_schemas
		WHERE type_name = ?
	`

	stored := &StoredSchema{}
	err := s.db.QueryRowContext(ctx, query, typeName).Scan(
		&stored.TypeName,
		&stored.UpstreamType,
		&stored.Format,
		&stored.RunID,
		&stored.Document,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schema not found: %s", typeName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	return stored, nil
}

// ListSchemas lists stored schemas with pagination
func (s *SQLiteStore) ListSchemas(ctx context.Context, limit, offset int) ([]*StoredSchema, error) {
	query := `
		SELECT type_name, upstream_type, format, run_id, document, created_at, updated_at
		FROM resource_schemas
		ORDER BY type_name
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	schemas := []*StoredSchema{}
	for rows.Next() {
		stored := &StoredSchema{}
		err := rows.Scan(
			&stored.TypeName,
			&stored.UpstreamType,
			&stored.Format,
			&stored.RunID,
			&stored.Document,
			&stored.CreatedAt,
			&stored.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schema: %w", err)
		}
		schemas = append(schemas, stored)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schemas: %w", err)
	}

	return schemas, nil
}

// DeleteSchema deletes a stored schema by resource type name
func (s *SQLiteStore) DeleteSchema(ctx context.Context, typeName string) error {
	query := `DELETE FROM resource_schemas WHERE type_name = ?`

	result, err := s.db.ExecContext(ctx, query, typeName)
	if err != nil {
		return fmt.Errorf("failed to delete schema: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("schema not found: %s", typeName)
	}

	return nil
}

// HealthCheck verifies the database connection is alive
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}
