package registry

import (
	"context"
	"database/sql"
	"time"
)

// RunStatus represents the status of a derivation run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// DerivationRun represents one recorded derivation run
type DerivationRun struct {
	ID             string     `json:"id"`
	Format         string     `json:"format"`
	Documents      int        `json:"documents"`
	Status         RunStatus  `json:"status"`
	SchemasDerived int        `json:"schemas_derived"`
	ErrorCount     int        `json:"error_count"`
	Error          *string    `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// StoredSchema represents a persisted resource schema
type StoredSchema struct {
	TypeName     string    `json:"type_name"`
	UpstreamType string    `json:"upstream_type"`
	Format       string    `json:"format"`
	RunID        string    `json:"run_id"`
	Document     string    `json:"document"` // JSON blob of the ResourceSchema
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store defines the interface for the persistence layer
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Transaction support
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error

	// Run operations
	CreateRun(ctx context.Context, run *DerivationRun) error
	GetRun(ctx context.Context, id string) (*DerivationRun, error)
	UpdateRunStatus(ctx context.Context, id string, status RunStatus, schemas, errorCount int, errMsg *string) error
	ListRuns(ctx context.Context, limit, offset int) ([]*DerivationRun, error)
	DeleteRun(ctx context.Context, id string) error

	// Schema operations
	UpsertSchema(ctx context.Context, s *StoredSchema) error
	GetSchema(ctx context.Context, typeName string) (*StoredSchema, error)
	ListSchemas(ctx context.Context, limit, offset int) ([]*StoredSchema, error)
	DeleteSchema(ctx context.Context, typeName string) error

	// Utility
	HealthCheck(ctx context.Context) error
}
