// File: internal/records/store.go
// PostgreSQL run history. Persistence is optional: when no database is
// configured the orchestrator simply runs without a store.
package records

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBPool abstracts pgxpool.Pool for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// RunRecord is one automation attempt.
type RunRecord struct {
	ID           string
	RecordID     string
	Status       string
	Message      string
	ArtifactPath string
	ArtifactURL  string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Store provides the PostgreSQL implementation.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool, log: logger.Named("records")}, nil
}

// EnsureSchema creates the run history table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS ein_runs (
            id            UUID PRIMARY KEY,
            record_id     TEXT NOT NULL,
            status        TEXT NOT NULL,
            message       TEXT NOT NULL DEFAULT '',
            artifact_path TEXT NOT NULL DEFAULT '',
            artifact_url  TEXT NOT NULL DEFAULT '',
            started_at    TIMESTAMPTZ NOT NULL,
            finished_at   TIMESTAMPTZ NOT NULL
        );`)
	if err != nil {
		return fmt.Errorf("failed to ensure run history schema: %w", err)
	}
	return nil
}

// InsertRun writes one attempt. An empty ID is assigned here.
func (s *Store) InsertRun(ctx context.Context, run *RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
        INSERT INTO ein_runs (id, record_id, status, message, artifact_path, artifact_url, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		run.ID, run.RecordID, run.Status, run.Message,
		run.ArtifactPath, run.ArtifactURL,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run for record %s: %w", run.RecordID, err)
	}
	s.log.Debug("Run persisted.", zap.String("record_id", run.RecordID), zap.String("status", run.Status))
	return nil
}

// RunsForRecord lists the attempts for a record, newest first.
func (s *Store) RunsForRecord(ctx context.Context, recordID string) ([]RunRecord, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, record_id, status, message, artifact_path, artifact_url, started_at, finished_at
        FROM ein_runs
        WHERE record_id = $1
        ORDER BY started_at DESC;`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.RecordID, &r.Status, &r.Message,
			&r.ArtifactPath, &r.ArtifactURL, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return runs, nil
}
