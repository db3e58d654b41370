// Package db provides optional PostgreSQL persistence of run artifacts.
// The spreadsheet stays the source of truth; this is an audit log.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Artifact step names saved during a run.
const (
	StepBrief      = "brief"
	StepArticle    = "article"
	StepPinPayload = "pin_payload"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun records the start of one row run and returns its id.
func (db *DB) CreateRun(ctx context.Context, siteName, sheetName string, rowNumber int, trigger string) (string, error) {
	var id string
	err := db.pool.QueryRow(ctx,
		`INSERT INTO runs (site_name, sheet_name, row_number, trigger, status)
		 VALUES ($1, $2, $3, $4, 'running')
		 RETURNING id`,
		siteName, sheetName, rowNumber, trigger,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun closes a run record with its outcome.
func (db *DB) CompleteRun(ctx context.Context, runID string, success bool, errMessage string) error {
	status := "completed"
	if !success {
		status = "failed"
	}
	_, err := db.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error_message = NULLIF($2, ''), completed_at = NOW() WHERE id = $3`,
		status, errMessage, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveArtifact stores a JSON artifact for a run. Re-saving a step
// overwrites the previous payload.
func (db *DB) SaveArtifact(ctx context.Context, runID, step string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, step, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, step) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, step, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}
	return nil
}

// GetArtifact retrieves a stored artifact's raw JSON. Returns nil when the
// run never saved that step.
func (db *DB) GetArtifact(ctx context.Context, runID, step string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return content, nil
}
