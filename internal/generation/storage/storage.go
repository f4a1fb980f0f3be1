package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Storage persists generation outcomes and job status mutations in
// PostgreSQL. It implements generation.ResultSink.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a Storage over an open connection pool.
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// SaveResult inserts one terminal outcome and returns its storage reference.
func (s *Storage) SaveResult(ctx context.Context, batchID string, out *domain.Outcome) (string, error) {
	resultID := uuid.NewString()

	artifacts, err := json.Marshal(out.ArtifactPaths)
	if err != nil {
		return "", fmt.Errorf("failed to encode artifact paths: %w", err)
	}

	query := `
		INSERT INTO generation_results (
			result_id, batch_id, job_id, attempt,
			success, artifact_paths, duration_ms, error, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9
		)
	`

	_, err = s.db.ExecContext(
		ctx,
		query,
		resultID,
		batchID,
		out.JobID,
		out.Attempt,
		out.Success,
		string(artifacts),
		out.Duration.Milliseconds(),
		out.Error,
		out.Timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Debug("Generation result persisted",
		slog.String("result_id", resultID),
		slog.String("batch_id", batchID),
		slog.String("job_id", out.JobID),
	)
	return resultID, nil
}

// UpdateJobStatus upserts the originating job's terminal status.
func (s *Storage) UpdateJobStatus(ctx context.Context, batchID string, job *domain.Job, errDetail string) error {
	query := `
		INSERT INTO generation_jobs (
			batch_id, job_id, prompt, category, status, attempt, error, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (batch_id, job_id) DO UPDATE SET
			status = EXCLUDED.status,
			attempt = EXCLUDED.attempt,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		batchID,
		job.ID,
		job.Prompt,
		job.Category,
		job.Status,
		job.Attempt,
		errDetail,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	return nil
}

// Stats summarizes persisted results for the stats endpoint.
type Stats struct {
	TotalResults    int `db:"total_results"`
	TotalSuccessful int `db:"total_successful"`
	TotalFailed     int `db:"total_failed"`
	TotalArtifacts  int `db:"total_artifacts"`
}

// GetStats aggregates result counts across all batches.
func (s *Storage) GetStats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total_results,
			COUNT(*) FILTER (WHERE success) AS total_successful,
			COUNT(*) FILTER (WHERE NOT success) AS total_failed,
			COALESCE(SUM(json_array_length(artifact_paths::json)), 0) AS total_artifacts
		FROM generation_results
	`

	var stats Stats
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get generation stats: %w", err)
	}

	return &stats, nil
}
