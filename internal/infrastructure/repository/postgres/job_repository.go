package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

// JobRepository is the durable store behind the job tracker. Every write is
// an upsert or a keyed update, so redelivered workflow steps re-applying the
// same mutation are no-ops beyond the overwrite.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *JobRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker/sweeper startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026090101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS moderation_jobs (
	job_id TEXT PRIMARY KEY,
	item_id BIGINT NOT NULL,
	item JSONB,
	status TEXT NOT NULL,
	provider_token TEXT NOT NULL DEFAULT '',
	result_bucket TEXT NOT NULL DEFAULT '',
	result_key TEXT NOT NULL DEFAULT '',
	category_match TEXT NOT NULL DEFAULT '',
	failure_reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_moderation_jobs_item_id ON moderation_jobs(item_id);
CREATE INDEX IF NOT EXISTS idx_moderation_jobs_status ON moderation_jobs(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.ModerationJob) error {
	var itemJSON []byte
	if job.Item != nil {
		var err error
		itemJSON, err = json.Marshal(job.Item)
		if err != nil {
			return fmt.Errorf("marshal item snapshot: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO moderation_jobs (
	job_id, item_id, item, status, provider_token, result_bucket, result_key, category_match, failure_reason, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (job_id) DO UPDATE SET
	item_id = EXCLUDED.item_id,
	item = EXCLUDED.item,
	status = EXCLUDED.status,
	provider_token = EXCLUDED.provider_token,
	updated_at = EXCLUDED.updated_at
`,
		job.JobID, job.ItemID, itemJSON, string(job.Status), job.ProviderToken,
		job.ResultLocation.Bucket, job.ResultLocation.Key, job.CategoryMatch, job.FailureReason,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrTransport, "insert moderation job", err)
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, jobID string) (*domain.ModerationJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT job_id, item_id, item, status, provider_token, result_bucket, result_key, category_match, failure_reason, created_at, updated_at
FROM moderation_jobs
WHERE job_id = $1
`, jobID)

	var job domain.ModerationJob
	var itemRaw []byte
	var status string

	err := row.Scan(
		&job.JobID, &job.ItemID, &itemRaw, &status, &job.ProviderToken,
		&job.ResultLocation.Bucket, &job.ResultLocation.Key, &job.CategoryMatch, &job.FailureReason,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get moderation job", fmt.Errorf("job %s", jobID))
		}
		return nil, domain.WrapError(domain.ErrTransport, "scan moderation job", err)
	}

	if len(itemRaw) > 0 {
		var item domain.Item
		if err := json.Unmarshal(itemRaw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal item snapshot: %w", err)
		}
		job.Item = &item
	}
	job.Status = domain.JobStatus(status)
	return &job, nil
}

func (r *JobRepository) UpdateProviderToken(ctx context.Context, jobID, token string) error {
	return r.update(ctx, jobID, "update provider token", `
UPDATE moderation_jobs SET provider_token = $2, updated_at = $3 WHERE job_id = $1
`, token, time.Now().UTC())
}

func (r *JobRepository) UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, result domain.ObjectLocation) error {
	return r.update(ctx, jobID, "update job status", `
UPDATE moderation_jobs SET status = $2, result_bucket = $3, result_key = $4, updated_at = $5 WHERE job_id = $1
`, string(status), result.Bucket, result.Key, time.Now().UTC())
}

func (r *JobRepository) UpdateCategoryMatch(ctx context.Context, jobID string, item domain.Item, category string) error {
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item snapshot: %w", err)
	}
	return r.update(ctx, jobID, "update category match", `
UPDATE moderation_jobs SET category_match = $2, item = $3, updated_at = $4 WHERE job_id = $1
`, category, itemJSON, time.Now().UTC())
}

func (r *JobRepository) UpdateFailure(ctx context.Context, jobID string, item domain.Item, reason string) error {
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item snapshot: %w", err)
	}
	return r.update(ctx, jobID, "update job failure", `
UPDATE moderation_jobs SET status = $2, failure_reason = $3, item = $4, updated_at = $5 WHERE job_id = $1
`, string(domain.JobFailed), reason, itemJSON, time.Now().UTC())
}

// Delete is idempotent: removing an already-removed job is not an error.
func (r *JobRepository) Delete(ctx context.Context, jobID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM moderation_jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return domain.WrapError(domain.ErrTransport, "delete moderation job", err)
	}
	return nil
}

func (r *JobRepository) update(ctx context.Context, jobID, operation, query string, args ...any) error {
	allArgs := append([]any{jobID}, args...)
	res, err := r.db.ExecContext(ctx, query, allArgs...)
	if err != nil {
		return domain.WrapError(domain.ErrTransport, operation, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(domain.ErrTransport, operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrJobNotFound, operation, fmt.Errorf("job %s", jobID))
	}
	return nil
}
