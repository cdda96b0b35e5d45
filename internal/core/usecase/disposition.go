package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/ports"
)

// Disposer applies the terminal state transition of a moderation attempt.
// Persistence always happens before any deletion so that a crash after
// partial cleanup never loses the audit trail.
type Disposer struct {
	items ports.ItemService
	store ports.ObjectStore
	jobs  ports.JobStore
	log   *slog.Logger
}

func NewDisposer(items ports.ItemService, store ports.ObjectStore, jobs ports.JobStore, log *slog.Logger) *Disposer {
	return &Disposer{items: items, store: store, jobs: jobs, log: log}
}

// Approve finalizes a clean item: catalog status first, then cleanup of the
// stored classification result and the job record. The media object is kept.
func (d *Disposer) Approve(ctx context.Context, item domain.Item, job *domain.ModerationJob) error {
	if err := d.items.UpdateStatus(ctx, item.ID, domain.ItemApproved); err != nil {
		return fmt.Errorf("approve item %d: %w", item.ID, err)
	}

	if job == nil {
		return nil
	}
	if !job.ResultLocation.IsZero() {
		if err := d.store.Delete(ctx, job.ResultLocation); err != nil {
			return fmt.Errorf("delete classification result %s: %w", job.ResultLocation.URI(), err)
		}
	}
	if err := d.jobs.Delete(ctx, job.JobID); err != nil {
		return fmt.Errorf("delete moderation job %s: %w", job.JobID, err)
	}
	d.log.Info("item approved", "item_id", item.ID, "job_id", job.JobID)
	return nil
}

// Escalate persists the category match and item snapshot on the job record,
// which from here on is the audit record and is never deleted. The catalog
// status flip to escalated is driven downstream by the job-store change feed.
func (d *Disposer) Escalate(ctx context.Context, item domain.Item, jobID, category string) error {
	if jobID == "" {
		// Synchronous image path: no job exists yet, create the audit record.
		job, err := d.ensureAuditRecord(ctx, item)
		if err != nil {
			return err
		}
		jobID = job.JobID
	}
	if err := d.jobs.UpdateCategoryMatch(ctx, jobID, item, category); err != nil {
		return fmt.Errorf("persist category match on job %s: %w", jobID, err)
	}
	d.log.Info("item escalated", "item_id", item.ID, "job_id", jobID, "category", category)
	return nil
}

// Fail records a terminal failure with the offending item reference. Retry
// remains an external workflow policy.
func (d *Disposer) Fail(ctx context.Context, item domain.Item, jobID, reason string) error {
	if jobID == "" {
		job, err := d.ensureAuditRecord(ctx, item)
		if err != nil {
			return err
		}
		jobID = job.JobID
	}
	if err := d.jobs.UpdateFailure(ctx, jobID, item, reason); err != nil {
		return fmt.Errorf("persist failure on job %s: %w", jobID, err)
	}
	d.log.Warn("moderation failed", "item_id", item.ID, "job_id", jobID, "reason", reason)
	return nil
}

func (d *Disposer) ensureAuditRecord(ctx context.Context, item domain.Item) (*domain.ModerationJob, error) {
	now := time.Now().UTC()
	snapshot := item
	job := &domain.ModerationJob{
		JobID:     uuid.NewString(),
		ItemID:    item.ID,
		Item:      &snapshot,
		Status:    domain.JobSucceeded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create audit record for item %d: %w", item.ID, err)
	}
	return job, nil
}
