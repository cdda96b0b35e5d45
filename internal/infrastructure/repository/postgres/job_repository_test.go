package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

func newMockRepo(t *testing.T) (*JobRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewJobRepository(db), mock, func() { db.Close() }
}

func TestJobRepositoryGetReturnsNotFound(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery("FROM moderation_jobs").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}))

	_, err := repo.Get(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrJobNotFound) {
		t.Fatalf("Get() error = %v, want ErrJobNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryGetScansItemSnapshot(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"job_id", "item_id", "item", "status", "provider_token",
		"result_bucket", "result_key", "category_match", "failure_reason", "created_at", "updated_at",
	}).AddRow(
		"job-1", int64(5), []byte(`{"id":5,"title":"clip","status":"in review"}`), string(domain.JobSucceeded), "tok",
		"results", "job-1.json", "firearms", "", now, now,
	)

	mock.ExpectQuery("FROM moderation_jobs").
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.Item == nil || job.Item.ID != 5 {
		t.Fatalf("item snapshot not decoded: %+v", job.Item)
	}
	if job.Status != domain.JobSucceeded || job.CategoryMatch != "firearms" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.ResultLocation.URI() != "s3://results/job-1.json" {
		t.Fatalf("result location = %s", job.ResultLocation.URI())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryCreateIsUpsert(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	now := time.Now().UTC()
	job := &domain.ModerationJob{
		JobID:     "job-1",
		ItemID:    5,
		Status:    domain.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Redelivered create must re-apply the same row, not conflict.
	for range 2 {
		mock.ExpectExec("INSERT INTO moderation_jobs").
			WithArgs("job-1", int64(5), sqlmock.AnyArg(), string(domain.JobPending), "", "", "", "", "", now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create() redelivery error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryUpdateStatusReappliesIdentically(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	loc := domain.ObjectLocation{Bucket: "results", Key: "job-1.json"}

	// A redelivered workflow step re-issues the same status write; both calls
	// touch exactly the one row and succeed.
	for range 2 {
		mock.ExpectExec("UPDATE moderation_jobs").
			WithArgs("job-1", string(domain.JobSucceeded), "results", "job-1.json", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	if err := repo.UpdateStatus(context.Background(), "job-1", domain.JobSucceeded, loc); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if err := repo.UpdateStatus(context.Background(), "job-1", domain.JobSucceeded, loc); err != nil {
		t.Fatalf("UpdateStatus() redelivery error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryUpdateStatusReturnsNotFoundOnZeroRows(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec("UPDATE moderation_jobs").
		WithArgs("missing", string(domain.JobSucceeded), "results", "missing.json", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.JobSucceeded,
		domain.ObjectLocation{Bucket: "results", Key: "missing.json"})
	if !domain.IsKind(err, domain.ErrJobNotFound) {
		t.Fatalf("UpdateStatus() error = %v, want ErrJobNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryUpdateCategoryMatchPersistsSnapshot(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec("UPDATE moderation_jobs").
		WithArgs("job-1", "firearms", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := domain.Item{ID: 5, FilePath: "s3://moderation/clip.mp4", Status: domain.ItemInReview}
	if err := repo.UpdateCategoryMatch(context.Background(), "job-1", item, "firearms"); err != nil {
		t.Fatalf("UpdateCategoryMatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryDeleteIgnoresMissingRow(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec("DELETE FROM moderation_jobs").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
