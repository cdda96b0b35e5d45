package ports

import (
	"context"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

// ItemService is the external catalog holding item records.
type ItemService interface {
	ListInReview(ctx context.Context) ([]domain.Item, error)
	Get(ctx context.Context, id int64) (*domain.Item, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ItemStatus) error
	Delete(ctx context.Context, id int64) error
	DownloadMedia(ctx context.Context, loc domain.ObjectLocation) ([]byte, error)
}

// ObjectStore reads and writes binary objects addressed by bucket and key.
type ObjectStore interface {
	Get(ctx context.Context, loc domain.ObjectLocation) ([]byte, error)
	Put(ctx context.Context, loc domain.ObjectLocation, body []byte) (etag string, err error)
	Delete(ctx context.Context, loc domain.ObjectLocation) error
}

// LabelDetector is the classification provider. Images are detected
// synchronously; video detection is started against a notification channel
// and paged out afterwards with a continuation token.
type LabelDetector interface {
	DetectSync(ctx context.Context, loc domain.ObjectLocation) ([]domain.Label, error)
	StartDetection(ctx context.Context, loc domain.ObjectLocation) (providerToken string, err error)
	GetResults(ctx context.Context, providerToken string, pageSize int32, continuation string) (domain.DetectionPage, error)
}

// JobStore persists ModerationJob records keyed by job id. Every write is
// idempotent so redelivered workflow steps cannot corrupt state.
type JobStore interface {
	Create(ctx context.Context, job *domain.ModerationJob) error
	Get(ctx context.Context, jobID string) (*domain.ModerationJob, error)
	UpdateProviderToken(ctx context.Context, jobID, token string) error
	UpdateStatus(ctx context.Context, jobID string, status domain.JobStatus, result domain.ObjectLocation) error
	UpdateCategoryMatch(ctx context.Context, jobID string, item domain.Item, category string) error
	UpdateFailure(ctx context.Context, jobID string, item domain.Item, reason string) error
	Delete(ctx context.Context, jobID string) error
}

// MessageQueue carries trigger envelopes between the sweeper, the worker and
// requeued polling steps.
type MessageQueue interface {
	Publish(ctx context.Context, env domain.Envelope) error
	Subscribe(ctx context.Context, handler func(context.Context, domain.Envelope) error) error
}
