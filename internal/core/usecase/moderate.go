package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/ports"
)

// Pipeline sequences one moderation attempt per trigger envelope:
// media-type detection, label classification, rule evaluation and terminal
// disposition. Each invocation is stateless; suspension of the asynchronous
// path happens by republishing the video envelope, never by blocking.
type Pipeline struct {
	classifier *Classifier
	resolver   *Resolver
	evaluator  *Evaluator
	disposer   *Disposer
	jobs       ports.JobStore
	store      ports.ObjectStore
	queue      ports.MessageQueue
	escalation *Escalation

	resultsBucket string
	log           *slog.Logger
}

func NewPipeline(
	classifier *Classifier,
	resolver *Resolver,
	evaluator *Evaluator,
	disposer *Disposer,
	escalation *Escalation,
	jobs ports.JobStore,
	store ports.ObjectStore,
	queue ports.MessageQueue,
	resultsBucket string,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		classifier:    classifier,
		resolver:      resolver,
		evaluator:     evaluator,
		disposer:      disposer,
		escalation:    escalation,
		jobs:          jobs,
		store:         store,
		queue:         queue,
		resultsBucket: resultsBucket,
		log:           log,
	}
}

// HandleEnvelope dispatches on the envelope variant. A step failure aborts
// the remaining steps immediately; the failure disposition is recorded
// best-effort and the original error is surfaced to the transport.
func (p *Pipeline) HandleEnvelope(ctx context.Context, env domain.Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}

	switch env.Kind {
	case domain.KindImageJob:
		return p.handleImage(ctx, env.Image.Item)
	case domain.KindVideoJob:
		return p.handleVideo(ctx, env.Video.Item, env.Video.JobID)
	case domain.KindChangeFeed:
		return p.escalation.SweepChanges(ctx, *env.Changes)
	case domain.KindFailure:
		return p.disposer.Fail(ctx, env.Failure.Item, env.Failure.JobID, env.Failure.Reason)
	default:
		return domain.WrapError(domain.ErrInvalidEnvelope, "handle envelope", fmt.Errorf("kind %q", env.Kind))
	}
}

func (p *Pipeline) handleImage(ctx context.Context, item domain.Item) error {
	mediaType, loc, err := p.classifier.MediaTypeOf(item)
	if err != nil {
		return p.recordFailure(ctx, item, "", err)
	}
	if mediaType == domain.MediaVideo {
		// The sweeper misfiled a video; route it onto the asynchronous path.
		return p.startVideo(ctx, item, loc)
	}

	result, err := p.classifier.DetectImage(ctx, loc)
	if err != nil {
		return p.recordFailure(ctx, item, "", err)
	}
	return p.dispose(ctx, item, nil, result)
}

func (p *Pipeline) handleVideo(ctx context.Context, item domain.Item, jobID string) error {
	if jobID == "" {
		_, loc, err := p.classifier.MediaTypeOf(item)
		if err != nil {
			return p.recordFailure(ctx, item, "", err)
		}
		return p.startVideo(ctx, item, loc)
	}

	job, err := p.jobs.Get(ctx, jobID)
	if err != nil {
		return p.recordFailure(ctx, item, "", err)
	}

	// Resumed job: the stored result blob is authoritative.
	if job.Status == domain.JobSucceeded && !job.ResultLocation.IsZero() {
		result, err := p.loadStoredResult(ctx, job.ResultLocation)
		if err != nil {
			return p.recordFailure(ctx, item, jobID, err)
		}
		return p.dispose(ctx, item, job, result)
	}

	result, err := p.resolver.Resolve(ctx, job.ProviderToken)
	switch {
	case domain.IsKind(err, domain.ErrDetectionPending):
		// Suspension is external: requeue and let the transport schedule
		// the next poll.
		p.log.Debug("detection pending, requeueing", "job_id", jobID, "item_id", item.ID)
		return p.queue.Publish(ctx, domain.NewVideoEnvelope(item, jobID))
	case domain.IsKind(err, domain.ErrDetectionFailed):
		return p.recordFailure(ctx, item, jobID, err)
	case err != nil:
		return p.recordFailure(ctx, item, jobID, err)
	}

	loc, err := p.persistResult(ctx, job.JobID, result)
	if err != nil {
		return p.recordFailure(ctx, item, jobID, err)
	}
	if err := p.jobs.UpdateStatus(ctx, job.JobID, domain.JobSucceeded, loc); err != nil {
		return p.recordFailure(ctx, item, jobID, fmt.Errorf("mark job succeeded: %w", err))
	}
	job.Status = domain.JobSucceeded
	job.ResultLocation = loc

	return p.dispose(ctx, item, job, result)
}

func (p *Pipeline) startVideo(ctx context.Context, item domain.Item, loc domain.ObjectLocation) error {
	jobID, err := p.classifier.StartVideoDetection(ctx, item, loc)
	if err != nil {
		return p.recordFailure(ctx, item, jobID, err)
	}
	return p.queue.Publish(ctx, domain.NewVideoEnvelope(item, jobID))
}

func (p *Pipeline) dispose(ctx context.Context, item domain.Item, job *domain.ModerationJob, result domain.ClassificationResult) error {
	jobID := ""
	if job != nil {
		jobID = job.JobID
	}
	if category, matched := p.evaluator.FirstMatch(result); matched {
		return p.disposer.Escalate(ctx, item, jobID, category)
	}
	return p.disposer.Approve(ctx, item, job)
}

func (p *Pipeline) persistResult(ctx context.Context, jobID string, result domain.ClassificationResult) (domain.ObjectLocation, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return domain.ObjectLocation{}, fmt.Errorf("marshal classification result: %w", err)
	}
	loc := domain.ObjectLocation{Bucket: p.resultsBucket, Key: jobID + ".json"}
	if _, err := p.store.Put(ctx, loc, body); err != nil {
		return domain.ObjectLocation{}, fmt.Errorf("store classification result: %w", err)
	}
	return loc, nil
}

func (p *Pipeline) loadStoredResult(ctx context.Context, loc domain.ObjectLocation) (domain.ClassificationResult, error) {
	body, err := p.store.Get(ctx, loc)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("read stored result %s: %w", loc.URI(), err)
	}
	var result domain.ClassificationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("parse stored result %s: %w", loc.URI(), err)
	}
	return result, nil
}

// recordFailure persists the failed disposition best-effort when a job
// record exists, then surfaces the original error so the transport can apply
// its retry policy. Failures before any job was created leave no trace
// beyond the error itself: the item simply stays at its prior status.
func (p *Pipeline) recordFailure(ctx context.Context, item domain.Item, jobID string, cause error) error {
	if jobID == "" {
		return cause
	}
	if failErr := p.disposer.Fail(ctx, item, jobID, cause.Error()); failErr != nil {
		return fmt.Errorf("%w; record failure: %v", cause, failErr)
	}
	return cause
}
