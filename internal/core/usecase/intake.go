package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/ports"
)

// Intake moves every in-review item's media into the moderation bucket,
// rewrites the item URI to point at the copy, and enqueues a trigger
// envelope per item. Fan-out is all-or-nothing: one failed sub-operation
// fails the whole sweep.
type Intake struct {
	items      ports.ItemService
	store      ports.ObjectStore
	queue      ports.MessageQueue
	classifier *Classifier

	targetBucket string
	log          *slog.Logger
}

func NewIntake(items ports.ItemService, store ports.ObjectStore, queue ports.MessageQueue, classifier *Classifier, targetBucket string, log *slog.Logger) *Intake {
	return &Intake{
		items:        items,
		store:        store,
		queue:        queue,
		classifier:   classifier,
		targetBucket: targetBucket,
		log:          log,
	}
}

func (i *Intake) Sweep(ctx context.Context) (int, error) {
	items, err := i.items.ListInReview(ctx)
	if err != nil {
		return 0, fmt.Errorf("list in-review items: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	staged := make([]domain.Item, len(items))
	for idx, item := range items {
		loc, err := domain.ParseObjectURI(item.FilePath)
		if err != nil {
			return 0, err
		}
		moved := item
		moved.FilePath = domain.ObjectLocation{Bucket: i.targetBucket, Key: loc.Key}.URI()
		staged[idx] = moved
	}

	if err := i.copyMedia(ctx, items); err != nil {
		return 0, err
	}
	if err := i.publishAll(ctx, staged); err != nil {
		return 0, err
	}

	i.log.Info("intake sweep complete", "items", len(staged), "bucket", i.targetBucket)
	return len(staged), nil
}

func (i *Intake) copyMedia(ctx context.Context, items []domain.Item) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, item := range items {
		g.Go(func() error {
			source, err := domain.ParseObjectURI(item.FilePath)
			if err != nil {
				return err
			}
			body, err := i.items.DownloadMedia(ctx, source)
			if err != nil {
				return fmt.Errorf("download media for item %d: %w", item.ID, err)
			}
			target := domain.ObjectLocation{Bucket: i.targetBucket, Key: source.Key}
			if _, err := i.store.Put(ctx, target, body); err != nil {
				return fmt.Errorf("stage media for item %d: %w", item.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (i *Intake) publishAll(ctx context.Context, staged []domain.Item) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, item := range staged {
		g.Go(func() error {
			env, err := i.envelopeFor(item)
			if err != nil {
				return err
			}
			if err := i.queue.Publish(ctx, env); err != nil {
				return fmt.Errorf("enqueue item %d: %w", item.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (i *Intake) envelopeFor(item domain.Item) (domain.Envelope, error) {
	mediaType, _, err := i.classifier.MediaTypeOf(item)
	if err != nil {
		return domain.Envelope{}, err
	}
	if mediaType == domain.MediaVideo {
		return domain.NewVideoEnvelope(item, ""), nil
	}
	return domain.NewImageEnvelope(item), nil
}
