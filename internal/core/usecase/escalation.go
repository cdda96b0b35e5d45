package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/ports"
)

// Escalation reacts to the job-store change feed: every newly created audit
// record flips its item to escalated in the catalog. Updates fan out in
// parallel; a single failure fails the whole batch back to the caller.
type Escalation struct {
	items ports.ItemService
	log   *slog.Logger
}

func NewEscalation(items ports.ItemService, log *slog.Logger) *Escalation {
	return &Escalation{items: items, log: log}
}

func (e *Escalation) SweepChanges(ctx context.Context, batch domain.ChangeFeedBatch) error {
	g, ctx := errgroup.WithContext(ctx)
	escalated := 0
	for _, record := range batch.Records {
		if !record.NewlyCreated {
			continue
		}
		escalated++
		g.Go(func() error {
			if err := e.items.UpdateStatus(ctx, record.ItemID, domain.ItemEscalated); err != nil {
				return fmt.Errorf("escalate item %d: %w", record.ItemID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if escalated > 0 {
		e.log.Info("escalation sweep complete", "items", escalated)
	}
	return nil
}
