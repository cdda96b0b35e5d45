package ports

import (
	"context"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

// ModerationPipeline is the inbound contract for one trigger envelope.
type ModerationPipeline interface {
	HandleEnvelope(ctx context.Context, env domain.Envelope) error
}

// IntakeSweeper moves in-review items into the moderation bucket and
// enqueues their trigger envelopes.
type IntakeSweeper interface {
	Sweep(ctx context.Context) (int, error)
}
