package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/ports"
)

// Classifier decides the media type of an item and starts label detection:
// synchronously for images, as a tracked asynchronous job for video.
type Classifier struct {
	jobs      ports.JobStore
	detector  ports.LabelDetector
	imageExts map[string]struct{}
	videoExts map[string]struct{}
}

func NewClassifier(jobs ports.JobStore, detector ports.LabelDetector, imageExts, videoExts []string) *Classifier {
	return &Classifier{
		jobs:      jobs,
		detector:  detector,
		imageExts: extSet(imageExts),
		videoExts: extSet(videoExts),
	}
}

func extSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	return set
}

// MediaTypeOf determines the item's media type from its object key extension.
// No side effects.
func (c *Classifier) MediaTypeOf(item domain.Item) (domain.MediaType, domain.ObjectLocation, error) {
	loc, err := domain.ParseObjectURI(item.FilePath)
	if err != nil {
		return "", domain.ObjectLocation{}, err
	}

	ext := strings.ToLower(path.Ext(loc.Key))
	if _, ok := c.imageExts[ext]; ok {
		return domain.MediaImage, loc, nil
	}
	if _, ok := c.videoExts[ext]; ok {
		return domain.MediaVideo, loc, nil
	}
	return "", domain.ObjectLocation{}, domain.WrapError(domain.ErrUnsupportedFormat, "classify media",
		fmt.Errorf("extension %q of %s is neither image nor video", ext, item.FilePath))
}

// DetectImage runs one synchronous detection call. No job record is created
// on this path.
func (c *Classifier) DetectImage(ctx context.Context, loc domain.ObjectLocation) (domain.ClassificationResult, error) {
	labels, err := c.detector.DetectSync(ctx, loc)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("detect image labels: %w", err)
	}
	return domain.ClassificationResult{Labels: labels}, nil
}

// StartVideoDetection creates the pending moderation job, starts asynchronous
// detection, and persists the provider's job token on the record.
func (c *Classifier) StartVideoDetection(ctx context.Context, item domain.Item, loc domain.ObjectLocation) (string, error) {
	now := time.Now().UTC()
	job := &domain.ModerationJob{
		JobID:     uuid.NewString(),
		ItemID:    item.ID,
		Status:    domain.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.jobs.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create moderation job: %w", err)
	}

	token, err := c.detector.StartDetection(ctx, loc)
	if err != nil {
		// The pending job already exists; hand its id back so the caller can
		// record the failure on it.
		return job.JobID, fmt.Errorf("start video detection: %w", err)
	}

	if err := c.jobs.UpdateProviderToken(ctx, job.JobID, token); err != nil {
		return job.JobID, fmt.Errorf("persist provider token: %w", err)
	}
	return job.JobID, nil
}
