package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/observability/logging"
)

func newTestIntake(items *itemServiceFake, store *objectStoreFake, queue *queueFake) *Intake {
	classifier := NewClassifier(newJobStoreFake(), &detectorFake{}, []string{".jpg"}, []string{".mp4"})
	return NewIntake(items, store, queue, classifier, "moderation", logging.NewJSONLogger("test", "error"))
}

func TestSweepStagesMediaAndPublishes(t *testing.T) {
	items := &itemServiceFake{
		inReview: []domain.Item{
			{ID: 1, FilePath: "s3://uploads/cat.jpg", Status: domain.ItemInReview},
			{ID: 2, FilePath: "s3://uploads/clip.mp4", Status: domain.ItemInReview},
		},
		media: map[string][]byte{
			"s3://uploads/cat.jpg":  []byte("jpeg-bytes"),
			"s3://uploads/clip.mp4": []byte("mp4-bytes"),
		},
	}
	store := newObjectStoreFake()
	queue := &queueFake{}

	count, err := newTestIntake(items, store, queue).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("Sweep() count = %d, want 2", count)
	}

	if string(store.objects["s3://moderation/cat.jpg"]) != "jpeg-bytes" {
		t.Fatalf("image media not staged into the moderation bucket")
	}
	if string(store.objects["s3://moderation/clip.mp4"]) != "mp4-bytes" {
		t.Fatalf("video media not staged into the moderation bucket")
	}

	if len(queue.published) != 2 {
		t.Fatalf("expected one envelope per item, got %d", len(queue.published))
	}
	byKind := map[domain.EnvelopeKind]domain.Envelope{}
	for _, env := range queue.published {
		byKind[env.Kind] = env
	}
	image, ok := byKind[domain.KindImageJob]
	if !ok {
		t.Fatalf("image item produced no image_job envelope: %+v", queue.published)
	}
	if image.Image.Item.FilePath != "s3://moderation/cat.jpg" {
		t.Fatalf("envelope must carry the rewritten URI, got %q", image.Image.Item.FilePath)
	}
	video, ok := byKind[domain.KindVideoJob]
	if !ok {
		t.Fatalf("video item produced no video_job envelope: %+v", queue.published)
	}
	if video.Video.JobID != "" {
		t.Fatalf("fresh video envelope must not carry a job id")
	}
}

func TestSweepRewritesBucketNamedLikeScheme(t *testing.T) {
	// A source bucket literally named "s3" must not corrupt the scheme of the
	// rewritten URI.
	items := &itemServiceFake{
		inReview: []domain.Item{{ID: 1, FilePath: "s3://s3/cat.jpg"}},
		media:    map[string][]byte{"s3://s3/cat.jpg": []byte("jpeg-bytes")},
	}
	store := newObjectStoreFake()
	queue := &queueFake{}

	if _, err := newTestIntake(items, store, queue).Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if len(queue.published) != 1 {
		t.Fatalf("expected one envelope, got %d", len(queue.published))
	}
	if got := queue.published[0].Image.Item.FilePath; got != "s3://moderation/cat.jpg" {
		t.Fatalf("rewritten uri = %q, want s3://moderation/cat.jpg", got)
	}
	if _, ok := store.objects["s3://moderation/cat.jpg"]; !ok {
		t.Fatalf("media not staged under the rewritten location")
	}
}

func TestSweepEmptyBacklogIsNoOp(t *testing.T) {
	items := &itemServiceFake{}
	queue := &queueFake{}

	count, err := newTestIntake(items, newObjectStoreFake(), queue).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if count != 0 || len(queue.published) != 0 {
		t.Fatalf("empty backlog should publish nothing, got count=%d published=%d", count, len(queue.published))
	}
}

func TestSweepFailsWholeBatchOnCopyError(t *testing.T) {
	items := &itemServiceFake{
		inReview: []domain.Item{
			{ID: 1, FilePath: "s3://uploads/cat.jpg"},
			{ID: 2, FilePath: "s3://uploads/clip.mp4"},
		},
		mediaErr: errors.New("catalog download unavailable"),
	}
	queue := &queueFake{}

	_, err := newTestIntake(items, newObjectStoreFake(), queue).Sweep(context.Background())
	if err == nil {
		t.Fatalf("expected sweep failure")
	}
	if len(queue.published) != 0 {
		t.Fatalf("no envelope may be published when staging failed")
	}
}

func TestSweepFailsOnMalformedItemURI(t *testing.T) {
	items := &itemServiceFake{
		inReview: []domain.Item{{ID: 1, FilePath: "not-a-uri"}},
	}

	_, err := newTestIntake(items, newObjectStoreFake(), &queueFake{}).Sweep(context.Background())
	if !domain.IsKind(err, domain.ErrInvalidURI) {
		t.Fatalf("error = %v, want ErrInvalidURI", err)
	}
}

func TestSweepFailsWhenPublishFails(t *testing.T) {
	items := &itemServiceFake{
		inReview: []domain.Item{{ID: 1, FilePath: "s3://uploads/cat.jpg"}},
		media:    map[string][]byte{"s3://uploads/cat.jpg": []byte("jpeg-bytes")},
	}
	queue := &queueFake{publishErr: errors.New("broker down")}

	_, err := newTestIntake(items, newObjectStoreFake(), queue).Sweep(context.Background())
	if err == nil {
		t.Fatalf("expected sweep failure when the queue rejects the envelope")
	}
}
