package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

type statusUpdate struct {
	itemID int64
	status domain.ItemStatus
}

type itemServiceFake struct {
	mu        sync.Mutex
	inReview  []domain.Item
	listErr   error
	updateErr error
	media     map[string][]byte
	mediaErr  error

	statusCalls []statusUpdate
}

func (f *itemServiceFake) ListInReview(context.Context) ([]domain.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.inReview, nil
}

func (f *itemServiceFake) Get(_ context.Context, id int64) (*domain.Item, error) {
	for _, item := range f.inReview {
		if item.ID == id {
			copyItem := item
			return &copyItem, nil
		}
	}
	return nil, domain.WrapError(domain.ErrItemNotFound, "get item", errors.New("no such item"))
}

func (f *itemServiceFake) UpdateStatus(_ context.Context, id int64, status domain.ItemStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.statusCalls = append(f.statusCalls, statusUpdate{itemID: id, status: status})
	return nil
}

func (f *itemServiceFake) Delete(context.Context, int64) error { return nil }

func (f *itemServiceFake) DownloadMedia(_ context.Context, loc domain.ObjectLocation) ([]byte, error) {
	if f.mediaErr != nil {
		return nil, f.mediaErr
	}
	return f.media[loc.URI()], nil
}

type objectStoreFake struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
	putErr  error
	delErr  error

	deleted []string
}

func newObjectStoreFake() *objectStoreFake {
	return &objectStoreFake{objects: make(map[string][]byte)}
}

func (f *objectStoreFake) Get(_ context.Context, loc domain.ObjectLocation) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[loc.URI()]
	if !ok {
		return nil, domain.WrapError(domain.ErrItemNotFound, "fake get", errors.New("no such object"))
	}
	return body, nil
}

func (f *objectStoreFake) Put(_ context.Context, loc domain.ObjectLocation, body []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[loc.URI()] = body
	return "etag", nil
}

func (f *objectStoreFake) Delete(_ context.Context, loc domain.ObjectLocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.objects, loc.URI())
	f.deleted = append(f.deleted, loc.URI())
	return nil
}

type detectorFake struct {
	syncLabels []domain.Label
	syncErr    error

	startToken string
	startErr   error

	pages    []domain.DetectionPage
	pagesErr error
	calls    int
}

func (f *detectorFake) DetectSync(context.Context, domain.ObjectLocation) ([]domain.Label, error) {
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return f.syncLabels, nil
}

func (f *detectorFake) StartDetection(context.Context, domain.ObjectLocation) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.startToken, nil
}

func (f *detectorFake) GetResults(_ context.Context, _ string, _ int32, continuation string) (domain.DetectionPage, error) {
	if f.pagesErr != nil {
		return domain.DetectionPage{}, f.pagesErr
	}
	idx := f.calls
	f.calls++
	if idx >= len(f.pages) {
		return domain.DetectionPage{Status: domain.DetectionSucceeded}, nil
	}
	_ = continuation
	return f.pages[idx], nil
}

type jobStoreFake struct {
	mu   sync.Mutex
	jobs map[string]*domain.ModerationJob

	createErr error
	getErr    error
	updateErr error
	deleteErr error
}

func newJobStoreFake() *jobStoreFake {
	return &jobStoreFake{jobs: make(map[string]*domain.ModerationJob)}
}

func (f *jobStoreFake) Create(_ context.Context, job *domain.ModerationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copyJob := *job
	f.jobs[job.JobID] = &copyJob
	return nil
}

func (f *jobStoreFake) Get(_ context.Context, jobID string) (*domain.ModerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.WrapError(domain.ErrJobNotFound, "fake get", errors.New("no such job"))
	}
	copyJob := *job
	return &copyJob, nil
}

func (f *jobStoreFake) UpdateProviderToken(_ context.Context, jobID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if job, ok := f.jobs[jobID]; ok {
		job.ProviderToken = token
	}
	return nil
}

func (f *jobStoreFake) UpdateStatus(_ context.Context, jobID string, status domain.JobStatus, result domain.ObjectLocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if job, ok := f.jobs[jobID]; ok {
		job.Status = status
		job.ResultLocation = result
	}
	return nil
}

func (f *jobStoreFake) UpdateCategoryMatch(_ context.Context, jobID string, item domain.Item, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if job, ok := f.jobs[jobID]; ok {
		snapshot := item
		job.Item = &snapshot
		job.CategoryMatch = category
	}
	return nil
}

func (f *jobStoreFake) UpdateFailure(_ context.Context, jobID string, item domain.Item, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if job, ok := f.jobs[jobID]; ok {
		snapshot := item
		job.Item = &snapshot
		job.Status = domain.JobFailed
		job.FailureReason = reason
	}
	return nil
}

func (f *jobStoreFake) Delete(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.jobs, jobID)
	return nil
}

func (f *jobStoreFake) only() *domain.ModerationJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.jobs {
		return job
	}
	return nil
}

type queueFake struct {
	mu         sync.Mutex
	published  []domain.Envelope
	publishErr error
}

func (f *queueFake) Publish(_ context.Context, env domain.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, env)
	return nil
}

func (f *queueFake) Subscribe(context.Context, func(context.Context, domain.Envelope) error) error {
	return nil
}
