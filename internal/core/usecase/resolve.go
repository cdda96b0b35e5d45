package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/ports"
)

const defaultPageSize = 1000

// Resolver accumulates the paginated output of an asynchronous detection job.
// It never sleeps: when the provider still reports the job in progress it
// returns ErrDetectionPending and the caller schedules the next attempt
// through the queue.
type Resolver struct {
	detector ports.LabelDetector
	pageSize int32
}

func NewResolver(detector ports.LabelDetector, pageSize int32) *Resolver {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Resolver{detector: detector, pageSize: pageSize}
}

// Resolve pages through completed results until the provider omits the
// continuation token. A fresh call always re-accumulates from empty.
func (r *Resolver) Resolve(ctx context.Context, providerToken string) (domain.ClassificationResult, error) {
	var result domain.ClassificationResult
	continuation := ""

	for {
		page, err := r.detector.GetResults(ctx, providerToken, r.pageSize, continuation)
		if err != nil {
			return domain.ClassificationResult{}, fmt.Errorf("get detection results: %w", err)
		}

		switch page.Status {
		case domain.DetectionInProgress:
			return domain.ClassificationResult{}, domain.WrapError(domain.ErrDetectionPending, "resolve detection",
				fmt.Errorf("provider job %s not finished", providerToken))
		case domain.DetectionFailed:
			return domain.ClassificationResult{}, domain.WrapError(domain.ErrDetectionFailed, "resolve detection",
				errors.New("provider reported terminal failure"))
		}

		result.Labels = append(result.Labels, page.Labels...)
		if page.NextToken == "" {
			return result, nil
		}
		continuation = page.NextToken
	}
}
