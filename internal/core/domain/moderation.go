package domain

import "time"

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// ModerationJob is the durable record for one moderation attempt. It is the
// single source of truth for resuming an asynchronous pipeline across process
// restarts, and becomes the audit record when an item escalates.
type ModerationJob struct {
	JobID          string         `json:"job_id"`
	ItemID         int64          `json:"item_id"`
	Item           *Item          `json:"item,omitempty"`
	Status         JobStatus      `json:"status"`
	ProviderToken  string         `json:"provider_token,omitempty"`
	ResultLocation ObjectLocation `json:"result_location,omitzero"`
	CategoryMatch  string         `json:"category_match,omitempty"`
	FailureReason  string         `json:"failure_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Label is one detected label with the provider's reported confidence.
type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ClassificationResult is the ordered label sequence accumulated from the
// detection provider. Consumers treat the stored form as an opaque JSON blob.
type ClassificationResult struct {
	Labels []Label `json:"labels"`
}

// BestConfidence reduces the sequence to the highest confidence seen per
// unique label name.
func (r ClassificationResult) BestConfidence() map[string]float64 {
	best := make(map[string]float64, len(r.Labels))
	for _, l := range r.Labels {
		if c, ok := best[l.Name]; !ok || l.Confidence > c {
			best[l.Name] = l.Confidence
		}
	}
	return best
}

// CategoryRuleSet maps a label name to the minimum confidence at which it
// counts as a match for the category.
type CategoryRuleSet map[string]float64

// RuleSets holds one rule-set per prohibited category, keyed by category name.
// Loaded once at startup and shared read-only.
type RuleSets map[string]CategoryRuleSet

type CategoryMatch struct {
	Category string   `json:"category"`
	Matched  bool     `json:"matched"`
	Labels   []string `json:"labels,omitempty"`
}

type DetectionStatus string

const (
	DetectionInProgress DetectionStatus = "in_progress"
	DetectionSucceeded  DetectionStatus = "succeeded"
	DetectionFailed     DetectionStatus = "failed"
)

// DetectionPage is one page of asynchronous detection output.
type DetectionPage struct {
	Labels    []Label
	NextToken string
	Status    DetectionStatus
}
