package domain

import (
	"encoding/json"
	"fmt"
)

type EnvelopeKind string

const (
	KindImageJob   EnvelopeKind = "image_job"
	KindVideoJob   EnvelopeKind = "video_job"
	KindChangeFeed EnvelopeKind = "change_feed"
	KindFailure    EnvelopeKind = "failure_notice"
)

// Envelope is the tagged union of trigger events the pipeline accepts.
// Exactly one variant matching Kind must be present.
type Envelope struct {
	Kind    EnvelopeKind     `json:"kind"`
	Image   *ImageJob        `json:"image,omitempty"`
	Video   *VideoJob        `json:"video,omitempty"`
	Changes *ChangeFeedBatch `json:"changes,omitempty"`
	Failure *FailureNotice   `json:"failure,omitempty"`
}

// ImageJob moderates one item synchronously.
type ImageJob struct {
	Item Item `json:"item"`
}

// VideoJob carries an item through the asynchronous path. JobID is empty
// until detection has been started; subsequent deliveries poll that job.
type VideoJob struct {
	Item  Item   `json:"item"`
	JobID string `json:"job_id,omitempty"`
}

// ChangeRecord is one entry from the job-store change feed.
type ChangeRecord struct {
	ItemID       int64 `json:"item_id"`
	NewlyCreated bool  `json:"newly_created"`
}

type ChangeFeedBatch struct {
	Records []ChangeRecord `json:"records"`
}

// FailureNotice is the orchestrator's failure-route step: record a terminal
// failure on the job without further processing.
type FailureNotice struct {
	JobID  string `json:"job_id,omitempty"`
	Item   Item   `json:"item"`
	Reason string `json:"reason"`
}

func NewImageEnvelope(item Item) Envelope {
	return Envelope{Kind: KindImageJob, Image: &ImageJob{Item: item}}
}

func NewVideoEnvelope(item Item, jobID string) Envelope {
	return Envelope{Kind: KindVideoJob, Video: &VideoJob{Item: item, JobID: jobID}}
}

func NewChangeFeedEnvelope(records []ChangeRecord) Envelope {
	return Envelope{Kind: KindChangeFeed, Changes: &ChangeFeedBatch{Records: records}}
}

func NewFailureEnvelope(jobID string, item Item, reason string) Envelope {
	return Envelope{Kind: KindFailure, Failure: &FailureNotice{JobID: jobID, Item: item, Reason: reason}}
}

// ParseEnvelope decodes and validates a trigger envelope at the boundary.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, WrapError(ErrInvalidEnvelope, "decode envelope", err)
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func (e Envelope) Encode() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, WrapError(ErrInvalidEnvelope, "encode envelope", err)
	}
	return data, nil
}

func (e Envelope) Validate() error {
	fail := func(msg string) error {
		return WrapError(ErrInvalidEnvelope, "validate envelope", fmt.Errorf("%s", msg))
	}

	switch e.Kind {
	case KindImageJob:
		if e.Image == nil {
			return fail("image_job without image payload")
		}
		if e.Image.Item.FilePath == "" {
			return fail("image_job item has no file path")
		}
	case KindVideoJob:
		if e.Video == nil {
			return fail("video_job without video payload")
		}
		if e.Video.Item.FilePath == "" {
			return fail("video_job item has no file path")
		}
	case KindChangeFeed:
		if e.Changes == nil {
			return fail("change_feed without records payload")
		}
	case KindFailure:
		if e.Failure == nil {
			return fail("failure_notice without failure payload")
		}
	case "":
		return fail("missing kind")
	default:
		return fail(fmt.Sprintf("unknown kind %q", e.Kind))
	}
	return nil
}
