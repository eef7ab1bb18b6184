package recognition

import (
	"time"

	"github.com/histofy/histofy/internal/errors"
)

// State represents the lifecycle state of a recognition request.
type State string

const (
	StateNotStarted State = "not_started"
	StatePending    State = "pending"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"

	// StateStale marks a request whose originating image was replaced or
	// discarded. A stale result must never be acted upon; for UI purposes
	// it is equivalent to not_started.
	StateStale State = "stale"
)

// Request tracks a single identification attempt against one staged image.
// It holds a non-owning reference (content hash) to the image it was
// submitted with.
type Request struct {
	state     State
	imageRef  string
	record    *SiteRecord
	failure   error
	createdAt time.Time
}

// NewRequest creates a request for the given image reference.
func NewRequest(imageRef string) *Request {
	return &Request{
		state:     StateNotStarted,
		imageRef:  imageRef,
		createdAt: time.Now(),
	}
}

// Start moves the request to pending. Fails with REQUEST_ALREADY_IN_FLIGHT
// if it is already pending, or ILLEGAL_TRANSITION if it already resolved.
func (r *Request) Start() error {
	switch r.state {
	case StateNotStarted:
		r.state = StatePending
		return nil
	case StatePending:
		return errors.NewRequestAlreadyInFlight()
	default:
		return errors.NewIllegalTransition(string(r.state), "start")
	}
}

// Complete records a successful service response. A response arriving after
// the request went stale is discarded silently; superseded results are not
// user-visible failures.
func (r *Request) Complete(record *SiteRecord) {
	if r.state != StatePending {
		return
	}
	r.record = record
	r.state = StateSucceeded
}

// Fail records a failed service response. Stale and already-resolved
// requests ignore it.
func (r *Request) Fail(err error) {
	if r.state != StatePending {
		return
	}
	r.failure = err
	r.state = StateFailed
}

// Invalidate marks the request stale. Called when the owning session is
// discarded or a new image is staged. Any in-flight or completed result
// stops being actable.
func (r *Request) Invalidate() {
	r.state = StateStale
}

// State returns the current lifecycle state.
func (r *Request) State() State {
	return r.state
}

// ImageRef returns the reference of the image this request was submitted with.
func (r *Request) ImageRef() string {
	return r.imageRef
}

// CreatedAt returns when the request was constructed.
func (r *Request) CreatedAt() time.Time {
	return r.createdAt
}

// Record returns the site record for a succeeded request, or nil.
func (r *Request) Record() *SiteRecord {
	if r.state != StateSucceeded {
		return nil
	}
	return r.record
}

// Failure returns the recorded failure for a failed request, or nil.
func (r *Request) Failure() error {
	if r.state != StateFailed {
		return nil
	}
	return r.failure
}

// Result returns the site record if the request succeeded, or
// NO_RESULT_TO_SAVE otherwise (including stale results).
func (r *Request) Result() (*SiteRecord, error) {
	if r.state != StateSucceeded {
		return nil, errors.NewNoResultToSave()
	}
	return r.record, nil
}

// Actable reports whether feedback and save actions may target this
// request's outcome. Stale and unresolved requests are not actable.
func (r *Request) Actable() bool {
	return r.state == StateSucceeded || r.state == StateFailed
}
