package feedback

import (
	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/recognition"
)

// Agreement is the user's stance on a recognition outcome.
type Agreement string

const (
	AgreementUnset     Agreement = "unset"
	AgreementLiked     Agreement = "liked"
	AgreementDisagreed Agreement = "disagreed"
)

// DisagreeDetail carries the optional correction supplied with a
// disagreement. Both fields may be empty; "tell us what this really is"
// accepts a bare disagreement.
type DisagreeDetail struct {
	CorrectedSiteName string `json:"corrected_site_name,omitempty"`
	Comment           string `json:"comment,omitempty"`
}

// Collector captures agreement signals about exactly one recognition
// request's outcome. It refuses to act on stale or unresolved requests.
type Collector struct {
	request  *recognition.Request
	recorder Recorder

	agreement Agreement
	detail    *DisagreeDetail

	formOpen       bool
	priorAgreement Agreement // restored if the disagree form is cancelled
}

// NewCollector attaches a collector to a recognition request.
// A nil recorder falls back to NoopRecorder.
func NewCollector(request *recognition.Request, recorder Recorder) *Collector {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &Collector{
		request:   request,
		recorder:  recorder,
		agreement: AgreementUnset,
	}
}

// Agreement returns the current agreement value.
func (c *Collector) Agreement() Agreement {
	return c.agreement
}

// Detail returns the stored disagreement detail, or nil.
func (c *Collector) Detail() *DisagreeDetail {
	return c.detail
}

// FormOpen reports whether the disagree form is currently open.
func (c *Collector) FormOpen() bool {
	return c.formOpen
}

// Like toggles agreement between unset and liked, emitting exactly one
// event per transition. Feedback against a stale or unresolved result is
// rejected.
func (c *Collector) Like() error {
	if err := c.requireActable("like"); err != nil {
		return err
	}

	if c.agreement == AgreementLiked {
		c.agreement = AgreementUnset
		c.recorder.Record(newEvent(EventUnliked, c.request.ImageRef(), c.siteName()))
		return nil
	}

	c.agreement = AgreementLiked
	c.detail = nil
	c.recorder.Record(newEvent(EventLiked, c.request.ImageRef(), c.siteName()))
	return nil
}

// OpenDisagree opens the correction form without committing agreement.
func (c *Collector) OpenDisagree() error {
	if err := c.requireActable("open_disagree"); err != nil {
		return err
	}
	if !c.formOpen {
		c.priorAgreement = c.agreement
		c.formOpen = true
	}
	return nil
}

// CancelDisagree closes the form and restores the pre-open agreement value.
func (c *Collector) CancelDisagree() {
	if !c.formOpen {
		return
	}
	c.agreement = c.priorAgreement
	c.formOpen = false
}

// SubmitDisagree records a disagreement with optional correction detail and
// emits one event. Allowed against both succeeded and failed results, so a
// user may correct a low-confidence miss. Empty fields are allowed.
func (c *Collector) SubmitDisagree(correctedSiteName, comment string) error {
	if err := c.requireActable("submit_disagree"); err != nil {
		return err
	}

	c.agreement = AgreementDisagreed
	c.detail = &DisagreeDetail{
		CorrectedSiteName: correctedSiteName,
		Comment:           comment,
	}
	c.formOpen = false
	c.recorder.Record(newEvent(EventDisagreed, c.request.ImageRef(), correctedSiteName))
	return nil
}

// requireActable rejects feedback against requests with no actable outcome.
func (c *Collector) requireActable(op string) error {
	if c.request == nil || !c.request.Actable() {
		state := "detached"
		if c.request != nil {
			state = string(c.request.State())
		}
		return errors.NewIllegalTransition(state, op)
	}
	return nil
}

// siteName returns the identified site name, if the request succeeded.
func (c *Collector) siteName() string {
	if rec := c.request.Record(); rec != nil {
		return rec.Name
	}
	return ""
}
