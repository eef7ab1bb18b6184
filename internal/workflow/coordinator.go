package workflow

import (
	"context"

	"github.com/histofy/histofy/internal/config"
	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/feedback"
	"github.com/histofy/histofy/internal/journal"
	"github.com/histofy/histofy/internal/recognition"
	"github.com/histofy/histofy/internal/upload"
)

// State is the coordinator's position in the identify-and-save flow.
type State string

const (
	StateIdle              State = "idle"
	StateImageStaged       State = "image_staged"
	StateIdentifying       State = "identifying"
	StateIdentifiedSuccess State = "identified_success"
	StateIdentifiedFailure State = "identified_failure"
)

// Coordinator drives one interactive session through the full flow: stage
// a photo, identify it, collect feedback on the result, save it to the
// journal. It holds the current upload session, the active recognition
// request, and the feedback collector bound to that request's outcome.
//
// A coordinator serves a single caller at a time and is not safe for
// concurrent use. The journal collection it writes to has its own lock.
type Coordinator struct {
	cfg      *config.Config
	svc      recognition.Service
	recorder feedback.Recorder
	journal  *journal.Collection

	session   *upload.Session
	request   *recognition.Request
	collector *feedback.Collector
	state     State

	// gen identifies the in-flight identification. Staging a new image or
	// discarding bumps it, so late completions for superseded requests are
	// dropped instead of resurrecting a dead flow.
	gen uint64
}

// NewCoordinator wires a coordinator over its collaborators. A nil config
// falls back to defaults; a nil recorder drops feedback events.
func NewCoordinator(cfg *config.Config, svc recognition.Service, recorder feedback.Recorder, jc *journal.Collection) *Coordinator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Coordinator{
		cfg:      cfg,
		svc:      svc,
		recorder: recorder,
		journal:  jc,
		session:  upload.NewSession(),
		state:    StateIdle,
	}
}

// State returns the current workflow state.
func (c *Coordinator) State() State {
	return c.state
}

// Session returns the upload session.
func (c *Coordinator) Session() *upload.Session {
	return c.session
}

// Request returns the active recognition request, or nil before the first
// identification.
func (c *Coordinator) Request() *recognition.Request {
	return c.request
}

// Feedback returns the collector for the current outcome, or nil when no
// resolved result is on screen.
func (c *Coordinator) Feedback() *feedback.Collector {
	return c.collector
}

// Result returns the identified site record, or NO_RESULT_TO_SAVE when the
// current request has not succeeded.
func (c *Coordinator) Result() (*recognition.SiteRecord, error) {
	if c.request == nil {
		return nil, errors.NewNoResultToSave()
	}
	return c.request.Result()
}

// StageImage validates and stages a photo, replacing whatever was staged
// before. Allowed from any state; any in-flight or displayed result is
// superseded and its feedback discarded.
func (c *Coordinator) StageImage(data []byte) error {
	if err := c.session.Stage(data, c.cfg.MaxImageBytes); err != nil {
		return err
	}

	c.supersede()
	c.state = StateImageStaged
	return nil
}

// BeginIdentify starts an identification for the staged image and returns
// a token that the eventual completion must present. Only legal with an
// image staged; calling during an in-flight identification fails with
// REQUEST_ALREADY_IN_FLIGHT.
func (c *Coordinator) BeginIdentify() (uint64, error) {
	switch c.state {
	case StateImageStaged:
	case StateIdentifying:
		return 0, errors.NewRequestAlreadyInFlight()
	default:
		return 0, errors.NewIllegalTransition(string(c.state), "identify")
	}

	imageRef, ok := c.session.CurrentImage()
	if !ok {
		return 0, errors.NewIllegalTransition(string(c.state), "identify")
	}

	req := recognition.NewRequest(imageRef)
	if err := req.Start(); err != nil {
		return 0, err
	}
	if err := c.session.MarkSubmitted(); err != nil {
		return 0, err
	}

	c.request = req
	c.collector = nil
	c.state = StateIdentifying
	c.gen++
	return c.gen, nil
}

// CompleteIdentify resolves the identification started under token. A
// completion whose token no longer matches, or that arrives after the flow
// left the identifying state, is dropped silently; the superseding action
// already owns the screen.
func (c *Coordinator) CompleteIdentify(token uint64, rec *recognition.SiteRecord, err error) {
	if token != c.gen || c.state != StateIdentifying {
		return
	}

	if err != nil {
		c.request.Fail(err)
		c.state = StateIdentifiedFailure
	} else {
		c.request.Complete(rec)
		c.state = StateIdentifiedSuccess
	}
	c.collector = feedback.NewCollector(c.request, c.recorder)
}

// Identify runs the full identification synchronously against the
// recognition service. Service failures resolve the flow into the failure
// state and are also returned so the caller can render them.
func (c *Coordinator) Identify(ctx context.Context) (*recognition.SiteRecord, error) {
	token, err := c.BeginIdentify()
	if err != nil {
		return nil, err
	}

	rec, err := c.svc.Identify(ctx, c.request.ImageRef(), c.session.ImageBytes())
	c.CompleteIdentify(token, rec, err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Like forwards a like toggle to the current outcome's collector.
func (c *Coordinator) Like() error {
	if err := c.requireOutcome("like"); err != nil {
		return err
	}
	return c.collector.Like()
}

// OpenDisagree opens the correction form for the current outcome.
func (c *Coordinator) OpenDisagree() error {
	if err := c.requireOutcome("open_disagree"); err != nil {
		return err
	}
	return c.collector.OpenDisagree()
}

// CancelDisagree closes the correction form, restoring prior agreement.
func (c *Coordinator) CancelDisagree() {
	if c.collector != nil {
		c.collector.CancelDisagree()
	}
}

// SubmitDisagree records a disagreement about the current outcome.
func (c *Coordinator) SubmitDisagree(correctedSiteName, comment string) error {
	if err := c.requireOutcome("submit_disagree"); err != nil {
		return err
	}
	return c.collector.SubmitDisagree(correctedSiteName, comment)
}

// SaveToJournal saves the identified site as a journal entry and resets
// the flow to idle. Fails with NO_RESULT_TO_SAVE from the failure state
// and ILLEGAL_TRANSITION anywhere else.
func (c *Coordinator) SaveToJournal() (journal.Entry, error) {
	switch c.state {
	case StateIdentifiedSuccess:
	case StateIdentifiedFailure:
		return journal.Entry{}, errors.NewNoResultToSave()
	default:
		return journal.Entry{}, errors.NewIllegalTransition(string(c.state), "save_to_journal")
	}

	entry, err := c.journal.SaveFromRecognition(c.request)
	if err != nil {
		return journal.Entry{}, err
	}

	c.reset()
	return entry, nil
}

// Discard abandons the current flow from any state and returns to idle.
// An in-flight identification is orphaned; its completion will be dropped.
func (c *Coordinator) Discard() {
	c.reset()
}

// requireOutcome rejects feedback unless a resolved result is on screen.
func (c *Coordinator) requireOutcome(op string) error {
	if c.collector == nil {
		return errors.NewIllegalTransition(string(c.state), op)
	}
	return nil
}

// supersede invalidates the active request and detaches its collector.
func (c *Coordinator) supersede() {
	if c.request != nil {
		c.request.Invalidate()
	}
	c.collector = nil
	c.gen++
}

// reset tears the whole flow down to idle.
func (c *Coordinator) reset() {
	c.session.Discard()
	c.supersede()
	c.request = nil
	c.state = StateIdle
}
