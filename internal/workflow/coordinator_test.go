package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/feedback"
	"github.com/histofy/histofy/internal/journal"
	"github.com/histofy/histofy/internal/recognition"
	"github.com/histofy/histofy/internal/upload"
)

// stubService resolves every identification with a fixed record or error.
type stubService struct {
	rec *recognition.SiteRecord
	err error

	gotRef   string
	gotBytes []byte
}

func (s *stubService) Identify(_ context.Context, imageRef string, image []byte) (*recognition.SiteRecord, error) {
	s.gotRef = imageRef
	s.gotBytes = image
	return s.rec, s.err
}

func pngPayload(size int) []byte {
	data := make([]byte, size)
	copy(data, "\x89PNG\r\n\x1a\n")
	return data
}

func towerRecord() *recognition.SiteRecord {
	return &recognition.SiteRecord{
		Name:      "Eiffel Tower",
		Location:  "Paris, France",
		YearBuilt: "1889",
	}
}

func newTestCoordinator(t *testing.T, svc recognition.Service) (*Coordinator, *journal.Collection, *feedback.MemoryRecorder) {
	t.Helper()
	jc, err := journal.NewCollection(nil)
	require.NoError(t, err)
	rec := &feedback.MemoryRecorder{}
	return NewCoordinator(nil, svc, rec, jc), jc, rec
}

func stageAndIdentify(t *testing.T, c *Coordinator) {
	t.Helper()
	require.NoError(t, c.StageImage(pngPayload(64)))
	_, err := c.Identify(context.Background())
	require.NoError(t, err)
}

func TestFullFlow_StageIdentifySave(t *testing.T) {
	svc := &stubService{rec: towerRecord()}
	c, jc, _ := newTestCoordinator(t, svc)

	require.NoError(t, c.StageImage(pngPayload(64)))
	require.Equal(t, StateImageStaged, c.State())

	got, err := c.Identify(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Eiffel Tower", got.Name)
	require.Equal(t, StateIdentifiedSuccess, c.State())
	require.NotEmpty(t, svc.gotRef)
	require.Equal(t, pngPayload(64), svc.gotBytes)

	entry, err := c.SaveToJournal()
	require.NoError(t, err)
	require.Equal(t, "Eiffel Tower", entry.Title)
	require.Equal(t, "Paris, France", entry.Location)
	require.False(t, entry.Favorite)

	// Saving tears the flow down
	require.Equal(t, StateIdle, c.State())
	require.Equal(t, upload.StatusEmpty, c.Session().Status())
	require.Nil(t, c.Feedback())
	require.Equal(t, 1, jc.Len())
}

func TestIdentify_FromIdleRejected(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &stubService{rec: towerRecord()})

	_, err := c.Identify(context.Background())
	require.True(t, errors.Is(err, errors.ErrIllegalTransition))
	require.Equal(t, StateIdle, c.State())
	require.Nil(t, c.Request())
}

func TestBeginIdentify_WhileInFlightRejected(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &stubService{rec: towerRecord()})
	require.NoError(t, c.StageImage(pngPayload(64)))

	_, err := c.BeginIdentify()
	require.NoError(t, err)

	_, err = c.BeginIdentify()
	require.True(t, errors.Is(err, errors.ErrRequestAlreadyInFlight))
	require.Equal(t, StateIdentifying, c.State())
}

func TestIdentify_ServiceFailureEntersFailureState(t *testing.T) {
	svc := &stubService{err: errors.NewNoMatchFound()}
	c, _, _ := newTestCoordinator(t, svc)
	require.NoError(t, c.StageImage(pngPayload(64)))

	_, err := c.Identify(context.Background())
	require.True(t, errors.Is(err, errors.ErrNoMatchFound))
	require.Equal(t, StateIdentifiedFailure, c.State())

	// The failure is on screen: feedback is allowed, saving is not.
	require.NoError(t, c.Like())
	_, err = c.SaveToJournal()
	require.True(t, errors.Is(err, errors.ErrNoResultToSave))
}

func TestCompleteIdentify_StaleTokenDroppedAfterDiscard(t *testing.T) {
	c, jc, _ := newTestCoordinator(t, &stubService{})
	require.NoError(t, c.StageImage(pngPayload(64)))

	token, err := c.BeginIdentify()
	require.NoError(t, err)

	c.Discard()
	require.Equal(t, StateIdle, c.State())

	// The response lands after the user walked away. Nothing changes.
	c.CompleteIdentify(token, towerRecord(), nil)
	require.Equal(t, StateIdle, c.State())
	require.Nil(t, c.Feedback())
	require.Equal(t, 0, jc.Len())
}

func TestCompleteIdentify_StaleTokenDroppedAfterRestage(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &stubService{})
	require.NoError(t, c.StageImage(pngPayload(64)))

	token, err := c.BeginIdentify()
	require.NoError(t, err)

	// A new photo supersedes the in-flight request.
	require.NoError(t, c.StageImage(pngPayload(128)))
	require.Equal(t, StateImageStaged, c.State())

	c.CompleteIdentify(token, towerRecord(), nil)
	require.Equal(t, StateImageStaged, c.State())
	_, err = c.Result()
	require.True(t, errors.Is(err, errors.ErrNoResultToSave))
}

func TestStageImage_InvalidPayloadKeepsState(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &stubService{rec: towerRecord()})

	err := c.StageImage([]byte("plain text, not an image"))
	require.True(t, errors.Is(err, errors.ErrInvalidMediaType))
	require.Equal(t, StateIdle, c.State())
}

func TestStageImage_ReplacesDisplayedResult(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &stubService{rec: towerRecord()})
	stageAndIdentify(t, c)
	require.Equal(t, StateIdentifiedSuccess, c.State())

	require.NoError(t, c.StageImage(pngPayload(128)))
	require.Equal(t, StateImageStaged, c.State())
	require.Nil(t, c.Feedback())

	// Feedback against the superseded result is rejected.
	require.Error(t, c.Like())
}

func TestLikeToggle_ThroughCoordinator(t *testing.T) {
	c, _, recorder := newTestCoordinator(t, &stubService{rec: towerRecord()})
	stageAndIdentify(t, c)

	require.NoError(t, c.Like())
	require.Equal(t, feedback.AgreementLiked, c.Feedback().Agreement())

	require.NoError(t, c.Like())
	require.Equal(t, feedback.AgreementUnset, c.Feedback().Agreement())

	events := recorder.Events()
	require.Len(t, events, 2)
	require.Equal(t, feedback.EventLiked, events[0].Kind)
	require.Equal(t, feedback.EventUnliked, events[1].Kind)
}

func TestDisagree_ThroughCoordinator(t *testing.T) {
	c, _, recorder := newTestCoordinator(t, &stubService{rec: towerRecord()})
	stageAndIdentify(t, c)

	require.NoError(t, c.OpenDisagree())
	require.NoError(t, c.SubmitDisagree("Arc de Triomphe", ""))

	fb := c.Feedback()
	require.Equal(t, feedback.AgreementDisagreed, fb.Agreement())
	require.Equal(t, "Arc de Triomphe", fb.Detail().CorrectedSiteName)
	require.Len(t, recorder.Events(), 1)
	require.Equal(t, feedback.EventDisagreed, recorder.Events()[0].Kind)
}

func TestDisagree_CancelThroughCoordinator(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &stubService{rec: towerRecord()})
	stageAndIdentify(t, c)

	require.NoError(t, c.Like())
	require.NoError(t, c.OpenDisagree())
	c.CancelDisagree()
	require.Equal(t, feedback.AgreementLiked, c.Feedback().Agreement())

	// Cancel with no flow at all is a no-op.
	c.Discard()
	c.CancelDisagree()
}

func TestSaveToJournal_FromIdleRejected(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &stubService{rec: towerRecord()})

	_, err := c.SaveToJournal()
	require.True(t, errors.Is(err, errors.ErrIllegalTransition))
}

func TestSaveToJournal_SecondSaveRejected(t *testing.T) {
	c, jc, _ := newTestCoordinator(t, &stubService{rec: towerRecord()})
	stageAndIdentify(t, c)

	_, err := c.SaveToJournal()
	require.NoError(t, err)

	_, err = c.SaveToJournal()
	require.True(t, errors.Is(err, errors.ErrIllegalTransition))
	require.Equal(t, 1, jc.Len())
}

func TestSavedEntriesShareCollectionWithDirectAdds(t *testing.T) {
	c, jc, _ := newTestCoordinator(t, &stubService{rec: towerRecord()})

	a, err := jc.Add(journal.Entry{Title: "A"})
	require.NoError(t, err)
	b, err := jc.Add(journal.Entry{Title: "B"})
	require.NoError(t, err)
	_ = a

	stageAndIdentify(t, c)
	_, err = c.SaveToJournal()
	require.NoError(t, err)

	require.NoError(t, jc.Remove(b.ID))

	titles := make([]string, 0, jc.Len())
	for _, e := range jc.Search("") {
		titles = append(titles, e.Title)
	}
	require.Equal(t, []string{"A", "Eiffel Tower"}, titles)
}
