package feedback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/recognition"
)

// succeededRequest returns a request resolved with an Eiffel Tower record.
func succeededRequest(t *testing.T) *recognition.Request {
	t.Helper()
	r := recognition.NewRequest("sha256:abc")
	require.NoError(t, r.Start())
	r.Complete(&recognition.SiteRecord{Name: "Eiffel Tower", Location: "Paris, France"})
	return r
}

// failedRequest returns a request resolved with a service failure.
func failedRequest(t *testing.T) *recognition.Request {
	t.Helper()
	r := recognition.NewRequest("sha256:abc")
	require.NoError(t, r.Start())
	r.Fail(errors.NewNoMatchFound())
	return r
}

func TestLike_TogglesWithOneEventPerTransition(t *testing.T) {
	rec := &MemoryRecorder{}
	c := NewCollector(succeededRequest(t), rec)

	require.NoError(t, c.Like())
	require.Equal(t, AgreementLiked, c.Agreement())

	require.NoError(t, c.Like())
	require.Equal(t, AgreementUnset, c.Agreement())

	events := rec.Events()
	require.Len(t, events, 2)
	require.Equal(t, EventLiked, events[0].Kind)
	require.Equal(t, EventUnliked, events[1].Kind)
	require.NotEqual(t, events[0].ID, events[1].ID)
	require.Equal(t, "Eiffel Tower", events[0].SiteName)
}

func TestLike_RejectedWhenUnresolved(t *testing.T) {
	r := recognition.NewRequest("sha256:abc")
	require.NoError(t, r.Start())
	c := NewCollector(r, &MemoryRecorder{})

	err := c.Like()
	require.True(t, errors.Is(err, errors.ErrIllegalTransition))
}

func TestLike_RejectedWhenStale(t *testing.T) {
	r := succeededRequest(t)
	r.Invalidate()
	c := NewCollector(r, &MemoryRecorder{})

	err := c.Like()
	require.True(t, errors.Is(err, errors.ErrIllegalTransition))
}

func TestLike_AllowedOnFailedResult(t *testing.T) {
	c := NewCollector(failedRequest(t), &MemoryRecorder{})
	require.NoError(t, c.Like())
	require.Equal(t, AgreementLiked, c.Agreement())
}

func TestDisagree_SubmitStoresDetail(t *testing.T) {
	rec := &MemoryRecorder{}
	c := NewCollector(succeededRequest(t), rec)

	require.NoError(t, c.OpenDisagree())
	require.True(t, c.FormOpen())

	require.NoError(t, c.SubmitDisagree("Arc de Triomphe", ""))

	require.Equal(t, AgreementDisagreed, c.Agreement())
	require.False(t, c.FormOpen())
	require.NotNil(t, c.Detail())
	require.Equal(t, "Arc de Triomphe", c.Detail().CorrectedSiteName)
	require.Empty(t, c.Detail().Comment)

	events := rec.Events()
	require.Len(t, events, 1)
	require.Equal(t, EventDisagreed, events[0].Kind)
}

func TestDisagree_EmptySubmissionAllowed(t *testing.T) {
	c := NewCollector(succeededRequest(t), &MemoryRecorder{})

	require.NoError(t, c.OpenDisagree())
	require.NoError(t, c.SubmitDisagree("", ""))
	require.Equal(t, AgreementDisagreed, c.Agreement())
}

func TestDisagree_CancelRestoresPriorAgreement(t *testing.T) {
	rec := &MemoryRecorder{}
	c := NewCollector(succeededRequest(t), rec)

	require.NoError(t, c.Like())
	require.Equal(t, AgreementLiked, c.Agreement())

	require.NoError(t, c.OpenDisagree())
	c.CancelDisagree()

	require.Equal(t, AgreementLiked, c.Agreement())
	require.False(t, c.FormOpen())
	// Only the like emitted an event; open/cancel are not transitions.
	require.Len(t, rec.Events(), 1)
}

func TestDisagree_AllowedOnFailedResult(t *testing.T) {
	c := NewCollector(failedRequest(t), &MemoryRecorder{})

	require.NoError(t, c.OpenDisagree())
	require.NoError(t, c.SubmitDisagree("Colosseum", "it is clearly in Rome"))
	require.Equal(t, AgreementDisagreed, c.Agreement())
	require.Equal(t, "Colosseum", c.Detail().CorrectedSiteName)
}

func TestCancelDisagree_NoopWhenClosed(t *testing.T) {
	c := NewCollector(succeededRequest(t), &MemoryRecorder{})
	c.CancelDisagree()
	require.Equal(t, AgreementUnset, c.Agreement())
}

func TestNewCollector_NilRecorderDefaultsToNoop(t *testing.T) {
	c := NewCollector(succeededRequest(t), nil)
	require.NoError(t, c.Like())
}
