package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/recognition"
)

// newTestCollection returns an in-memory collection with a controllable clock.
func newTestCollection(t *testing.T) (*Collection, *time.Time) {
	t.Helper()
	c, err := NewCollection(nil)
	require.NoError(t, err)

	clock := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func addEntry(t *testing.T, c *Collection, title string) Entry {
	t.Helper()
	e, err := c.Add(Entry{Title: title})
	require.NoError(t, err)
	return e
}

func TestAdd_AssignsIdentityAndTimestamps(t *testing.T) {
	c, _ := newTestCollection(t)

	e := addEntry(t, c, "Eiffel Tower")

	require.NotEmpty(t, e.ID)
	require.Equal(t, e.CreatedAt, e.ModifiedAt)
	require.False(t, e.Favorite)
	require.Equal(t, 1, c.Len())
}

func TestAdd_EmptyTitleRejected(t *testing.T) {
	c, _ := newTestCollection(t)

	_, err := c.Add(Entry{Title: "   "})
	require.True(t, errors.Is(err, errors.ErrValidation))
	require.Equal(t, 0, c.Len())
}

func TestAdd_UniqueIDs(t *testing.T) {
	c, _ := newTestCollection(t)

	seen := make(map[string]bool)
	for _, title := range []string{"A", "B", "C", "D"} {
		e := addEntry(t, c, title)
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestSaveFromRecognition(t *testing.T) {
	c, _ := newTestCollection(t)

	req := recognition.NewRequest("sha256:tower")
	require.NoError(t, req.Start())
	req.Complete(&recognition.SiteRecord{Name: "Eiffel Tower", Location: "Paris, France"})

	e, err := c.SaveFromRecognition(req)
	require.NoError(t, err)

	require.Equal(t, "Eiffel Tower", e.Title)
	require.Equal(t, "Paris, France", e.Location)
	require.Equal(t, "sha256:tower", e.ImageRef)
	require.Equal(t, "2026-09-01", e.VisitDate)
	require.Empty(t, e.Notes)
	require.False(t, e.Favorite)
	require.Equal(t, 1, c.Len())
}

func TestSaveFromRecognition_RejectsUnresolved(t *testing.T) {
	c, _ := newTestCollection(t)

	req := recognition.NewRequest("sha256:x")
	require.NoError(t, req.Start())

	_, err := c.SaveFromRecognition(req)
	require.True(t, errors.Is(err, errors.ErrNoResultToSave))
	require.Equal(t, 0, c.Len())
}

func TestSaveFromRecognition_RejectsStale(t *testing.T) {
	c, _ := newTestCollection(t)

	req := recognition.NewRequest("sha256:x")
	require.NoError(t, req.Start())
	req.Complete(&recognition.SiteRecord{Name: "Eiffel Tower"})
	req.Invalidate()

	_, err := c.SaveFromRecognition(req)
	require.True(t, errors.Is(err, errors.ErrNoResultToSave))
}

func TestEdit_AppliesPatchAndBumpsModifiedAt(t *testing.T) {
	c, clock := newTestCollection(t)
	e := addEntry(t, c, "Colosseum")

	*clock = clock.Add(time.Hour)

	notes := "Walking through history."
	location := "Rome, Italy"
	updated, err := c.Edit(e.ID, Patch{Notes: &notes, Location: &location})
	require.NoError(t, err)

	require.Equal(t, "Colosseum", updated.Title)
	require.Equal(t, "Rome, Italy", updated.Location)
	require.Equal(t, "Walking through history.", updated.Notes)
	require.Equal(t, e.CreatedAt, updated.CreatedAt)
	require.GreaterOrEqual(t, updated.ModifiedAt, e.ModifiedAt)
	require.Greater(t, updated.ModifiedAt, updated.CreatedAt)
}

func TestEdit_NotFound(t *testing.T) {
	c, _ := newTestCollection(t)

	title := "x"
	_, err := c.Edit("missing", Patch{Title: &title})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestEdit_EmptyPatchRejected(t *testing.T) {
	c, _ := newTestCollection(t)
	e := addEntry(t, c, "Petra")

	_, err := c.Edit(e.ID, Patch{})
	require.True(t, errors.Is(err, errors.ErrValidation))
}

func TestEdit_BlankTitleRejected(t *testing.T) {
	c, _ := newTestCollection(t)
	e := addEntry(t, c, "Petra")

	blank := ""
	_, err := c.Edit(e.ID, Patch{Title: &blank})
	require.True(t, errors.Is(err, errors.ErrValidation))

	got, err := c.Get(e.ID)
	require.NoError(t, err)
	require.Equal(t, "Petra", got.Title)
}

func TestToggleFavorite_DoubleToggleRestoresState(t *testing.T) {
	c, clock := newTestCollection(t)
	e := addEntry(t, c, "Taj Mahal")

	*clock = clock.Add(time.Hour)

	once, err := c.ToggleFavorite(e.ID)
	require.NoError(t, err)
	require.True(t, once.Favorite)
	// Favoriting is metadata, not content
	require.Equal(t, e.ModifiedAt, once.ModifiedAt)

	twice, err := c.ToggleFavorite(e.ID)
	require.NoError(t, err)
	require.False(t, twice.Favorite)
	require.Equal(t, e.ModifiedAt, twice.ModifiedAt)
}

func TestToggleFavorite_NotFound(t *testing.T) {
	c, _ := newTestCollection(t)
	_, err := c.ToggleFavorite("missing")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRemove(t *testing.T) {
	c, _ := newTestCollection(t)

	a := addEntry(t, c, "A")
	b := addEntry(t, c, "B")
	addEntry(t, c, "C")

	require.NoError(t, c.Remove(b.ID))

	titles := entryTitles(c.Search(""))
	require.Equal(t, []string{"A", "C"}, titles)

	_, err := c.Get(b.ID)
	require.True(t, errors.Is(err, errors.ErrNotFound))

	// Removing again is NotFound; the others are untouched.
	require.True(t, errors.Is(c.Remove(b.ID), errors.ErrNotFound))
	_, err = c.Get(a.ID)
	require.NoError(t, err)
}

func TestSearch_EmptyQueryIsCanonicalOrder(t *testing.T) {
	c, _ := newTestCollection(t)
	for _, title := range []string{"Eiffel Tower", "Colosseum", "Taj Mahal"} {
		addEntry(t, c, title)
	}

	require.Equal(t,
		[]string{"Eiffel Tower", "Colosseum", "Taj Mahal"},
		entryTitles(c.Search("")))
	require.Equal(t, entryTitles(c.All()), entryTitles(c.Search("")))
}

func TestSearch_CaseInsensitiveAcrossFields(t *testing.T) {
	c, _ := newTestCollection(t)

	addEntry(t, c, "Eiffel Tower")
	e, err := c.Add(Entry{Title: "Colosseum", Location: "Rome, Italy"})
	require.NoError(t, err)
	notes := "The marble work is exquisite."
	_, err = c.Edit(e.ID, Patch{Notes: &notes})
	require.NoError(t, err)

	require.Equal(t, []string{"Eiffel Tower"}, entryTitles(c.Search("EIFFEL")))
	require.Equal(t, []string{"Colosseum"}, entryTitles(c.Search("rome")))
	require.Equal(t, []string{"Colosseum"}, entryTitles(c.Search("marble")))
	require.Empty(t, c.Search("machu picchu"))
}

func TestSearch_DoesNotMutateCollection(t *testing.T) {
	c, _ := newTestCollection(t)
	addEntry(t, c, "Petra")

	got := c.Search("")
	got[0].Title = "mutated"

	fresh := c.Search("")
	require.Equal(t, "Petra", fresh[0].Title)
}

func TestFavorites_DerivedFromFlag(t *testing.T) {
	c, _ := newTestCollection(t)

	a := addEntry(t, c, "A")
	addEntry(t, c, "B")
	cc := addEntry(t, c, "C")

	_, err := c.ToggleFavorite(a.ID)
	require.NoError(t, err)
	_, err = c.ToggleFavorite(cc.ID)
	require.NoError(t, err)

	require.Equal(t, []string{"A", "C"}, entryTitles(c.Favorites()))

	_, err = c.ToggleFavorite(a.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"C"}, entryTitles(c.Favorites()))
}

func TestRecent_MostRecentlyCreatedFirst(t *testing.T) {
	c, clock := newTestCollection(t)

	addEntry(t, c, "oldest")
	*clock = clock.Add(time.Minute)
	addEntry(t, c, "middle")
	*clock = clock.Add(time.Minute)
	addEntry(t, c, "newest")

	require.Equal(t, []string{"newest", "middle"}, entryTitles(c.Recent(2)))
	// Fewer than n entries returns all
	require.Equal(t, []string{"newest", "middle", "oldest"}, entryTitles(c.Recent(10)))
	require.Empty(t, c.Recent(0))
}

func TestRecent_TiesBreakTowardLaterInsertion(t *testing.T) {
	c, _ := newTestCollection(t)

	// Fixed clock: all entries share one CreatedAt
	addEntry(t, c, "first")
	addEntry(t, c, "second")
	addEntry(t, c, "third")

	require.Equal(t, []string{"third", "second", "first"}, entryTitles(c.Recent(3)))
}

func entryTitles(entries []Entry) []string {
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	return titles
}
