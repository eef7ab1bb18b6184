package journal

import (
	"crypto/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/recognition"
)

// Collection owns the set of saved journal entries. Insertion order is the
// canonical display order; search, favorites, and recent are pure
// projections over it. All mutation is serialized behind one mutex, the
// single mutual-exclusion boundary required when surfaces serve
// concurrent callers.
type Collection struct {
	mu      sync.Mutex
	entries []Entry
	store   Store // optional write-through backing

	now func() time.Time
}

// NewCollection creates a collection, loading existing entries from the
// store if one is provided.
func NewCollection(store Store) (*Collection, error) {
	c := &Collection{
		store: store,
		now:   time.Now,
	}

	if store != nil {
		entries, err := store.List()
		if err != nil {
			return nil, err
		}
		c.entries = entries
	}

	return c, nil
}

// Add inserts a new entry at the end of the canonical order. The entry's
// ID and timestamps are assigned here; fails with VALIDATION_ERROR if the
// title is empty.
func (c *Collection) Add(e Entry) (Entry, error) {
	if strings.TrimSpace(e.Title) == "" {
		return Entry{}, errors.NewValidation("title is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insert(e)
}

// SaveFromRecognition creates an entry seeded from a succeeded recognition
// request: title and location from the site record, the submitted image,
// today's date, empty notes. Fails with NO_RESULT_TO_SAVE if the request
// did not succeed or went stale.
func (c *Collection) SaveFromRecognition(req *recognition.Request) (Entry, error) {
	rec, err := req.Result()
	if err != nil {
		return Entry{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.insert(Entry{
		Title:     rec.Name,
		Location:  rec.Location,
		VisitDate: c.now().UTC().Format("2006-01-02"),
		ImageRef:  req.ImageRef(),
	})
}

// insert assigns identity and timestamps, appends, and writes through.
// Caller holds the lock.
func (c *Collection) insert(e Entry) (Entry, error) {
	id, err := generateULID()
	if err != nil {
		return Entry{}, errors.NewInternal(err)
	}

	now := c.now().Unix()
	e.ID = id
	e.CreatedAt = now
	e.ModifiedAt = now
	e.Favorite = false

	if c.store != nil {
		if err := c.store.Put(e); err != nil {
			return Entry{}, err
		}
	}

	c.entries = append(c.entries, e)
	return e, nil
}

// Edit applies a partial content update and bumps ModifiedAt. Fails with
// NOT_FOUND if the id is absent, VALIDATION_ERROR if the patch is empty or
// blanks the title.
func (c *Collection) Edit(id string, patch Patch) (Entry, error) {
	if patch.empty() {
		return Entry{}, errors.NewValidation("at least one editable field must be provided")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Entry{}, errors.NewValidation("title must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.find(id)
	if err != nil {
		return Entry{}, err
	}

	updated := c.entries[i]
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Location != nil {
		updated.Location = *patch.Location
	}
	if patch.VisitDate != nil {
		updated.VisitDate = *patch.VisitDate
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}
	if now := c.now().Unix(); now > updated.ModifiedAt {
		updated.ModifiedAt = now
	}

	if c.store != nil {
		if err := c.store.Put(updated); err != nil {
			return Entry{}, err
		}
	}

	c.entries[i] = updated
	return updated, nil
}

// ToggleFavorite flips the favorite flag. Favoriting is metadata, so
// ModifiedAt is untouched; two toggles restore the original state.
func (c *Collection) ToggleFavorite(id string) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.find(id)
	if err != nil {
		return Entry{}, err
	}

	updated := c.entries[i]
	updated.Favorite = !updated.Favorite

	if c.store != nil {
		if err := c.store.Put(updated); err != nil {
			return Entry{}, err
		}
	}

	c.entries[i] = updated
	return updated, nil
}

// Remove deletes the entry permanently. There is no soft delete or undo.
func (c *Collection) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.find(id)
	if err != nil {
		return err
	}

	if c.store != nil {
		if err := c.store.Delete(id); err != nil {
			return err
		}
	}

	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return nil
}

// Get returns a single entry by id.
func (c *Collection) Get(id string) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.find(id)
	if err != nil {
		return Entry{}, err
	}
	return c.entries[i], nil
}

// All returns the full canonical listing.
func (c *Collection) All() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(nil)
}

// Search returns entries whose title, location, or notes contain the query
// (case-insensitive substring). An empty query yields the full canonical
// order. The result is a fresh copy each call and never mutates the
// collection.
func (c *Collection) Search(query string) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.snapshot(nil)
	}

	return c.snapshot(func(e Entry) bool {
		return strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Location), q) ||
			strings.Contains(strings.ToLower(e.Notes), q)
	})
}

// Favorites returns all favorited entries in canonical order. Membership
// derives from the favorite flag itself, so filtering and toggling cannot
// disagree.
func (c *Collection) Favorites() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(func(e Entry) bool { return e.Favorite })
}

// Recent returns up to n entries, most recently created first. CreatedAt
// ties resolve to the later insertion.
func (c *Collection) Recent(n int) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 {
		return []Entry{}
	}

	all := c.snapshot(nil)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt
	})
	// Stable sort keeps insertion order within equal timestamps; reverse
	// those runs so the later insertion ranks as more recent.
	for i := 0; i < len(all); {
		j := i
		for j+1 < len(all) && all[j+1].CreatedAt == all[i].CreatedAt {
			j++
		}
		for lo, hi := i, j; lo < hi; lo, hi = lo+1, hi-1 {
			all[lo], all[hi] = all[hi], all[lo]
		}
		i = j + 1
	}

	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// snapshot copies entries matching the filter (nil matches all).
// Caller holds the lock.
func (c *Collection) snapshot(match func(Entry) bool) []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if match == nil || match(e) {
			out = append(out, e)
		}
	}
	return out
}

// find locates an entry index by id. Caller holds the lock.
func (c *Collection) find(id string) (int, error) {
	for i, e := range c.entries {
		if e.ID == id {
			return i, nil
		}
	}
	return 0, errors.NewNotFound(id)
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
