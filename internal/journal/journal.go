package journal

// Entry represents a user-curated record of a visited or identified
// cultural site.
type Entry struct {
	// ID is a ULID that uniquely identifies this entry for its lifetime
	ID string `json:"id"`

	// Title is the site name; the only required field
	Title string `json:"title"`

	// Location is the human-readable location (e.g. "Paris, France")
	Location string `json:"location,omitempty"`

	// VisitDate is the visit date as entered by the user (YYYY-MM-DD)
	VisitDate string `json:"visit_date,omitempty"`

	// ImageRef is a content-addressed handle to the entry's photo. Saved
	// entries keep their own reference, independent of the upload session
	// that produced them.
	ImageRef string `json:"image_ref,omitempty"`

	// Notes is free text; rendered as markdown by the web UI
	Notes string `json:"notes,omitempty"`

	// Favorite marks the entry in the favorites view. Toggling it is
	// metadata, not content, and does not touch ModifiedAt.
	Favorite bool `json:"favorite"`

	// CreatedAt is the Unix timestamp when the entry was created
	CreatedAt int64 `json:"created_at"`

	// ModifiedAt is the Unix timestamp of the last content edit
	ModifiedAt int64 `json:"modified_at"`
}

// Patch is a partial update for an entry's editable content fields.
// Nil means "don't change".
type Patch struct {
	Title     *string
	Location  *string
	VisitDate *string
	Notes     *string
}

// empty reports whether the patch changes nothing.
func (p Patch) empty() bool {
	return p.Title == nil && p.Location == nil && p.VisitDate == nil && p.Notes == nil
}

// Store is an optional persistence backing for a Collection. List must
// return entries in canonical (insertion) order. If no store is configured
// the collection operates purely in memory for the process lifetime.
type Store interface {
	List() ([]Entry, error)
	Put(Entry) error
	Delete(id string) error
}
