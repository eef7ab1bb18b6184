package recognition

import "context"

// SiteRecord is the recognition service's description of a cultural site.
// All fields are opaque strings supplied by the service; the core checks
// presence, never content.
type SiteRecord struct {
	// Name is the site's display name (e.g. "Eiffel Tower")
	Name string `json:"name"`

	// Location is the human-readable location (e.g. "Paris, France")
	Location string `json:"location"`

	// Description is a free-text summary of the site
	Description string `json:"description"`

	// YearBuilt is the construction year as reported by the service
	YearBuilt string `json:"year_built"`

	// Height is the site's height as reported by the service
	Height string `json:"height"`

	// Architect is the credited architect or builder
	Architect string `json:"architect"`
}

// Service identifies the cultural site shown in an image. Implementations
// must return a HistofyError with code SERVICE_UNAVAILABLE, NO_MATCH_FOUND,
// or TIMEOUT on failure. The core guarantees at most one call in flight per
// upload session.
type Service interface {
	Identify(ctx context.Context, imageRef string, image []byte) (*SiteRecord, error)
}
