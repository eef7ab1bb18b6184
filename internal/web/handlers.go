package web

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/histofy/histofy/internal/config"
	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/journal"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	journal  *journal.Collection
	cfg      *config.Config
	renderer *Renderer
	logger   *zap.Logger
}

// HandleList handles GET /journals, the journal listing with recent entries.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	favoritesOnly := parseBoolParam(r, "favorites")

	var entries []journal.Entry
	if favoritesOnly {
		entries = h.journal.Favorites()
	} else {
		entries = h.journal.All()
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Journals",
			Version: h.renderer.version,
			Nav:     "journals",
		},
		Entries:       entries,
		Recent:        h.journal.Recent(h.cfg.RecentCount),
		FavoritesOnly: favoritesOnly,
	})
}

// HandleSearch handles GET /journals/search, substring search over
// title, location, and notes.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	h.renderer.renderPage(w, r, "search", SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    query,
		Entries:  h.journal.Search(query),
		HasQuery: query != "",
	})
}

// HandleDetail handles GET /journals/{id}, viewing a single entry with
// notes rendered as markdown.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("entry ID is required"))
		return
	}

	entry, err := h.journal.Get(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   entry.Title,
			Version: h.renderer.version,
			Nav:     "journals",
		},
		Entry:     entry,
		NotesHTML: renderMarkdown(entry.Notes),
	})
}

// HandleAdd handles POST /journals, creating an entry from the add form.
func (h *Handlers) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid form data"))
		return
	}

	entry, err := h.journal.Add(journal.Entry{
		Title:     r.FormValue("title"),
		Location:  r.FormValue("location"),
		VisitDate: r.FormValue("visit_date"),
		Notes:     r.FormValue("notes"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.logger.Info("journal entry added", zap.String("id", entry.ID), zap.String("title", entry.Title))

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, map[string]any{"entry": entry})
		return
	}
	http.Redirect(w, r, "/journals/"+entry.ID, http.StatusFound)
}

// HandleFavorite handles POST /journals/{id}/favorite, toggling the flag.
func (h *Handlers) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("entry ID is required"))
		return
	}

	entry, err := h.journal.ToggleFavorite(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"entry": entry})
		return
	}
	http.Redirect(w, r, "/journals/"+entry.ID, http.StatusFound)
}

// HandleRemove handles POST /journals/{id}/remove, a permanent delete.
func (h *Handlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("entry ID is required"))
		return
	}

	if err := h.journal.Remove(id); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.logger.Info("journal entry removed", zap.String("id", id))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"removed": true, "id": id})
		return
	}
	http.Redirect(w, r, "/journals", http.StatusFound)
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
