package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/journal"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "journals", "search"
}

// ListPageData is the template data for the journal list page.
type ListPageData struct {
	PageData
	Entries       []journal.Entry
	Recent        []journal.Entry
	FavoritesOnly bool
}

// DetailPageData is the template data for the entry detail page.
type DetailPageData struct {
	PageData
	Entry     journal.Entry
	NotesHTML template.HTML
}

// SearchPageData is the template data for the search page.
type SearchPageData struct {
	PageData
	Query    string
	Entries  []journal.Entry
	HasQuery bool
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *zap.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *zap.Logger) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
		"safeHTML":   func(s string) template.HTML { return template.HTML(s) },
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"list":   "list.html",
		"detail": "detail.html",
		"search": "search.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var hErr *errors.HistofyError
	if !stderrors.As(err, &hErr) {
		hErr = errors.NewInternal(err)
	}

	status := hErr.Status
	message := hErr.Message

	// JSON request
	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    string(hErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	// Full error page
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
