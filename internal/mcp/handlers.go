package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/histofy/histofy/internal/config"
	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/journal"
	"github.com/histofy/histofy/internal/workflow"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	journal *journal.Collection
	coord   *workflow.Coordinator
	cfg     *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(jc *journal.Collection, coord *workflow.Coordinator, cfg *config.Config) *Handlers {
	return &Handlers{journal: jc, coord: coord, cfg: cfg}
}

// Request types for each tool

// AddRequest represents the arguments for journal_add.
type AddRequest struct {
	Title     string `json:"title"`
	Location  string `json:"location,omitempty"`
	VisitDate string `json:"visit_date,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// ListRequest represents the arguments for journal_list.
type ListRequest struct {
	Favorites bool `json:"favorites,omitempty"`
}

// SearchRequest represents the arguments for journal_search.
type SearchRequest struct {
	Query string `json:"query,omitempty"`
}

// EditRequest represents the arguments for journal_edit.
type EditRequest struct {
	ID        string  `json:"id"`
	Title     *string `json:"title,omitempty"`
	Location  *string `json:"location,omitempty"`
	VisitDate *string `json:"visit_date,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// FavoriteRequest represents the arguments for journal_favorite.
type FavoriteRequest struct {
	ID string `json:"id"`
}

// RemoveRequest represents the arguments for journal_remove.
type RemoveRequest struct {
	ID string `json:"id"`
}

// RecentRequest represents the arguments for journal_recent.
type RecentRequest struct {
	Count int `json:"count,omitempty"`
}

// IdentifyRequest represents the arguments for site_identify.
type IdentifyRequest struct {
	ImageBase64 string `json:"image_base64"`
	Save        bool   `json:"save,omitempty"`
}

// Handler implementations

// HandleAdd handles the journal_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	entry, err := h.journal.Add(journal.Entry{
		Title:     input.Title,
		Location:  input.Location,
		VisitDate: input.VisitDate,
		Notes:     input.Notes,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"entry": entry})
}

// HandleList handles the journal_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	var entries []journal.Entry
	if input.Favorites {
		entries = h.journal.Favorites()
	} else {
		entries = h.journal.All()
	}

	return successResult(map[string]any{"entries": entries, "count": len(entries)})
}

// HandleSearch handles the journal_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	entries := h.journal.Search(input.Query)
	return successResult(map[string]any{"entries": entries, "count": len(entries)})
}

// HandleEdit handles the journal_edit tool call.
func (h *Handlers) HandleEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EditRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	entry, err := h.journal.Edit(input.ID, journal.Patch{
		Title:     input.Title,
		Location:  input.Location,
		VisitDate: input.VisitDate,
		Notes:     input.Notes,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"entry": entry})
}

// HandleFavorite handles the journal_favorite tool call.
func (h *Handlers) HandleFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FavoriteRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	entry, err := h.journal.ToggleFavorite(input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"entry": entry})
}

// HandleRemove handles the journal_remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	if err := h.journal.Remove(input.ID); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"removed": true, "id": input.ID})
}

// HandleRecent handles the journal_recent tool call.
func (h *Handlers) HandleRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecentRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	count := input.Count
	if count <= 0 {
		count = h.cfg.RecentCount
	}

	entries := h.journal.Recent(count)
	return successResult(map[string]any{"entries": entries, "count": len(entries)})
}

// HandleIdentify handles the site_identify tool call. It drives the full
// flow in one shot: stage, identify, optionally save. The workflow is
// returned to idle afterward so the next call starts clean.
func (h *Handlers) HandleIdentify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IdentifyRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	image, err := base64.StdEncoding.DecodeString(input.ImageBase64)
	if err != nil {
		return errorResult(errors.NewValidation("image_base64 is not valid base64")), nil
	}

	if err := h.coord.StageImage(image); err != nil {
		return errorResult(err), nil
	}

	rec, err := h.coord.Identify(ctx)
	if err != nil {
		h.coord.Discard()
		return errorResult(err), nil
	}

	payload := map[string]any{"site": rec}
	if input.Save {
		entry, err := h.coord.SaveToJournal()
		if err != nil {
			h.coord.Discard()
			return errorResult(err), nil
		}
		payload["entry"] = entry
	} else {
		h.coord.Discard()
	}

	return successResult(payload)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if hErr, ok := err.(*errors.HistofyError); ok {
		errorObj := map[string]any{
			"code":    hErr.Code,
			"message": hErr.Message,
			"status":  hErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if hErr.Code != errors.ErrInternal && hErr.Details != nil {
			errorObj["details"] = hErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
