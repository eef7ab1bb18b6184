package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var addToolDef = mcp.NewTool("journal_add",
	mcp.WithDescription("Add a journal entry for a cultural site. Title is required; location, visit date, and notes are optional."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Site name")),
	mcp.WithString("location", mcp.Description("Human-readable location, e.g. \"Paris, France\"")),
	mcp.WithString("visit_date", mcp.Description("Visit date in YYYY-MM-DD form")),
	mcp.WithString("notes", mcp.Description("Free-text notes (markdown)")),
)

var listToolDef = mcp.NewTool("journal_list",
	mcp.WithDescription("List journal entries in the order they were added. Set favorites to true to list only favorited entries."),
	mcp.WithBoolean("favorites", mcp.Description("Only favorited entries")),
)

var searchToolDef = mcp.NewTool("journal_search",
	mcp.WithDescription("Search journal entries by case-insensitive substring over title, location, and notes. An empty query returns everything."),
	mcp.WithString("query", mcp.Description("Search text")),
)

var editToolDef = mcp.NewTool("journal_edit",
	mcp.WithDescription("Edit an entry's title, location, visit date, or notes. Omitted fields are unchanged; at least one must be provided."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
	mcp.WithString("title", mcp.Description("New title (must not be empty)")),
	mcp.WithString("location", mcp.Description("New location")),
	mcp.WithString("visit_date", mcp.Description("New visit date in YYYY-MM-DD form")),
	mcp.WithString("notes", mcp.Description("New notes")),
)

var favoriteToolDef = mcp.NewTool("journal_favorite",
	mcp.WithDescription("Toggle an entry's favorite flag."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
)

var removeToolDef = mcp.NewTool("journal_remove",
	mcp.WithDescription("Permanently delete a journal entry. There is no undo."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
)

var recentToolDef = mcp.NewTool("journal_recent",
	mcp.WithDescription("List the most recently created entries, newest first."),
	mcp.WithNumber("count", mcp.Description("Maximum entries to return (defaults to the configured recent count)")),
)

var identifyToolDef = mcp.NewTool("site_identify",
	mcp.WithDescription("Identify the cultural site in a photo via the recognition service. Optionally save the result as a journal entry."),
	mcp.WithString("image_base64", mcp.Required(), mcp.Description("Photo payload, base64-encoded")),
	mcp.WithBoolean("save", mcp.Description("Save a successful identification to the journal")),
)
