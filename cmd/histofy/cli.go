package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/histofy/histofy/internal/config"
	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/feedback"
	"github.com/histofy/histofy/internal/journal"
	"github.com/histofy/histofy/internal/recognition"
	"github.com/histofy/histofy/internal/web"
	"github.com/histofy/histofy/internal/workflow"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(jc *journal.Collection, cfg *config.Config, svc recognition.Service, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "histofy",
		Usage:   "Cultural site journal with photo identification",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(jc),
			listCmd(jc),
			searchCmd(jc),
			showCmd(jc),
			editCmd(jc),
			favoriteCmd(jc),
			removeCmd(jc),
			recentCmd(jc, cfg),
			identifyCmd(jc, cfg, svc, logger),
			serveCmd(jc, cfg, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(jc *journal.Collection) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a journal entry",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Site name"},
			&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "Location, e.g. \"Paris, France\""},
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Visit date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Free-text notes (markdown)"},
		},
		Action: func(c *cli.Context) error {
			entry, err := jc.Add(journal.Entry{
				Title:     c.String("title"),
				Location:  c.String("location"),
				VisitDate: c.String("date"),
				Notes:     c.String("notes"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(entry)
		},
	}
}

// listCmd creates the list command.
func listCmd(jc *journal.Collection) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List journal entries in the order they were added",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorited entries"},
		},
		Action: func(c *cli.Context) error {
			var entries []journal.Entry
			if c.Bool("favorites") {
				entries = jc.Favorites()
			} else {
				entries = jc.All()
			}
			return outputJSON(map[string]any{"entries": entries, "count": len(entries)})
		},
	}
}

// searchCmd creates the search command.
func searchCmd(jc *journal.Collection) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search entries by title, location, or notes",
		ArgsUsage: "[query]",
		Action: func(c *cli.Context) error {
			entries := jc.Search(c.Args().First())
			return outputJSON(map[string]any{"entries": entries, "count": len(entries)})
		},
	}
}

// showCmd creates the show command.
func showCmd(jc *journal.Collection) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a single entry",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewValidation("entry id is required"))
			}
			entry, err := jc.Get(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(entry)
		},
	}
}

// editCmd creates the edit command.
func editCmd(jc *journal.Collection) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit an entry's title, location, date, or notes",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "New location"},
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "New visit date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "New notes"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewValidation("entry id is required"))
			}

			patch := journal.Patch{}
			if c.IsSet("title") {
				title := c.String("title")
				patch.Title = &title
			}
			if c.IsSet("location") {
				location := c.String("location")
				patch.Location = &location
			}
			if c.IsSet("date") {
				date := c.String("date")
				patch.VisitDate = &date
			}
			if c.IsSet("notes") {
				notes := c.String("notes")
				patch.Notes = &notes
			}

			entry, err := jc.Edit(c.Args().First(), patch)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(entry)
		},
	}
}

// favoriteCmd creates the favorite command.
func favoriteCmd(jc *journal.Collection) *cli.Command {
	return &cli.Command{
		Name:      "favorite",
		Usage:     "Toggle an entry's favorite flag",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewValidation("entry id is required"))
			}
			entry, err := jc.ToggleFavorite(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(entry)
		},
	}
}

// removeCmd creates the remove command.
func removeCmd(jc *journal.Collection) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Permanently delete an entry (no undo)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewValidation("entry id is required"))
			}
			id := c.Args().First()
			if err := jc.Remove(id); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"removed": true, "id": id})
		},
	}
}

// recentCmd creates the recent command.
func recentCmd(jc *journal.Collection, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "List the most recently created entries, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"c"}, Usage: "Maximum entries to return"},
		},
		Action: func(c *cli.Context) error {
			count := c.Int("count")
			if count <= 0 {
				count = cfg.RecentCount
			}
			entries := jc.Recent(count)
			return outputJSON(map[string]any{"entries": entries, "count": len(entries)})
		},
	}
}

// identifyCmd creates the identify command.
func identifyCmd(jc *journal.Collection, cfg *config.Config, svc recognition.Service, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "identify",
		Usage:     "Identify the cultural site in a photo",
		ArgsUsage: "<image-path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "save", Aliases: []string{"s"}, Usage: "Save a successful identification to the journal"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewValidation("image path is required"))
			}

			image, err := os.ReadFile(c.Args().First())
			if err != nil {
				return outputError(errors.NewValidation(fmt.Sprintf("cannot read image: %v", err)))
			}

			coord := workflow.NewCoordinator(cfg, svc, feedback.NewLogRecorder(logger), jc)
			if err := coord.StageImage(image); err != nil {
				return outputError(err)
			}

			rec, err := coord.Identify(c.Context)
			if err != nil {
				return outputError(err)
			}

			result := map[string]any{"site": rec}
			if c.Bool("save") {
				entry, err := coord.SaveToJournal()
				if err != nil {
					return outputError(err)
				}
				result["entry"] = entry
			}
			return outputJSON(result)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(jc *journal.Collection, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8799, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(jc, cfg, logger, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if hErr, ok := err.(*errors.HistofyError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
