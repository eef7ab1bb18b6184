package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/histofy/histofy/internal/config"
	"github.com/histofy/histofy/internal/db"
	"github.com/histofy/histofy/internal/errors"
	"github.com/histofy/histofy/internal/feedback"
	"github.com/histofy/histofy/internal/journal"
	"github.com/histofy/histofy/internal/mcp"
	"github.com/histofy/histofy/internal/recognition"
	"github.com/histofy/histofy/internal/workflow"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "list": true, "search": true, "show": true,
	"edit": true, "favorite": true, "remove": true, "recent": true,
	"identify": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _  _ _    _        __
  | || (_)__| |_ ___ / _|_  _
  | __ | (_-<  _/ _ \  _| || |
  |_||_|_/__/\__\___/_|  \_, |
                         |__/

  Cultural site journal with photo identification

  Usage: histofy <command> [options]
         histofy --help

  MCP server mode requires piped input.`)
}

// unavailableService stands in when no recognition endpoint is configured.
type unavailableService struct{}

func (unavailableService) Identify(context.Context, string, []byte) (*recognition.SiteRecord, error) {
	return nil, errors.NewServiceUnavailable("recognition service is not configured")
}

// newRecognitionService builds the recognition client from config.
func newRecognitionService(cfg *config.Config) recognition.Service {
	if cfg.RecognitionURL == "" {
		return unavailableService{}
	}
	timeout := time.Duration(cfg.RecognitionTimeoutSecs) * time.Second
	return recognition.NewClient(cfg.RecognitionURL, timeout)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".histofy")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "warning: unknown disabled tools in config: %v\n", unknown)
	}

	jc, err := journal.NewCollection(db.NewSQLiteStore(database))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load journal: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout carries command output and, in server
	// mode, the MCP protocol stream.
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	svc := newRecognitionService(cfg)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(jc, cfg, svc, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'histofy --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	coord := workflow.NewCoordinator(cfg, svc, feedback.NewLogRecorder(logger), jc)
	if err := mcp.Run(jc, coord, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
