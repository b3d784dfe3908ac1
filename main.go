// ABOUTME: Entry point for the reportmaster CLI, TUI, web UI and MCP server
// ABOUTME: Loads config, opens the configured store and routes to a command
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/charm"
	"github.com/harperreed/reportmaster/cli"
	"github.com/harperreed/reportmaster/config"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/logging"
	"github.com/harperreed/reportmaster/tui"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/reportmaster/reportmaster.db)")
	backend := flag.String("backend", "", "Storage backend: sqlite or charm")
	envFile := flag.String("env-file", ".env", "Environment file to load")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("reportmaster version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backend != "" {
		cfg.Backend = *backend
	}

	closer, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer func() { _ = closer.Close() }()

	command := args[0]
	commandArgs := args[1:]

	if command == "help" {
		printUsage()
		return
	}

	store, charmClient, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	state, err := app.New(store)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	cli.MCPVersion = version

	if err := run(command, commandArgs, cfg, state, charmClient); err != nil {
		closeStore()
		log.Fatalf("Error: %v", err)
	}
}

// openStore opens the sqlite database or the charm KV, depending on the
// configured backend. The charm client is nil for sqlite.
func openStore(cfg *config.Config) (db.Store, *charm.Client, func(), error) {
	switch cfg.Backend {
	case config.BackendCharm:
		c, err := charm.Open()
		if err != nil {
			return nil, nil, nil, err
		}
		log.Debug("using charm backend", "host", c.Config().Host)
		return c, c, func() { _ = c.Close() }, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		s, err := db.OpenStore(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Debug("using sqlite backend", "path", cfg.DBPath)
		return s, nil, func() { _ = s.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("invalid backend %q", cfg.Backend)
	}
}

func run(command string, args []string, cfg *config.Config, state *app.State, charmClient *charm.Client) error {
	store := state.Store()

	switch command {
	case "reports":
		return subcommand("reports", args, map[string]func([]string) error{
			"new":     func(a []string) error { return cli.ReportsNewCommand(store, a) },
			"list":    func(a []string) error { return cli.ReportsListCommand(store, a) },
			"show":    func(a []string) error { return cli.ReportsShowCommand(store, a) },
			"edit":    func(a []string) error { return cli.ReportsEditCommand(store, a) },
			"delete":  func(a []string) error { return cli.ReportsDeleteCommand(store, a) },
			"promote": func(a []string) error { return cli.ReportsPromoteCommand(store, a) },
			"pdf":     func(a []string) error { return cli.ReportsPDFCommand(store, a) },
			"share":   func(a []string) error { return cli.ReportsShareCommand(store, a) },
		})

	case "photos":
		return subcommand("photos", args, map[string]func([]string) error{
			"add":      func(a []string) error { return cli.PhotosAddCommand(store, a) },
			"list":     func(a []string) error { return cli.PhotosListCommand(store, a) },
			"caption":  func(a []string) error { return cli.PhotosCaptionCommand(store, a) },
			"annotate": func(a []string) error { return cli.PhotosAnnotateCommand(store, a) },
			"remove":   func(a []string) error { return cli.PhotosRemoveCommand(store, a) },
		})

	case "backup":
		return subcommand("backup", args, map[string]func([]string) error{
			"export": func(a []string) error { return cli.BackupExportCommand(store, a) },
			"import": func(a []string) error { return cli.BackupImportCommand(store, a) },
		})

	case "user":
		return subcommand("user", args, map[string]func([]string) error{
			"register": func(a []string) error { return cli.UserRegisterCommand(store, a) },
			"login":    func(a []string) error { return cli.UserLoginCommand(store, a) },
			"logout":   func(a []string) error { return cli.UserLogoutCommand(store, a) },
			"whoami":   func(a []string) error { return cli.UserWhoamiCommand(store, a) },
		})

	case "viz":
		return subcommand("viz", args, map[string]func([]string) error{
			"graph":     func(a []string) error { return cli.VizGraphCommand(store, a) },
			"dashboard": func(a []string) error { return cli.VizDashboardCommand(store, a) },
		})

	case "sync":
		if charmClient == nil {
			return fmt.Errorf("sync requires --backend charm")
		}
		w := os.Stdout
		return subcommand("sync", args, map[string]func([]string) error{
			"status": func(a []string) error { return charm.SyncStatusCommand(charmClient, w, a) },
			"now":    func(a []string) error { return charm.SyncNowCommand(charmClient, w, a) },
			"auto":   func(a []string) error { return charm.SyncAutoCommand(charmClient, w, a) },
			"wipe":   func(a []string) error { return charm.SyncWipeCommand(charmClient, w, a) },
		})

	case "theme":
		return cli.ThemeCommand(state, args)
	case "shift-templates":
		return cli.ShiftTemplatesCommand(store, args)
	case "tui":
		return tui.Run(state)
	case "mcp":
		return cli.MCPCommand(state)
	case "web":
		return cli.WebCommand(state, cfg.WebAddr, cfg.SessionSecret, args)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	return nil
}

func subcommand(group string, args []string, commands map[string]func([]string) error) error {
	if len(args) == 0 {
		fmt.Printf("Error: %s requires a subcommand\n\n", group)
		printUsage()
		os.Exit(1)
	}
	fn, ok := commands[args[0]]
	if !ok {
		fmt.Printf("Unknown %s command: %s\n\n", group, args[0])
		printUsage()
		os.Exit(1)
	}
	return fn(args[1:])
}

func printUsage() {
	fmt.Printf(`reportmaster v%s - Maintenance shift reports

USAGE:
  reportmaster [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/reportmaster/reportmaster.db)
  --backend <name>       Storage backend: sqlite (default) or charm
  --env-file <path>      Environment file (default: .env)

COMMANDS:
  reports                Create, edit, promote and export reports
  photos                 Manage report photos
  backup                 Export or restore the whole collection
  user                   Local accounts
  theme [light|dark|toggle]
  shift-templates        Per-shift announcement texts
  tui                    Interactive terminal UI
  web                    Browser UI and JSON API
  mcp                    Start MCP server on stdio
  viz                    Lineage graph and dashboard
  sync                   Charm sync (with --backend charm)

REPORT COMMANDS:
  reportmaster reports new        Create a template
    --om, --date, --shift, --work-center, --category, --activity-type,
    --equipment, --description, --activities, --technicians, ...
  reportmaster reports list       List templates and reports
    --type <template|report>  Filter by type
    --category <name>         Filter by category
    --query <text>            Search text fields
  reportmaster reports show <id>
  reportmaster reports edit [flags] <id>
  reportmaster reports delete [--yes] <id>
  reportmaster reports promote <id>   Turn a complete template into a report
  reportmaster reports pdf [--out <path>] <id>
  reportmaster reports share [--text] <id>   Print the WhatsApp link or summary

PHOTO COMMANDS:
  reportmaster photos add --report <id> [--caption <text>] <file>...
  reportmaster photos list <report-id>
  reportmaster photos caption --report <id> --photo <id> --caption <text>
  reportmaster photos annotate --report <id> --photo <id> --strokes "x,y x,y;..."
  reportmaster photos remove --report <id> --photo <id>

BACKUP COMMANDS:
  reportmaster backup export [--out <path>]
  reportmaster backup import [--yes] <file>

USER COMMANDS:
  reportmaster user register --username <name> [--password <pw>]
  reportmaster user login --username <name> [--password <pw>]
  reportmaster user logout
  reportmaster user whoami

VIZ COMMANDS:
  reportmaster viz graph [--work-center <wc>] [--format dot|svg] [--output <file>]
  reportmaster viz dashboard

SYNC COMMANDS:
  reportmaster --backend charm sync status|now|auto|wipe

EXAMPLES:
  # Start the web UI
  reportmaster web --addr 127.0.0.1:8080

  # Promote a finished template
  reportmaster reports promote 01J...

  # Back up everything to the current directory
  reportmaster backup export

`, version)
}
