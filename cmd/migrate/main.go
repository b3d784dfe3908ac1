// ABOUTME: Migration utility for moving report data between storage backends
// ABOUTME: Copies keys between SQLite and Charm KV, or imports a legacy JSON export

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/reportmaster/charm"
	"github.com/harperreed/reportmaster/config"
	"github.com/harperreed/reportmaster/db"
)

const (
	toCharm  = "to-charm"
	toSQLite = "to-sqlite"
)

type options struct {
	dbPath    string
	direction string
	charmDir  string
	legacy    string
	dryRun    bool
	backup    bool
	force     bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.dbPath, "db", config.DefaultDBPath(), "Path to SQLite database file")
	flag.StringVar(&opts.direction, "direction", toCharm, "Copy direction: to-charm or to-sqlite")
	flag.StringVar(&opts.charmDir, "charm-dir", "", "Local Badger directory instead of the linked charm account")
	flag.StringVar(&opts.legacy, "import", "", "Import a legacy JSON export (report array or backup file) into the SQLite database")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Show what would happen without making changes")
	flag.BoolVar(&opts.backup, "backup", true, "Create backup of the SQLite file before writing to it")
	flag.BoolVar(&opts.force, "force", false, "Write even when the destination already has data")
	flag.Parse()

	if err := migrate(opts); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Info("Migration completed successfully")
}

func migrate(opts options) error {
	if opts.legacy != "" {
		return importLegacy(opts)
	}
	if opts.direction != toCharm && opts.direction != toSQLite {
		return fmt.Errorf("invalid direction %q (must be %s or %s)", opts.direction, toCharm, toSQLite)
	}
	if opts.direction == toCharm {
		if _, err := os.Stat(opts.dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file does not exist: %s", opts.dbPath)
		}
	}

	if opts.direction == toSQLite && opts.backup && !opts.dryRun {
		if err := backupFile(opts.dbPath); err != nil {
			return err
		}
	}

	sqlStore, err := db.OpenStore(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = sqlStore.Close() }()

	charmStore, closeCharm, err := openCharm(opts.charmDir)
	if err != nil {
		return err
	}
	defer closeCharm()

	var src, dst db.Store = sqlStore, charmStore
	if opts.direction == toSQLite {
		src, dst = charmStore, sqlStore
	}

	srcCount, err := countReports(src)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}
	dstCount, err := countReports(dst)
	if err != nil {
		return fmt.Errorf("failed to read destination: %w", err)
	}
	log.Info("Found records", "source", srcCount, "destination", dstCount)

	if dstCount > 0 && !opts.force {
		log.Warn("Destination already holds records, matching keys will be overwritten")
		log.Warn("Use -force flag to proceed")
		return fmt.Errorf("migration requires -force flag")
	}

	if opts.dryRun {
		log.Infof("[DRY RUN] Would copy %d record(s) %s", srcCount, opts.direction)
		return nil
	}

	n, err := db.CopyStore(dst, src)
	if err != nil {
		return fmt.Errorf("copy stopped after %d key(s): %w", n, err)
	}
	log.Info("Copied keys", "count", n)

	if c, ok := dst.(*charm.Client); ok && opts.charmDir == "" {
		if err := c.Sync(); err != nil {
			log.Warn("charm sync failed, data is stored locally", "err", err)
		}
	}
	return nil
}

// importLegacy replaces the SQLite collection with the records of a legacy
// export. The file is fully validated before anything is written.
func importLegacy(opts options) error {
	data, err := os.ReadFile(opts.legacy)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.legacy, err)
	}
	b, err := db.ParseBackup(data)
	if err != nil {
		return err
	}
	log.Info("Found records", "file", opts.legacy, "count", len(b.Reports))

	if opts.dryRun {
		log.Infof("[DRY RUN] Would replace the collection in %s with %d record(s)", opts.dbPath, len(b.Reports))
		return nil
	}
	if opts.backup {
		if err := backupFile(opts.dbPath); err != nil {
			return err
		}
	}

	store, err := db.OpenStore(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	existing, err := countReports(store)
	if err != nil {
		return err
	}
	if existing > 0 && !opts.force {
		log.Warn("Database already holds records, import replaces them", "count", existing)
		return fmt.Errorf("import requires -force flag")
	}

	if _, err := db.ImportBackup(store, data); err != nil {
		return err
	}
	log.Info("Imported records", "count", len(b.Reports))
	return nil
}

func openCharm(dir string) (*charm.Client, func(), error) {
	if dir != "" {
		c, closeDB, err := charm.OpenOffline(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open badger directory: %w", err)
		}
		return c, func() { _ = closeDB() }, nil
	}
	c, err := charm.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open charm: %w", err)
	}
	return c, func() { _ = c.Close() }, nil
}

func countReports(store db.Store) (int, error) {
	reports, err := db.GetReports(store)
	if err != nil {
		return 0, err
	}
	return len(reports), nil
}

func backupFile(path string) error {
	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	log.Info("Creating backup", "path", backupPath)
	if err := os.WriteFile(backupPath, input, 0600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}
