// ABOUTME: Backup CLI commands
// ABOUTME: Exports the collection to a dated JSON file and restores from one
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harperreed/reportmaster/db"
)

func BackupExportCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("backup export", flag.ExitOnError)
	outPath := fs.String("out", "", "Output file or directory (default: dated file in current directory)")
	_ = fs.Parse(args)

	data, err := db.ExportBackup(store)
	if err != nil {
		return err
	}

	path := db.BackupFilename(now())
	if *outPath != "" {
		path = *outPath
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			path = filepath.Join(path, db.BackupFilename(now()))
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Backup written: %s\n", path)
	return nil
}

// BackupImportCommand replaces all stored reports with a backup file.
func BackupImportCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("backup import", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip confirmation")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: backup import [--yes] <file>")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if _, err := db.ParseBackup(data); err != nil {
		return err
	}
	if !*yes && !confirm("Replace ALL stored reports with this backup?") {
		_, _ = fmt.Fprintln(out, "Cancelled")
		return nil
	}

	b, err := db.ImportBackup(store, data)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Imported %d record(s)\n", len(b.Reports))
	return nil
}
