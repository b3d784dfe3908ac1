// ABOUTME: Sync subcommands for the charm backend
// ABOUTME: status, now, auto and wipe operate on an opened client

package charm

import (
	"flag"
	"fmt"
	"io"
)

// SyncStatusCommand prints the server, auto-sync flag, account and key count.
func SyncStatusCommand(c *Client, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	_, _ = fmt.Fprintln(w, "Charm Sync Status")
	_, _ = fmt.Fprintln(w, "─────────────────")
	_, _ = fmt.Fprintf(w, "Server:    %s\n", cfg.Host)
	_, _ = fmt.Fprintf(w, "Auto-sync: %v\n", cfg.AutoSync)

	if id, err := c.ID(); err != nil {
		_, _ = fmt.Fprintln(w, "Status:    Not connected")
	} else {
		_, _ = fmt.Fprintf(w, "Status:    Connected\nID:        %s\n", id)
	}

	keys, err := c.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Keys:      %d\n", len(keys))
	return nil
}

func SyncNowCommand(c *Client, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	_, _ = fmt.Fprintln(w, "✓ Synced")
	return nil
}

// SyncAutoCommand toggles auto-sync and saves the config.
func SyncAutoCommand(c *Client, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ExitOnError)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	_ = fs.Parse(args)

	if *enable == *disable {
		return fmt.Errorf("usage: reportmaster sync auto --enable|--disable")
	}

	cfg := c.Config()
	cfg.AutoSync = *enable
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if *enable {
		_, _ = fmt.Fprintln(w, "✓ Auto-sync enabled")
	} else {
		_, _ = fmt.Fprintln(w, "✓ Auto-sync disabled")
	}
	return nil
}

// SyncWipeCommand deletes all local data. Requires --confirm.
func SyncWipeCommand(c *Client, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	if !*confirm {
		_, _ = fmt.Fprintln(w, "WARNING: This will delete ALL local report data!")
		_, _ = fmt.Fprintln(w, "To confirm, run:  reportmaster sync wipe --confirm")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	_, _ = fmt.Fprintln(w, "✓ All data wiped")
	return nil
}
