// ABOUTME: Theme and shift template CLI commands
// ABOUTME: Small persisted preferences that ride along in backups
package cli

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

// ThemeCommand shows, sets or toggles the theme.
func ThemeCommand(state *app.State, args []string) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(out, state.Theme())
		return nil
	}

	switch args[0] {
	case "toggle":
		theme, err := state.ToggleTheme()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "✓ Theme: %s\n", theme)
	case models.ThemeLight, models.ThemeDark:
		if err := state.SetTheme(args[0]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "✓ Theme: %s\n", args[0])
	default:
		return fmt.Errorf("usage: theme [light|dark|toggle]")
	}
	return nil
}

// ShiftTemplatesCommand lists the per-shift announcement texts or sets one.
func ShiftTemplatesCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("shift-templates", flag.ExitOnError)
	shift := fs.String("shift", "", "Shift letter to set (A-D)")
	text := fs.String("text", "", "Template text for the shift")
	_ = fs.Parse(args)

	templates, err := db.GetShiftTemplates(store)
	if err != nil {
		return err
	}

	if *shift == "" {
		if len(templates) == 0 {
			_, _ = fmt.Fprintln(out, "No shift templates")
			return nil
		}
		keys := make([]string, 0, len(templates))
		for k := range templates {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(out, "[%s]\n%s\n\n", k, templates[k])
		}
		return nil
	}

	s := models.Shift(strings.ToUpper(*shift))
	if !models.IsValidShift(s) {
		return fmt.Errorf("invalid shift %q", *shift)
	}
	if templates == nil {
		templates = map[string]string{}
	}
	templates[string(s)] = *text
	if err := db.SaveShiftTemplates(store, templates); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Shift %s template saved\n", s)
	return nil
}
