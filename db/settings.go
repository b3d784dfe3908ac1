// ABOUTME: Small persisted settings: theme preference and shift templates
// ABOUTME: Shift templates are an opaque string map kept only for backups
package db

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harperreed/reportmaster/models"
)

// GetTheme returns the stored theme, defaulting to light.
func GetTheme(store Store) (string, error) {
	data, err := store.Get([]byte(ThemeKey))
	if err != nil {
		return "", err
	}
	if string(data) == models.ThemeDark {
		return models.ThemeDark, nil
	}
	return models.ThemeLight, nil
}

func SetTheme(store Store, theme string) error {
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return fmt.Errorf("invalid theme %q (must be %s or %s)", theme, models.ThemeLight, models.ThemeDark)
	}
	return store.Set([]byte(ThemeKey), []byte(theme))
}

// GetShiftTemplates returns nil when nothing is stored.
func GetShiftTemplates(store Store) (map[string]string, error) {
	data, err := store.Get([]byte(ShiftTemplatesKey))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		log.Warn("stored shift templates are unreadable, ignoring", "err", err)
		return nil, nil
	}
	return templates, nil
}

func SaveShiftTemplates(store Store, templates map[string]string) error {
	data, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("failed to encode shift templates: %w", err)
	}
	return store.Set([]byte(ShiftTemplatesKey), data)
}
