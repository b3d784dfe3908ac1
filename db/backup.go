// ABOUTME: Backup export and restore of the report collection
// ABOUTME: Import accepts the wrapped backup object or a legacy bare array
package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/reportmaster/models"
)

// Backup is the export file layout.
type Backup struct {
	Reports   []*models.Report  `json:"reports"`
	Templates map[string]string `json:"templates"`
}

func BackupFilename(t time.Time) string {
	return "backup_reportmaster_" + t.Format(models.DateLayout) + ".json"
}

// ExportBackup serializes the reports and shift templates as indented JSON.
func ExportBackup(store Store) ([]byte, error) {
	reports, err := GetReports(store)
	if err != nil {
		return nil, err
	}
	templates, err := GetShiftTemplates(store)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(Backup{Reports: reports, Templates: templates}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// ParseBackup decodes and checks a backup file without touching any store.
func ParseBackup(data []byte) (*Backup, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidBackup)
	}

	var b Backup
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &b.Reports); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		reports, ok := raw["reports"]
		if !ok {
			return nil, fmt.Errorf("%w: missing reports", ErrInvalidBackup)
		}
		if err := json.Unmarshal(reports, &b.Reports); err != nil {
			return nil, fmt.Errorf("%w: reports: %v", ErrInvalidBackup, err)
		}
		if tmpl, ok := raw["templates"]; ok {
			if err := json.Unmarshal(tmpl, &b.Templates); err != nil {
				return nil, fmt.Errorf("%w: templates: %v", ErrInvalidBackup, err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: expected an object or an array", ErrInvalidBackup)
	}

	if b.Reports == nil {
		return nil, fmt.Errorf("%w: reports must be an array", ErrInvalidBackup)
	}
	for i, r := range b.Reports {
		if err := checkImported(r); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidBackup, i, err)
		}
		if r.Photos == nil {
			r.Photos = []models.ReportPhoto{}
		}
	}
	return &b, nil
}

func checkImported(r *models.Report) error {
	if r == nil {
		return fmt.Errorf("null record")
	}
	if r.ID == "" {
		return fmt.Errorf("missing id")
	}
	if r.Type != models.TypeTemplate && r.Type != models.TypeReport {
		return fmt.Errorf("unknown type %q", r.Type)
	}
	return nil
}

// ImportBackup replaces the stored collection with the backup contents.
// Shift templates are replaced only when the backup carries them.
func ImportBackup(store Store, data []byte) (*Backup, error) {
	b, err := ParseBackup(data)
	if err != nil {
		return nil, err
	}

	if err := putReports(store, b.Reports); err != nil {
		return nil, err
	}
	if b.Templates != nil {
		if err := SaveShiftTemplates(store, b.Templates); err != nil {
			return nil, err
		}
	}
	return b, nil
}
