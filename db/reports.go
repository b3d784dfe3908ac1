// ABOUTME: Report and template persistence on top of a Store
// ABOUTME: Handles listing, upserting, deleting and promoting records
package db

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/reportmaster/models"
)

// now is replaced in tests to control timestamps.
var now = time.Now

// ReportFilter narrows FindReports. Zero values match everything.
type ReportFilter struct {
	Type     models.ReportType
	Category models.Category
	Query    string
}

// GetReports loads every stored record. A missing or unreadable collection
// reads as empty.
func GetReports(store Store) ([]*models.Report, error) {
	data, err := store.Get([]byte(ReportsKey))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []*models.Report{}, nil
	}

	var reports []*models.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		log.Warn("stored reports are unreadable, starting empty", "err", err)
		return []*models.Report{}, nil
	}
	return reports, nil
}

func putReports(store Store, reports []*models.Report) error {
	if reports == nil {
		reports = []*models.Report{}
	}
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	if err := store.Set([]byte(ReportsKey), data); err != nil {
		return fmt.Errorf("failed to save reports: %w", err)
	}
	return nil
}

// FindReports returns matching records, most recently updated first.
func FindReports(store Store, filter ReportFilter) ([]*models.Report, error) {
	all, err := GetReports(store)
	if err != nil {
		return nil, err
	}

	var out []*models.Report
	for _, r := range all {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if !r.Matches(filter.Query) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})
	return out, nil
}

func GetReport(store Store, id string) (*models.Report, error) {
	all, err := GetReports(store)
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
}

// SaveReport inserts r or replaces the record with the same id. On replace the
// original creation time is kept. r's timestamps are updated in place.
func SaveReport(store Store, r *models.Report) error {
	all, err := GetReports(store)
	if err != nil {
		return err
	}

	all = upsert(all, r, now().UnixMilli())
	return putReports(store, all)
}

func upsert(all []*models.Report, r *models.Report, ts int64) []*models.Report {
	if r.Photos == nil {
		r.Photos = []models.ReportPhoto{}
	}

	for i, existing := range all {
		if existing.ID != r.ID {
			continue
		}
		r.CreatedAt = existing.CreatedAt
		r.UpdatedAt = nextTimestamp(ts, existing.UpdatedAt)
		all[i] = r
		return all
	}

	r.CreatedAt = ts
	r.UpdatedAt = ts
	return append(all, r)
}

// nextTimestamp keeps UpdatedAt strictly increasing even when two saves land
// in the same millisecond.
func nextTimestamp(ts, prev int64) int64 {
	if ts <= prev {
		return prev + 1
	}
	return ts
}

func DeleteReport(store Store, id string) error {
	all, err := GetReports(store)
	if err != nil {
		return err
	}

	for i, r := range all {
		if r.ID == id {
			all = append(all[:i], all[i+1:]...)
			return putReports(store, all)
		}
	}
	return fmt.Errorf("report %s: %w", id, ErrNotFound)
}

// PromoteTemplate turns a complete template into a new report dated t. Nothing
// is written when the template fails validation.
func PromoteTemplate(store Store, id string, t time.Time) (*models.Report, error) {
	all, err := GetReports(store)
	if err != nil {
		return nil, err
	}

	var tmpl *models.Report
	for _, r := range all {
		if r.ID == id {
			tmpl = r
			break
		}
	}
	if tmpl == nil {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	report, err := models.Promote(tmpl, t)
	if err != nil {
		return nil, err
	}

	ts := now().UnixMilli()
	all = upsert(all, tmpl, ts)
	all = upsert(all, report, ts)
	if err := putReports(store, all); err != nil {
		return nil, err
	}
	return report, nil
}

// updateReport loads one record, applies fn and saves it back.
func updateReport(store Store, id string, fn func(r *models.Report) error) (*models.Report, error) {
	r, err := GetReport(store, id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	if err := SaveReport(store, r); err != nil {
		return nil, err
	}
	return r, nil
}
