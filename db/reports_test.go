// ABOUTME: Tests for report persistence
// ABOUTME: Covers upsert timestamps, search, delete, promotion and photo operations
package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/models"
)

// freezeClock pins now() for the duration of a test.
func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func sampleReport(om, desc, equipment string) *models.Report {
	r := models.NewReport(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	r.OMNumber = om
	r.OMDescription = desc
	r.ActivityExecuted = "Inspecao visual"
	r.Equipment = equipment
	r.Local = "Usina 2"
	r.Technicians = "Ilton, Pedro"
	return r
}

func TestSaveAndReload(t *testing.T) {
	store := newTestStore(t)
	freezeClock(t, time.UnixMilli(1000))

	r := sampleReport("800100", "Troca de sensor", "TR-01")
	require.NoError(t, SaveReport(store, r))

	got, err := GetReport(store, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "800100", got.OMNumber)
	assert.Equal(t, int64(1000), got.CreatedAt)
	assert.Equal(t, int64(1000), got.UpdatedAt)
	assert.NotNil(t, got.Photos)
}

func TestSaveReportKeepsCreatedAtAndAdvancesUpdatedAt(t *testing.T) {
	store := newTestStore(t)
	freezeClock(t, time.UnixMilli(5000))

	r := sampleReport("800100", "Troca de sensor", "TR-01")
	require.NoError(t, SaveReport(store, r))

	// Same millisecond: updatedAt must still move forward.
	edited := r.Clone()
	edited.OMDescription = "Troca de sensor e cabo"
	edited.CreatedAt = 0
	require.NoError(t, SaveReport(store, edited))

	got, err := GetReport(store, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Troca de sensor e cabo", got.OMDescription)
	assert.Equal(t, int64(5000), got.CreatedAt)
	assert.Equal(t, int64(5001), got.UpdatedAt)

	all, err := GetReports(store)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetReportsCorruptData(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set([]byte(ReportsKey), []byte("{not json")))

	all, err := GetReports(store)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetReportNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := GetReport(store, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindReports(t *testing.T) {
	store := newTestStore(t)

	a := sampleReport("800100", "Troca de sensor", "TR-01")
	b := sampleReport("800200", "Lubrificacao", "BOMBA-7")
	b.Category = models.CategoryMobileAsset
	c := sampleReport("800300", "Troca de rolamento", "TR-02")
	c.Type = models.TypeReport

	for i, r := range []*models.Report{a, b, c} {
		freezeClock(t, time.UnixMilli(int64(1000*(i+1))))
		require.NoError(t, SaveReport(store, r))
	}

	templates, err := FindReports(store, ReportFilter{Type: models.TypeTemplate})
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, b.ID, templates[0].ID, "most recently updated first")

	found, err := FindReports(store, ReportFilter{Query: "TROCA"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = FindReports(store, ReportFilter{Query: "bomba"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.ID, found[0].ID)

	found, err = FindReports(store, ReportFilter{Category: models.CategoryMobileAsset})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestDeleteReport(t *testing.T) {
	store := newTestStore(t)

	a := sampleReport("1", "A", "E1")
	b := sampleReport("2", "B", "E2")
	require.NoError(t, SaveReport(store, a))
	require.NoError(t, SaveReport(store, b))

	require.NoError(t, DeleteReport(store, a.ID))

	all, err := GetReports(store)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)

	assert.ErrorIs(t, DeleteReport(store, a.ID), ErrNotFound)
}

func TestPromoteTemplate(t *testing.T) {
	store := newTestStore(t)
	tmpl := sampleReport("800100", "Troca de sensor", "TR-01")
	tmpl.Date = "2025-01-01"
	require.NoError(t, SaveReport(store, tmpl))

	today := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	report, err := PromoteTemplate(store, tmpl.ID, today)
	require.NoError(t, err)

	assert.Equal(t, models.TypeReport, report.Type)
	assert.Equal(t, "2026-10-18", report.Date)
	assert.Equal(t, tmpl.ID, report.TemplateID)
	assert.NotEqual(t, tmpl.ID, report.ID)

	all, err := GetReports(store)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	stored, err := GetReport(store, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeTemplate, stored.Type)
	assert.Equal(t, "2025-01-01", stored.Date)
}

func TestPromoteIncompleteTemplateWritesNothing(t *testing.T) {
	store := newTestStore(t)
	tmpl := models.NewReport(time.Now())
	tmpl.OMDescription = "Troca de sensor"
	tmpl.ActivityExecuted = "Feito"
	require.NoError(t, SaveReport(store, tmpl))

	_, err := PromoteTemplate(store, tmpl.ID, time.Now())
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Equipamento", "Local", "N° OM", "Técnicos"}, ve.Fields)

	all, err := GetReports(store)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPromoteRejectsReport(t *testing.T) {
	store := newTestStore(t)
	tmpl := sampleReport("800100", "Troca de sensor", "TR-01")
	require.NoError(t, SaveReport(store, tmpl))

	report, err := PromoteTemplate(store, tmpl.ID, time.Now())
	require.NoError(t, err)

	_, err = PromoteTemplate(store, report.ID, time.Now())
	assert.ErrorIs(t, err, models.ErrNotTemplate)

	all, err := GetReports(store)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPhotoOperations(t *testing.T) {
	store := newTestStore(t)
	r := sampleReport("1", "A", "E1")
	require.NoError(t, SaveReport(store, r))

	p1 := models.ReportPhoto{ID: "p1", DataURL: "data:image/png;base64,AA=="}
	p2 := models.ReportPhoto{ID: "p2", DataURL: "data:image/png;base64,AQ=="}
	_, err := AddPhoto(store, r.ID, p1)
	require.NoError(t, err)
	_, err = AddPhoto(store, r.ID, p2)
	require.NoError(t, err)

	got, err := UpdatePhotoCaption(store, r.ID, "p2", "  painel  ")
	require.NoError(t, err)
	assert.Equal(t, "painel", got.Photos[1].Caption)

	got, err = ReplacePhotoData(store, r.ID, "p1", "data:image/jpeg;base64,AA==")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,AA==", got.Photos[0].DataURL)

	got, err = RemovePhoto(store, r.ID, "p1")
	require.NoError(t, err)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, "p2", got.Photos[0].ID)

	_, err = RemovePhoto(store, r.ID, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestThemeAndShiftTemplates(t *testing.T) {
	store := newTestStore(t)

	theme, err := GetTheme(store)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, theme)

	require.NoError(t, SetTheme(store, models.ThemeDark))
	theme, err = GetTheme(store)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)

	assert.Error(t, SetTheme(store, "sepia"))

	tmpl, err := GetShiftTemplates(store)
	require.NoError(t, err)
	assert.Nil(t, tmpl)

	require.NoError(t, SaveShiftTemplates(store, map[string]string{"A": "Turno A"}))
	tmpl, err = GetShiftTemplates(store)
	require.NoError(t, err)
	assert.Equal(t, "Turno A", tmpl["A"])
}
