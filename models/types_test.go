// ABOUTME: Tests for report models
// ABOUTME: Validates defaults, cloning, search matching, technicians and validation rules
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeReport() *Report {
	r := NewReport(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	r.OMNumber = "80001234"
	r.OMDescription = "Troca de sensor"
	r.ActivityExecuted = "Sensor substituido"
	r.Equipment = "TR-01"
	r.Local = "Usina 2"
	r.Technicians = "Ilton, Pedro"
	return r
}

func TestNewReportDefaults(t *testing.T) {
	r := NewReport(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, TypeTemplate, r.Type)
	assert.Equal(t, "2026-03-14", r.Date)
	assert.Equal(t, "08:00", r.StartTime)
	assert.Equal(t, "17:00", r.EndTime)
	assert.Equal(t, ActivityPreventive, r.ActivityType)
	assert.True(t, r.IsFinished)
	assert.Equal(t, ShiftA, r.TeamShift)
	assert.Equal(t, "SC108HH", r.WorkCenter)
	assert.Empty(t, r.Photos)
}

func TestCloneCopiesPhotos(t *testing.T) {
	r := completeReport()
	r.Photos = []ReportPhoto{{ID: "p1", DataURL: "data:image/png;base64,AA==", Caption: "antes"}}

	c := r.Clone()
	c.Photos[0].Caption = "depois"

	assert.Equal(t, "antes", r.Photos[0].Caption)
}

func TestMatches(t *testing.T) {
	r := completeReport()

	assert.True(t, r.Matches(""))
	assert.True(t, r.Matches("8000"))
	assert.True(t, r.Matches("TROCA"))
	assert.True(t, r.Matches("tr-01"))
	assert.False(t, r.Matches("usina"), "local is not a search field")
}

func TestRemovePhoto(t *testing.T) {
	r := completeReport()
	r.Photos = []ReportPhoto{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.True(t, r.RemovePhoto("b"))
	assert.False(t, r.RemovePhoto("b"))
	require.Len(t, r.Photos, 2)
	assert.Equal(t, "a", r.Photos[0].ID)
	assert.Equal(t, "c", r.Photos[1].ID)
}

func TestToggleTechnician(t *testing.T) {
	list := ToggleTechnician("", "Ilton")
	assert.Equal(t, "Ilton", list)

	list = ToggleTechnician(list, "Pedro")
	assert.Equal(t, "Ilton, Pedro", list)

	list = ToggleTechnician(list, "Ilton")
	assert.Equal(t, "Pedro", list)
}

func TestAddTechnician(t *testing.T) {
	assert.Equal(t, "Pedro, Maria Silva", AddTechnician("Pedro", "  Maria Silva "))
	assert.Equal(t, "Pedro", AddTechnician("Pedro", "Pedro"))
	assert.Equal(t, "Pedro", AddTechnician("Pedro", "   "))
}

func TestCustomTechnicians(t *testing.T) {
	custom := CustomTechnicians("Ilton, Maria, Pedro", ShiftA)
	assert.Equal(t, []string{"Maria"}, custom)
}

func TestValidateTemplateOnlyNeedsDescriptions(t *testing.T) {
	r := NewReport(time.Now())
	r.OMDescription = "Troca de sensor"

	err := ValidateTemplate(r)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Atividades executada"}, ve.Fields)

	r.ActivityExecuted = "feito"
	assert.NoError(t, ValidateTemplate(r))
}

func TestValidateReportComplete(t *testing.T) {
	r := completeReport()
	r.Type = TypeReport
	assert.NoError(t, ValidateReport(r))
}

func TestValidateReportPendencyWithoutDescription(t *testing.T) {
	r := completeReport()
	r.Type = TypeReport
	r.HasPendencies = true

	err := ValidateReport(r)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Detalhes Pendência"}, ve.Fields)
}

func TestValidateReportIAMOWithoutDescription(t *testing.T) {
	r := completeReport()
	r.IAMODeviation = true

	err := ValidateReport(r)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Explicação IAMO"}, ve.Fields)

	r.IAMODescription = "Sem bloqueio"
	assert.NoError(t, ValidateReport(r))
}

func TestValidateReportOrdersMissingFields(t *testing.T) {
	r := &Report{Type: TypeReport, OMDescription: "Troca de sensor"}

	err := ValidateReport(r)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{
		"Data", "Equipamento", "Local", "N° OM", "Horário Inicial",
		"Horário Final", "Atividades executada", "Técnicos",
	}, ve.Fields)
}

func TestPromoteBlocksIncompleteTemplate(t *testing.T) {
	tmpl := &Report{ID: "t1", Type: TypeTemplate, OMDescription: "Troca de sensor"}

	r, err := Promote(tmpl, time.Now())
	assert.Nil(t, r)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "N° OM")
	assert.Contains(t, ve.Fields, "Data")
	assert.Contains(t, ve.Fields, "Equipamento")
}

func TestPromoteCopiesFields(t *testing.T) {
	tmpl := completeReport()
	tmpl.Date = "2025-01-01"
	tmpl.CreatedAt = 100
	tmpl.UpdatedAt = 200
	tmpl.Photos = []ReportPhoto{{ID: "p1", Caption: "painel"}}
	today := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

	r, err := Promote(tmpl, today)
	require.NoError(t, err)

	assert.NotEqual(t, tmpl.ID, r.ID)
	assert.Equal(t, TypeReport, r.Type)
	assert.Equal(t, tmpl.ID, r.TemplateID)
	assert.Equal(t, "2026-10-18", r.Date)
	assert.Equal(t, tmpl.OMNumber, r.OMNumber)
	assert.Equal(t, tmpl.OMDescription, r.OMDescription)
	assert.Equal(t, tmpl.Equipment, r.Equipment)
	assert.Equal(t, tmpl.Technicians, r.Technicians)
	assert.Zero(t, r.CreatedAt)

	r.Photos[0].Caption = "alterado"
	assert.Equal(t, "painel", tmpl.Photos[0].Caption)
	assert.Equal(t, TypeTemplate, tmpl.Type)
}

func TestParseReportType(t *testing.T) {
	typ, ok := ParseReportType("Reports")
	assert.True(t, ok)
	assert.Equal(t, TypeReport, typ)

	_, ok = ParseReportType("draft")
	assert.False(t, ok)
}
