package share

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/models"
)

func sample() *models.Report {
	return &models.Report{
		OMNumber:         "80012345",
		Equipment:        "TR-01",
		Local:            "Usina 2",
		Date:             "2026-10-18",
		StartTime:        "08:00",
		EndTime:          "17:00",
		TeamShift:        models.ShiftB,
		WorkCenter:       "SC118HH",
		IsFinished:       true,
		Technicians:      "Cícero, Ilton",
		ActivityExecuted: "Troca & ajuste",
	}
}

func TestSummary(t *testing.T) {
	s := Summary(sample())

	assert.True(t, strings.HasPrefix(s, "*RELATÓRIO DE EXECUÇÃO*\n"))
	assert.Contains(t, s, "*OM:* 80012345")
	assert.Contains(t, s, "*Data:* 18/10/2026")
	assert.Contains(t, s, "*Período:* 08:00 - 17:00")
	assert.Contains(t, s, "*Status:* CONCLUÍDA")
	assert.Contains(t, s, "*Pendências:* NÃO")
	assert.NotContains(t, s, "IAMO")
	assert.Contains(t, s, "*Atividades:*\nTroca & ajuste")
}

func TestSummaryFlags(t *testing.T) {
	r := sample()
	r.IsFinished = false
	r.HasPendencies = true
	r.PendencyDescription = "Falta cabo"
	r.IAMODeviation = true

	s := Summary(r)
	assert.Contains(t, s, "*Status:* EM ANDAMENTO")
	assert.Contains(t, s, "*Pendências:* Falta cabo")
	assert.Contains(t, s, "*Desvio IAMO:* -")
}

func TestLink(t *testing.T) {
	link := Link(sample())
	require.True(t, strings.HasPrefix(link, "https://wa.me/?text="))

	raw := strings.TrimPrefix(link, "https://wa.me/?text=")
	assert.NotContains(t, raw, "+")
	assert.NotContains(t, raw, " ")
	assert.Contains(t, raw, "%26")

	decoded, err := url.PathUnescape(raw)
	require.NoError(t, err)
	assert.Equal(t, Summary(sample()), decoded)
}
