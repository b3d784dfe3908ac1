// ABOUTME: Tests for the report PDF renderer
// ABOUTME: Renders uncompressed documents and inspects page counts and drawn text
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/models"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC) }

func testOptions() Options {
	return Options{Now: fixedNow, Uncompressed: true}
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return models.EncodeDataURL("image/png", buf.Bytes())
}

func baseReport() *models.Report {
	r := models.NewReport(fixedNow())
	r.Type = models.TypeReport
	r.OMNumber = "80012345"
	r.OMDescription = "Substituição do sensor de posição"
	r.ActivityExecuted = "Sensor trocado e testado"
	r.Equipment = "TR-01"
	r.Local = "Usina 2"
	r.Technicians = "Cícero, Ilton"
	return r
}

func render(t *testing.T, r *models.Report) (*Document, string) {
	t.Helper()
	doc, err := Render(r, testOptions())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
	return doc, string(doc.Data)
}

func TestRenderSinglePage(t *testing.T) {
	doc, out := render(t, baseReport())

	assert.Equal(t, 1, doc.Pages)
	assert.Equal(t, "RELATORIO_OM_80012345_2026-10-18.pdf", doc.Filename)
	assert.Len(t, doc.ID, 26)
	assert.Contains(t, out, "Pagina 1 de 1")
	assert.Contains(t, out, "DOC "+doc.ID)
	assert.Contains(t, out, "Substituicao do sensor de posicao")
	assert.Contains(t, out, "CONCLUIDA")
	assert.Contains(t, out, "18/10/2026")
	assert.NotContains(t, out, "EVIDENCIAS FOTOGRAFICAS")
	assert.NotContains(t, out, "IAMO - JUSTIFICATIVA")
}

func TestRenderEmptyFieldsUseDash(t *testing.T) {
	r := &models.Report{ID: "x", Type: models.TypeTemplate}
	doc, out := render(t, r)

	assert.Equal(t, "RELATORIO_OM_PENDENTE_2026-10-18.pdf", doc.Filename)
	assert.Contains(t, out, "8000XXXX")
	assert.Contains(t, out, "(-)")
	assert.Contains(t, out, "EM ANDAMENTO")
}

func TestRenderCallouts(t *testing.T) {
	r := baseReport()
	r.IAMODeviation = true
	r.IAMODescription = "Bloqueio não aplicado"
	r.HasPendencies = true
	r.PendencyDescription = strings.Repeat("Falta cabo de sinal. ", 30)

	_, out := render(t, r)
	assert.Contains(t, out, "OCORRENCIA IAMO - JUSTIFICATIVA")
	assert.Contains(t, out, "Bloqueio nao aplicado")
	assert.Contains(t, out, "DESCRITIVO DE PENDENCIAS")
	assert.Contains(t, out, "(SIM)")
}

func TestRenderLongCalloutContinuesOnNextPage(t *testing.T) {
	r := baseReport()
	r.IAMODeviation = true
	var lines []string
	for i := 1; i <= 70; i++ {
		lines = append(lines, "Linha IAMO "+strconv.Itoa(i))
	}
	r.IAMODescription = strings.Join(lines, "\n")

	doc, out := render(t, r)
	assert.GreaterOrEqual(t, doc.Pages, 2)
	assert.Contains(t, out, "OCORRENCIA IAMO - JUSTIFICATIVA (CONT.)")

	// Baselines are in points from the page bottom; the usable area ends at
	// pageBottom millimetres from the top.
	minY := (297 - pageBottom) * 72 / 25.4
	drawn := regexp.MustCompile(`BT -?[\d.]+ (-?[\d.]+) Td \(Linha IAMO \d+\) Tj`).FindAllStringSubmatch(out, -1)
	require.Len(t, drawn, 70)
	for _, m := range drawn {
		y, err := strconv.ParseFloat(m[1], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, y, minY-0.01, m[0])
	}
}

func TestRenderLongTextBreaksPages(t *testing.T) {
	r := baseReport()
	r.ActivityExecuted = strings.Repeat("Linha de atividade executada em campo\n", 120)

	doc, out := render(t, r)
	assert.Greater(t, doc.Pages, 2)
	assert.Contains(t, out, "Pagina 1 de ")
}

func TestRenderChecklist(t *testing.T) {
	r := baseReport()
	r.ActivityExecuted = "✓ Inspeção visual\n[ ] Reaperto\n- [x] Limpeza"

	_, out := render(t, r)
	assert.Contains(t, out, "Inspecao visual")
	assert.Contains(t, out, "(Reaperto)")
	assert.NotContains(t, out, "[OK] Inspecao")
}

func TestRenderPhotoAppendix(t *testing.T) {
	r := baseReport()
	r.Photos = []models.ReportPhoto{
		{ID: "a", DataURL: pngDataURL(t, 40, 30), Caption: "Painel aberto"},
		{ID: "b", DataURL: pngDataURL(t, 30, 40)},
	}

	doc, out := render(t, r)
	assert.Equal(t, 2, doc.Pages)
	assert.Contains(t, out, "EVIDENCIAS FOTOGRAFICAS")
	assert.Contains(t, out, "Painel aberto")
	assert.Contains(t, out, "SEM LEGENDA")
	assert.Contains(t, out, "Pagina 2 de 2")
}

func TestRenderSkipsBrokenPhotos(t *testing.T) {
	r := baseReport()
	r.Photos = []models.ReportPhoto{
		{ID: "bad", DataURL: "data:image/png;base64,AAAA"},
		{ID: "junk", DataURL: "not a data url"},
	}

	doc, out := render(t, r)
	assert.Equal(t, 1, doc.Pages, "no appendix when no photo survives")
	assert.NotContains(t, out, "EVIDENCIAS FOTOGRAFICAS")
}

func TestRenderPhotoContinuationPages(t *testing.T) {
	r := baseReport()
	img := pngDataURL(t, 16, 12)
	for i := 0; i < 7; i++ {
		r.Photos = append(r.Photos, models.ReportPhoto{ID: string(rune('a' + i)), DataURL: img})
	}
	r.Photos = append(r.Photos, models.ReportPhoto{ID: "broken", DataURL: "data:image/png;base64,AAAA"})

	doc, out := render(t, r)
	assert.Equal(t, 3, doc.Pages)
	assert.Contains(t, out, "CONT.")
	assert.Contains(t, out, "Pagina 3 de 3")
}

func TestFilenameSanitizesOM(t *testing.T) {
	r := &models.Report{OMNumber: " 8000/12 ção "}
	assert.Equal(t, "RELATORIO_OM_8000_12_cao_2026-10-18.pdf", Filename(r, fixedNow()))
}

func TestPreparePhotoDownscales(t *testing.T) {
	p, err := preparePhoto(models.ReportPhoto{ID: "big", DataURL: pngDataURL(t, 2000, 1000)})
	require.NoError(t, err)
	assert.Equal(t, MaxPhotoEdge, p.width)
	assert.Equal(t, 800, p.height)
	assert.True(t, bytes.HasPrefix(p.jpeg, []byte{0xFF, 0xD8}), "re-encoded as JPEG")
}

func TestFitBox(t *testing.T) {
	w, h := fitBox(400, 300, 85, 60)
	assert.InDelta(t, 80, w, 0.001)
	assert.InDelta(t, 60, h, 0.001)

	w, h = fitBox(1000, 100, 85, 60)
	assert.InDelta(t, 85, w, 0.001)
	assert.InDelta(t, 8.5, h, 0.001)
}
