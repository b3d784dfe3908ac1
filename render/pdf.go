// ABOUTME: Renders a maintenance report as an A4 PDF document
// ABOUTME: Header band, identification grid, technical detail, status, callouts, photo appendix and page footer
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/reportmaster/models"
)

// Document is a rendered report.
type Document struct {
	Filename string
	Data     []byte
	ID       string
	Pages    int
}

// Options tweaks rendering. The zero value renders a compressed document
// stamped with the current time.
type Options struct {
	Now          func() time.Time
	Uncompressed bool
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename is the download name for r rendered on day t.
func Filename(r *models.Report, t time.Time) string {
	om := unsafeFilename.ReplaceAllString(strings.TrimSpace(Sanitize(r.OMNumber)), "_")
	if om == "" {
		om = "PENDENTE"
	}
	return fmt.Sprintf("RELATORIO_OM_%s_%s.pdf", om, t.Format(models.DateLayout))
}

// Render draws r into a PDF. Photos that cannot be decoded or embedded are
// left out. Only a failure to serialize the finished document is an error.
func Render(r *models.Report, opts Options) (*Document, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	t := now()
	id := ulid.Make().String()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!opts.Uncompressed)
	pdf.SetMargins(margin, topMargin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Relatorio OM "+orDash(r.OMNumber), false)
	pdf.SetCreator("reportmaster", false)
	pdf.SetCreationDate(t)

	l := &layout{pdf: pdf}
	pdf.AddPage()

	om := strings.TrimSpace(Sanitize(r.OMNumber))
	if om == "" {
		om = "8000XXXX"
	}
	l.header(om, t.Format("02/01/2006 15:04"))

	l.section("Dados de Identificacao")
	l.grid([]field{
		{"Data de Execucao", displayDate(r.Date)},
		{"Equipamento", orDash(r.Equipment)},
		{"Local/Frente", orDash(r.Local)},
		{"Tipo de Atividade", strings.ToUpper(orDash(r.ActivityType))},
		{"Periodo", orDash(r.StartTime) + " ate " + orDash(r.EndTime)},
		{"Turno da Equipe", "TURNO " + orDash(string(r.TeamShift))},
	}, 3)

	if r.IAMODeviation {
		l.callout(iamoCallout, "Ocorrencia IAMO - Justificativa", orDash(r.IAMODescription))
	}

	l.section("Detalhamento Tecnico")
	l.label("DESCRICAO DA OM")
	l.paragraph(orDash(r.OMDescription), 6)
	l.label("ATIVIDADES EFETIVAMENTE EXECUTADAS")
	if items, ok := parseChecklist(r.ActivityExecuted); ok {
		l.checklist(items, 10)
	} else {
		l.paragraph(orDash(r.ActivityExecuted), 10)
	}

	l.section("Status Final e Equipe")
	l.grid([]field{
		{"Status OM", statusText(r.IsFinished)},
		{"Pendencias", yesNo(r.HasPendencies)},
		{"Centro de Trabalho", orDash(r.WorkCenter)},
	}, 3)
	l.label("EQUIPE TECNICA ENVOLVIDA")
	l.paragraph(orDash(r.Technicians), 6)

	if r.HasPendencies {
		l.callout(pendencyCallout, "Descritivo de Pendencias", orDash(r.PendencyDescription))
	}

	l.photos(embedPhotos(pdf, r.Photos))
	l.footer(id)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	return &Document{
		Filename: Filename(r, t),
		Data:     buf.Bytes(),
		ID:       id,
		Pages:    pdf.PageCount(),
	}, nil
}

// embedPhotos registers every usable photo with pdf and returns them in
// order. Failures are logged and dropped.
func embedPhotos(pdf *fpdf.Fpdf, photos []models.ReportPhoto) []*preparedPhoto {
	var out []*preparedPhoto
	for i, p := range photos {
		prepared, err := preparePhoto(p)
		if err != nil {
			log.Debug("skipping photo", "id", p.ID, "err", err)
			continue
		}
		prepared.name = fmt.Sprintf("%s-%d", prepared.name, i)

		pdf.RegisterImageOptionsReader(prepared.name, fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(prepared.jpeg))
		if pdf.Err() {
			log.Debug("skipping photo", "id", p.ID, "err", pdf.Error())
			pdf.ClearError()
			continue
		}
		out = append(out, prepared)
	}
	return out
}

// displayDate shows a YYYY-MM-DD date as DD/MM/YYYY.
func displayDate(s string) string {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return orDash(s)
	}
	return t.Format("02/01/2006")
}

func yesNo(b bool) string {
	if b {
		return "SIM"
	}
	return "NAO"
}

func statusText(finished bool) string {
	if finished {
		return "CONCLUIDA"
	}
	return "EM ANDAMENTO"
}
