// ABOUTME: Messaging deep link for sharing a report summary
// ABOUTME: Builds the plain-text summary and wraps it in a wa.me compose URL
package share

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/harperreed/reportmaster/models"
)

const composeURL = "https://wa.me/?text="

// Summary is the plain-text message body for r.
func Summary(r *models.Report) string {
	var b strings.Builder
	line := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "*%s:* %s\n", label, value)
	}

	b.WriteString("*RELATÓRIO DE EXECUÇÃO*\n")
	line("OM", r.OMNumber)
	line("Equipamento", r.Equipment)
	line("Local", r.Local)
	line("Data", displayDate(r.Date))
	line("Período", r.StartTime+" - "+r.EndTime)
	line("Turno", string(r.TeamShift))
	line("Centro de Trabalho", r.WorkCenter)
	if r.IsFinished {
		line("Status", "CONCLUÍDA")
	} else {
		line("Status", "EM ANDAMENTO")
	}
	if r.HasPendencies {
		line("Pendências", r.PendencyDescription)
	} else {
		line("Pendências", "NÃO")
	}
	if r.IAMODeviation {
		line("Desvio IAMO", r.IAMODescription)
	}
	line("Técnicos", r.Technicians)
	if desc := strings.TrimSpace(r.OMDescription); desc != "" {
		fmt.Fprintf(&b, "\n*Descrição:*\n%s\n", desc)
	}
	if act := strings.TrimSpace(r.ActivityExecuted); act != "" {
		fmt.Fprintf(&b, "\n*Atividades:*\n%s\n", act)
	}
	if n := len(r.Photos); n > 0 {
		fmt.Fprintf(&b, "\n%d foto(s) em anexo no PDF\n", n)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Link returns the compose URL carrying the summary of r. Spaces are encoded
// as %20 because some clients show a literal "+".
func Link(r *models.Report) string {
	return composeURL + strings.ReplaceAll(url.QueryEscape(Summary(r)), "+", "%20")
}

func displayDate(s string) string {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
