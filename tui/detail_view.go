package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
	"github.com/harperreed/reportmaster/render"
	"github.com/harperreed/reportmaster/share"
)

func (m Model) renderDetailView() string {
	r := m.selected()
	if r == nil {
		return fmt.Sprintf("Error: report %s not found\n\n%s", m.selectedID, m.renderDetailHelp(nil))
	}

	var s strings.Builder

	kind := "RELATORIO"
	if r.IsTemplate() {
		kind = "TEMPLATE"
	}
	s.WriteString(m.styles.title.Render(fmt.Sprintf("%s · OM %s", kind, dash(r.OMNumber))))
	s.WriteString("\n\n")

	s.WriteString(m.renderField("Descricao", r.OMDescription))
	s.WriteString(m.renderField("Equipamento", r.Equipment))
	s.WriteString(m.renderField("Local", r.Local))
	s.WriteString(m.renderField("Data", r.Date))
	s.WriteString(m.renderField("Horario", r.StartTime+" - "+r.EndTime))
	s.WriteString(m.renderField("Tipo", r.ActivityType))
	s.WriteString(m.renderField("Turno", string(r.TeamShift)))
	s.WriteString(m.renderField("Centro de trabalho", r.WorkCenter))
	s.WriteString(m.renderField("Categoria", string(r.Category)))
	s.WriteString(m.renderField("Concluido", yesNo(r.IsFinished)))
	s.WriteString(m.renderField("Tecnicos", r.Technicians))
	s.WriteString(m.renderField("Fotos", fmt.Sprintf("%d", len(r.Photos))))

	if r.IAMODeviation {
		s.WriteString("\n")
		s.WriteString(m.styles.callout.Render("DESVIO IAMO: " + dash(r.IAMODescription)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("ATIVIDADES"))
	s.WriteString("\n")
	for _, line := range strings.Split(r.ActivityExecuted, "\n") {
		s.WriteString("  " + line + "\n")
	}

	if r.HasPendencies {
		s.WriteString("\n")
		s.WriteString(m.styles.callout.BorderForeground(lipgloss.Color("214")).Render("PENDENCIAS: " + dash(r.PendencyDescription)))
		s.WriteString("\n")
	}

	if m.message != "" {
		s.WriteString("\n")
		s.WriteString(m.styles.okText.Render(m.message))
	}
	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(m.styles.errorText.Render("Error: " + m.err.Error()))
	}
	s.WriteString("\n")

	// Help
	s.WriteString(m.renderDetailHelp(r))

	return s.String()
}

func (m Model) renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n",
		m.styles.label.Render(label+":"),
		m.styles.value.Render(dash(value)))
}

func (m Model) renderDetailHelp(r *models.Report) string {
	help := []string{"Esc: Back", "e: Edit", "d: Delete"}
	if r != nil && r.IsTemplate() {
		help = append(help, "p: Promote")
	}
	help = append(help, "x: Export PDF", "s: Share link", "g: Graph", "q: Quit")
	return m.styles.help.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	m.err = nil

	r := m.selected()
	if msg.String() == "esc" || r == nil {
		m.viewMode = ViewList
		m.refresh()
		return m, nil
	}

	switch msg.String() {
	case "e":
		return m.startEdit(r.Clone(), false)
	case "d":
		m.viewMode = ViewConfirmDelete
	case "p":
		if !r.IsTemplate() {
			return m, nil
		}
		report, err := db.PromoteTemplate(m.state.Store(), r.ID, m.state.Now())
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				err = fmt.Errorf("preencha: %s", strings.Join(verr.Fields, ", "))
			}
			m.err = err
			return m, nil
		}
		m.tab = models.TypeReport
		m.refresh()
		m.selectedID = report.ID
		m.message = "✓ Relatorio gerado"
	case "x":
		doc, err := render.Render(r, render.Options{Now: m.state.Now})
		if err != nil {
			m.err = err
			return m, nil
		}
		if err := os.WriteFile(doc.Filename, doc.Data, 0644); err != nil {
			m.err = err
			return m, nil
		}
		m.message = fmt.Sprintf("✓ PDF salvo: %s (%d paginas)", doc.Filename, doc.Pages)
	case "s":
		m.message = share.Link(r)
	case "g":
		if err := m.generateGraph(r.WorkCenter); err != nil {
			m.err = err
			return m, nil
		}
		m.viewMode = ViewGraph
	}

	return m, nil
}

func yesNo(b bool) string {
	if b {
		return "SIM"
	}
	return "NAO"
}
