package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/reportmaster/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(m.styles.title.Render("REPORTMASTER"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching || m.search.Value() != "" {
		s.WriteString("Buscar: ")
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	}

	// Table
	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if m.message != "" {
		s.WriteString(m.styles.okText.Render(m.message))
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString(m.styles.errorText.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	tabs := []struct {
		label string
		typ   models.ReportType
	}{
		{"Templates", models.TypeTemplate},
		{"Relatorios", models.TypeReport},
	}

	var rendered []string
	for _, tab := range tabs {
		if tab.typ == m.tab {
			rendered = append(rendered, m.styles.tabActive.Render(tab.label))
		} else {
			rendered = append(rendered, m.styles.tabInactive.Render(tab.label))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	if len(m.reports) == 0 {
		return m.styles.help.Render("Nenhum registro encontrado.")
	}

	columns := []table.Column{
		{Title: "OM", Width: 12},
		{Title: "Descricao", Width: 36},
		{Title: "Equipamento", Width: 14},
		{Title: "Data", Width: 10},
		{Title: "Fotos", Width: 5},
	}

	var rows []table.Row
	for _, r := range m.reports {
		rows = append(rows, table.Row{
			dash(r.OMNumber),
			dash(r.OMDescription),
			dash(r.Equipment),
			r.Date,
			fmt.Sprintf("%d", len(r.Photos)),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"/: Search",
		"n: New template",
		"t: Theme",
		"q: Quit",
	}
	return m.styles.help.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	m.err = nil

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.reports)-1 {
			m.selectedRow++
		}
	case "tab":
		if m.tab == models.TypeTemplate {
			m.tab = models.TypeReport
		} else {
			m.tab = models.TypeTemplate
		}
		m.selectedRow = 0
		m.refresh()
	case "enter":
		if m.selectedRow < len(m.reports) {
			m.selectedID = m.reports[m.selectedRow].ID
			m.viewMode = ViewDetail
		}
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "n":
		return m.startEdit(models.NewReport(m.state.Now()), true)
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.selectedRow = 0
	m.refresh()
	return m, cmd
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
