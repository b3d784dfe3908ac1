// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Full-screen list, detail, edit and delete views over stored reports
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/autosave"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewGraph
	ViewConfirmDelete
)

// Model is the main bubbletea model
type Model struct {
	state    *app.State
	viewMode ViewMode
	tab      models.ReportType

	// List view state
	reports     []*models.Report
	selectedRow int
	searching   bool
	search      textinput.Model

	// Detail view state
	selectedID string

	// Edit view state
	editing    *models.Report
	isNew      bool
	fields     []formField
	focusIndex int
	autosaver  *autosave.Debouncer
	saves      chan saveResult
	saveStatus string

	// Graph view state
	graphDOT string

	message string
	styles  styles
	width   int
	height  int
	err     error
}

// NewModel creates a new TUI model
func NewModel(state *app.State) Model {
	search := textinput.New()
	search.Placeholder = "OM, descricao ou equipamento"
	search.CharLimit = 100

	m := Model{
		state:    state,
		viewMode: ViewList,
		tab:      models.TypeTemplate,
		search:   search,
		styles:   newStyles(state.Dark()),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Run starts the full-screen program and blocks until it exits.
func Run(state *app.State) error {
	m := NewModel(state)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(Model); ok && fm.autosaver != nil {
		fm.autosaver.Flush()
		fm.autosaver.Stop()
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case saveResult:
		return m.handleSaveResult(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.stopAutosave()
		return m, tea.Quit
	}
	// Text entry owns every other key.
	if m.viewMode == ViewEdit || m.searching {
		if m.viewMode == ViewEdit {
			return m.handleEditKeys(msg)
		}
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "t":
		if _, err := m.state.ToggleTheme(); err != nil {
			m.err = err
		}
		m.styles = newStyles(m.state.Dark())
		return m, nil
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// refresh reloads the list for the active tab and search query.
func (m *Model) refresh() {
	reports, err := db.FindReports(m.state.Store(), db.ReportFilter{Type: m.tab, Query: m.search.Value()})
	if err != nil {
		m.err = err
		return
	}
	m.reports = reports
	if m.selectedRow >= len(reports) {
		m.selectedRow = max(len(reports)-1, 0)
	}
}

func (m Model) selected() *models.Report {
	for _, r := range m.reports {
		if r.ID == m.selectedID {
			return r
		}
	}
	r, err := db.GetReport(m.state.Store(), m.selectedID)
	if err != nil {
		return nil
	}
	return r
}

// styles follow the stored theme.
type styles struct {
	title       lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	help        lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	errorText   lipgloss.Style
	okText      lipgloss.Style
	callout     lipgloss.Style
}

func newStyles(dark bool) styles {
	accent := lipgloss.Color("26")
	muted := lipgloss.Color("244")
	text := lipgloss.Color("236")
	tabBg := lipgloss.Color("254")
	if dark {
		accent = lipgloss.Color("75")
		muted = lipgloss.Color("240")
		text = lipgloss.Color("252")
		tabBg = lipgloss.Color("235")
	}

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),
		tabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Background(tabBg).
			Padding(0, 2),
		tabInactive: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 2),
		help: lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1),
		label: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Width(20),
		value:     lipgloss.NewStyle().Foreground(text),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		okText:    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		callout: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("9")).
			PaddingLeft(1),
	}
}
