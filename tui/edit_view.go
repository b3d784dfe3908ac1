package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/reportmaster/autosave"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

// formField binds one input to one report field.
type formField struct {
	label     string
	multiline bool
	input     textinput.Model
	area      textarea.Model
	get       func(r *models.Report) string
	set       func(r *models.Report, v string)
}

func (f formField) value() string {
	if f.multiline {
		return f.area.Value()
	}
	return f.input.Value()
}

// saveResult reports one autosave attempt back to the program.
type saveResult struct {
	id  string
	err error
}

func waitForSave(ch <-chan saveResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return res
	}
}

func textField(label string, limit int, get func(*models.Report) string, set func(*models.Report, string)) formField {
	in := textinput.New()
	in.Placeholder = label
	in.CharLimit = limit
	in.Width = 60
	return formField{label: label, input: in, get: get, set: set}
}

func reportFields() []formField {
	activities := textarea.New()
	activities.Placeholder = "Uma atividade por linha; [x] / [ ] para checklist"
	activities.ShowLineNumbers = false
	activities.SetWidth(60)
	activities.SetHeight(5)
	activities.CharLimit = 0

	return []formField{
		textField("Numero da OM", 20,
			func(r *models.Report) string { return r.OMNumber },
			func(r *models.Report, v string) { r.OMNumber = v }),
		textField("Descricao da OM", 200,
			func(r *models.Report) string { return r.OMDescription },
			func(r *models.Report, v string) { r.OMDescription = v }),
		{
			label:     "Atividades executadas",
			multiline: true,
			area:      activities,
			get:       func(r *models.Report) string { return r.ActivityExecuted },
			set:       func(r *models.Report, v string) { r.ActivityExecuted = v },
		},
		textField("Data (AAAA-MM-DD)", 10,
			func(r *models.Report) string { return r.Date },
			func(r *models.Report, v string) { r.Date = v }),
		textField("Equipamento", 60,
			func(r *models.Report) string { return r.Equipment },
			func(r *models.Report, v string) { r.Equipment = v }),
		textField("Local", 60,
			func(r *models.Report) string { return r.Local },
			func(r *models.Report, v string) { r.Local = v }),
		textField("Tipo (preventiva/corretiva)", 20,
			func(r *models.Report) string { return r.ActivityType },
			func(r *models.Report, v string) { r.ActivityType = strings.ToLower(v) }),
		textField("Inicio (HH:MM)", 5,
			func(r *models.Report) string { return r.StartTime },
			func(r *models.Report, v string) { r.StartTime = v }),
		textField("Fim (HH:MM)", 5,
			func(r *models.Report) string { return r.EndTime },
			func(r *models.Report, v string) { r.EndTime = v }),
		textField("Turno (A-D)", 1,
			func(r *models.Report) string { return string(r.TeamShift) },
			func(r *models.Report, v string) { r.TeamShift = models.Shift(strings.ToUpper(v)) }),
		textField("Centro de trabalho", 20,
			func(r *models.Report) string { return r.WorkCenter },
			func(r *models.Report, v string) { r.WorkCenter = strings.ToUpper(v) }),
		textField("Categoria (fixed-asset/mobile-asset)", 20,
			func(r *models.Report) string { return string(r.Category) },
			func(r *models.Report, v string) {
				if c, ok := models.ParseCategory(v); ok {
					r.Category = c
				}
			}),
		textField("Tecnicos (separados por virgula)", 300,
			func(r *models.Report) string { return r.Technicians },
			func(r *models.Report, v string) { r.Technicians = v }),
		textField("Descricao do desvio IAMO", 500,
			func(r *models.Report) string { return r.IAMODescription },
			func(r *models.Report, v string) { r.IAMODescription = v }),
		textField("Descricao das pendencias", 500,
			func(r *models.Report) string { return r.PendencyDescription },
			func(r *models.Report, v string) { r.PendencyDescription = v }),
	}
}

// startEdit opens the form on r. New records are not stored until the
// first edit is autosaved.
func (m Model) startEdit(r *models.Report, isNew bool) (tea.Model, tea.Cmd) {
	m.stopAutosave()

	m.editing = r
	m.isNew = isNew
	m.selectedID = r.ID
	m.saveStatus = ""
	m.message = ""
	m.err = nil
	m.fields = reportFields()
	for i := range m.fields {
		v := m.fields[i].get(r)
		if m.fields[i].multiline {
			m.fields[i].area.SetValue(v)
		} else {
			m.fields[i].input.SetValue(v)
			m.fields[i].input.CursorEnd()
		}
	}
	m.focusIndex = 0
	m.updateFormFocus()

	saves := make(chan saveResult, 8)
	m.saves = saves
	m.autosaver = newAutosaver(m.state.Store(), saves)

	m.viewMode = ViewEdit
	return m, tea.Batch(textinput.Blink, waitForSave(saves))
}

// newAutosaver reports each save on saves without ever blocking the timer.
func newAutosaver(store db.Store, saves chan<- saveResult) *autosave.Debouncer {
	return autosave.New(autosave.DefaultDelay,
		func(r *models.Report) error { return db.SaveReport(store, r) },
		func(r *models.Report, err error) {
			select {
			case saves <- saveResult{id: r.ID, err: err}:
			default:
			}
		})
}

func (m *Model) stopAutosave() {
	if m.autosaver != nil {
		m.autosaver.Flush()
		m.autosaver.Stop()
		m.autosaver = nil
	}
}

func (m Model) handleSaveResult(res saveResult) (tea.Model, tea.Cmd) {
	if m.editing == nil || m.saves == nil {
		return m, nil
	}
	if res.id == m.editing.ID {
		if res.err != nil {
			m.saveStatus = "Autosave falhou: " + res.err.Error()
		} else {
			m.saveStatus = "✓ Salvo automaticamente " + m.state.Now().Format("15:04:05")
			m.isNew = false
		}
	}
	return m, waitForSave(m.saves)
}

func (m Model) renderEditView() string {
	var s strings.Builder

	// Title
	kind := "TEMPLATE"
	if !m.editing.IsTemplate() {
		kind = "RELATORIO"
	}
	if m.isNew {
		s.WriteString(m.styles.title.Render("NEW " + kind))
	} else {
		s.WriteString(m.styles.title.Render("EDIT " + kind))
	}
	s.WriteString("\n\n")

	// Form fields
	for i, f := range m.fields {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(m.styles.label.Render(f.label))
		s.WriteString("\n  ")
		if f.multiline {
			s.WriteString(f.area.View())
		} else {
			s.WriteString(f.input.View())
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("[%s] Concluida  [%s] Desvio IAMO  [%s] Pendencias\n",
		check(m.editing.IsFinished), check(m.editing.IAMODeviation), check(m.editing.HasPendencies)))

	if m.saveStatus != "" {
		s.WriteString(m.styles.okText.Render(m.saveStatus))
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString(m.styles.errorText.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func check(b bool) string {
	if b {
		return "x"
	}
	return " "
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab/Shift+Tab: Field",
		"Ctrl+F: Concluida",
		"Ctrl+O: IAMO",
		"Ctrl+P: Pendencias",
		"Ctrl+S: Save",
		"Esc: Close",
	}
	return m.styles.help.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopAutosave()
		m.editing = nil
		m.saves = nil
		m.refresh()
		if _, err := db.GetReport(m.state.Store(), m.selectedID); err == nil {
			m.viewMode = ViewDetail
		} else {
			m.viewMode = ViewList
		}
		return m, nil
	case "tab":
		m.focusIndex = (m.focusIndex + 1) % len(m.fields)
		m.updateFormFocus()
		return m, nil
	case "shift+tab":
		m.focusIndex = (m.focusIndex - 1 + len(m.fields)) % len(m.fields)
		m.updateFormFocus()
		return m, nil
	case "ctrl+f":
		m.editing.IsFinished = !m.editing.IsFinished
		m.autosaver.Schedule(m.editing)
		return m, nil
	case "ctrl+o":
		m.editing.IAMODeviation = !m.editing.IAMODeviation
		m.autosaver.Schedule(m.editing)
		return m, nil
	case "ctrl+p":
		m.editing.HasPendencies = !m.editing.HasPendencies
		m.autosaver.Schedule(m.editing)
		return m, nil
	case "ctrl+s":
		m.applyForm()
		if err := m.saveEditing(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.isNew = false
		m.saveStatus = "✓ Saved"
		return m, nil
	}

	// Update current input
	var cmd tea.Cmd
	f := &m.fields[m.focusIndex]
	before := f.value()
	if f.multiline {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	if f.value() != before {
		m.applyForm()
		m.autosaver.Schedule(m.editing)
	}
	return m, cmd
}

func (m *Model) applyForm() {
	for _, f := range m.fields {
		f.set(m.editing, f.value())
	}
}

// saveEditing validates and stores the record right away, dropping any
// pending autosave.
func (m *Model) saveEditing() error {
	r := m.editing
	if r.TeamShift != "" && !models.IsValidShift(r.TeamShift) {
		return fmt.Errorf("turno invalido %q", r.TeamShift)
	}
	if r.WorkCenter != "" && !models.IsValidWorkCenter(r.WorkCenter) {
		return fmt.Errorf("centro de trabalho invalido %q", r.WorkCenter)
	}
	if r.Date != "" {
		if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
			return fmt.Errorf("data invalida %q", r.Date)
		}
	}
	if err := models.Validate(r); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("preencha: %s", strings.Join(verr.Fields, ", "))
		}
		return err
	}

	m.autosaver.Stop()
	if err := db.SaveReport(m.state.Store(), r); err != nil {
		return err
	}
	m.autosaver = newAutosaver(m.state.Store(), m.saves)
	return nil
}

func (m *Model) updateFormFocus() {
	for i := range m.fields {
		if i == m.focusIndex {
			if m.fields[i].multiline {
				m.fields[i].area.Focus()
			} else {
				m.fields[i].input.Focus()
			}
		} else {
			if m.fields[i].multiline {
				m.fields[i].area.Blur()
			} else {
				m.fields[i].input.Blur()
			}
		}
	}
}
