// Package tui is the terminal review surface for the section workflow.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/lossreport/internal/workflow"
)

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	weatherStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	draftStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// chromeHeight is the number of lines around the draft viewport.
const chromeHeight = 9

// transitionMsg carries the result of one workflow action back to the model.
type transitionMsg struct {
	action  string
	session workflow.Session
	err     error
}

// Model is the bubbletea model for reviewing one report.
type Model struct {
	ctx     context.Context
	machine *workflow.Machine
	session workflow.Session

	busy    bool
	action  string
	err     error
	editing bool

	spinner  spinner.Model
	input    textinput.Model
	viewport viewport.Model
	width    int
	ready    bool
}

// New creates a review model for an idle session. The first section is
// generated as soon as the program starts.
func New(ctx context.Context, machine *workflow.Machine, session workflow.Session) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sectionStyle

	in := textinput.New()
	in.Placeholder = "what should change in this section?"
	in.Prompt = "feedback> "
	in.CharLimit = 2000

	return Model{
		ctx:      ctx,
		machine:  machine,
		session:  session,
		busy:     true,
		action:   workflow.ActionStart,
		spinner:  sp,
		input:    in,
		viewport: viewport.New(80, 20),
	}
}

// Session returns the current session, including the compiled document once
// the review is complete.
func (m Model) Session() workflow.Session {
	return m.session
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.transition(workflow.ActionStart, ""))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(3, msg.Height-chromeHeight)
		m.input.Width = max(10, msg.Width-12)
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case transitionMsg:
		m.busy = false
		m.session = msg.session
		m.err = msg.err
		m.viewport.SetContent(m.session.Draft)
		m.viewport.GotoTop()
		if m.session.IsComplete() {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	if m.editing {
		switch msg.Type {
		case tea.KeyEnter:
			feedback := strings.TrimSpace(m.input.Value())
			m.editing = false
			m.input.Blur()
			m.input.Reset()
			return m.begin(workflow.ActionRegenerate, feedback)
		case tea.KeyEsc:
			m.editing = false
			m.input.Blur()
			m.input.Reset()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "a":
		if m.session.Phase == workflow.PhaseIdle {
			return m.begin(workflow.ActionStart, "")
		}
		return m.begin(workflow.ActionAccept, "")
	case "r":
		if m.session.Phase == workflow.PhaseIdle {
			return m, nil
		}
		m.editing = true
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) begin(action, feedback string) (tea.Model, tea.Cmd) {
	m.busy = true
	m.action = action
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.transition(action, feedback))
}

// transition runs one workflow action off the UI goroutine. The machine
// returns the session to keep in every case, including failures.
func (m Model) transition(action, feedback string) tea.Cmd {
	ctx, machine, session := m.ctx, m.machine, m.session
	return func() tea.Msg {
		var (
			next workflow.Session
			err  error
		)
		switch action {
		case workflow.ActionStart:
			next, err = machine.Start(ctx, session)
		case workflow.ActionRegenerate:
			next, err = machine.Regenerate(ctx, session, feedback)
		default:
			next, err = machine.Accept(ctx, session)
		}
		return transitionMsg{action: action, session: next, err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	done, total := m.machine.Progress(m.session)
	sb.WriteString(titleStyle.Render(" Loss Report Review "))
	sb.WriteString(fmt.Sprintf("  %d/%d accepted\n\n", done, total))

	if cur, ok := m.machine.Current(m.session); ok {
		sb.WriteString(sectionStyle.Render(cur.Title))
		if w := m.session.Weather; w.HasNote() {
			sb.WriteString("  " + weatherStyle.Render(w.Note))
		} else if w.IsPopulated() {
			sb.WriteString("  " + weatherStyle.Render(fmt.Sprintf("weather: %s %s", w.MaxTemp, w.Conditions)))
		}
		sb.WriteString("\n")
	}

	switch {
	case m.busy:
		sb.WriteString(m.spinner.View() + " " + busyLabel(m.action) + "\n")
	case m.session.Draft != "":
		sb.WriteString(draftStyle.Width(max(20, m.width-2)).Render(m.viewport.View()) + "\n")
	}

	if m.err != nil {
		sb.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	if m.editing {
		sb.WriteString(m.input.View() + "\n")
		sb.WriteString(helpStyle.Render("enter: regenerate | esc: cancel"))
		return sb.String()
	}
	sb.WriteString(helpStyle.Render(helpLine(m)))
	return sb.String()
}

func busyLabel(action string) string {
	switch action {
	case workflow.ActionStart:
		return "Generating the first section..."
	case workflow.ActionRegenerate:
		return "Regenerating section..."
	default:
		return "Accepting and generating the next section..."
	}
}

func helpLine(m Model) string {
	if m.busy {
		return "working... | ctrl+c: abort"
	}
	if m.session.Phase == workflow.PhaseIdle {
		return "a: retry | q: quit"
	}
	return "a: accept | r: regenerate with feedback | ↑/↓: scroll | q: quit"
}
