// Package tui is a hot-seat terminal table: every seat shares one terminal
// and the prompt always acts for the player whose turn it is.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/display"
	"github.com/lox/pokertable/internal/game"
)

const sidebarMinWidth = 50

// Model is the Bubble Tea model for a hot-seat table. It owns the table;
// Bubble Tea calls Update from a single goroutine.
type Model struct {
	table  *game.Table
	logger *log.Logger

	logViewport viewport.Model
	actionInput textinput.Model

	status    string
	statusErr bool
	quitting  bool
	width     int
	height    int
}

// New creates the model and deals the first round if the table can start
// one.
func New(table *game.Table, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "fold, check, call, bet 100, raise 200, allin"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 60
	ti.PromptStyle = PromptStyle
	ti.Prompt = "> "

	m := &Model{
		table:       table,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
	}
	if !table.InRound() {
		m.deal()
	}
	m.refreshLog()
	return m
}

// Table returns the table the model plays.
func (m *Model) Table() *game.Table { return m.table }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyPgUp:
			m.logViewport.HalfPageUp()
			return m, nil
		case tea.KeyPgDown:
			m.logViewport.HalfPageDown()
			return m, nil
		case tea.KeyEnter:
			input := m.actionInput.Value()
			m.actionInput.SetValue("")
			if m.submit(input) {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.actionInput, cmd = m.actionInput.Update(msg)
	cmds = append(cmds, cmd)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit runs one prompt line and reports whether to quit.
func (m *Model) submit(input string) bool {
	view := m.actingView()
	cmd, err := ParseCommand(input, view)
	if err != nil {
		m.setError(err)
		return false
	}

	switch {
	case cmd.Quit:
		return true
	case cmd.Next:
		if m.table.InRound() {
			m.setError(fmt.Errorf("%s to act", view.Acting))
			return false
		}
		m.deal()
	default:
		acting := view.Acting
		if err := m.table.Act(acting, cmd.Action); err != nil {
			m.logger.Debug("Action rejected", "player", acting, "error", err)
			m.setError(err)
			return false
		}
		m.setStatus(fmt.Sprintf("%s: %s", acting, strings.ToLower(input)))
	}
	m.refreshLog()
	return false
}

func (m *Model) deal() {
	if _, err := m.table.StartRound(); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("New round dealt")
}

// actingView is the current round as the acting player sees it, or nil when
// nobody is acting.
func (m *Model) actingView() *game.View {
	round := m.table.Round()
	if round == nil {
		return nil
	}
	acting, ok := round.Acting()
	if !ok {
		return nil
	}
	v := game.Project(round, acting)
	return &v
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m *Model) refreshLog() {
	items := m.table.Log()
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = item.Time.Format("15:04:05") + " " + item.Message
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	m.logViewport.GotoBottom()
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	actionHeight := 6
	m.logViewport.Width = max(m.width-sidebarMinWidth-6, 10)
	m.logViewport.Height = max(m.height-actionHeight-2, 3)
	m.actionInput.Width = max(m.width-8, 10)
	m.logViewport.GotoBottom()
}

func (m *Model) renderSidebar() string {
	if v := m.actingView(); v != nil {
		return display.RenderRound(*v)
	}
	if round := m.table.Round(); round != nil {
		return display.RenderRound(game.Project(round, "")) + "\n" + display.InfoStyle.Render("Press enter to deal the next round")
	}
	return display.RenderTable(m.table.View(""), 0)
}

func (m *Model) renderActionPane() string {
	var b strings.Builder
	if v := m.actingView(); v != nil {
		b.WriteString(display.ActionsStyle.Render(fmt.Sprintf("%s to act: %s", v.Acting, display.FormatLegalActions(v.LegalActions))))
	} else {
		b.WriteString(display.HandInfoStyle.Render("Round complete"))
	}
	b.WriteString("\n")
	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	switch {
	case m.status == "":
		b.WriteString(HelpStyle.Render("Enter to submit • PgUp/PgDn scroll log • Ctrl+C to quit"))
	case m.statusErr:
		b.WriteString(display.ErrorStyle.Render(m.status))
	default:
		b.WriteString(display.SuccessStyle.Render(m.status))
	}
	return b.String()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	logPane := LogPaneStyle.
		Width(m.logViewport.Width).
		Height(m.logViewport.Height).
		Render(m.logViewport.View())
	sidebar := SidebarStyle.
		Width(max(m.width-m.logViewport.Width-6, sidebarMinWidth)).
		Height(m.logViewport.Height).
		Render(m.renderSidebar())
	top := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar)

	action := ActionPaneStyle.Width(max(m.width-4, 10)).Render(m.renderActionPane())
	return lipgloss.JoinVertical(lipgloss.Left, top, action)
}
