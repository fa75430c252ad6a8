// Package tui renders live progress while a sync run is in flight.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gitmirror/astuto-sync/internal/core/mirror"
)

var (
	primaryColor = lipgloss.Color("#ff7300")
	subtleColor  = lipgloss.Color("#626262")
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF0000")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	createdStyle = lipgloss.NewStyle().Foreground(successColor)
	skippedStyle = lipgloss.NewStyle().Foreground(subtleColor)
	failedStyle  = lipgloss.NewStyle().Foreground(errorColor)
	logStyle     = lipgloss.NewStyle().Foreground(subtleColor)
)

// DoneMsg indicates the run finished; the channel feeding the model closed.
type DoneMsg struct{}

// Model is the bubbletea model for a sync run.
type Model struct {
	spinner  spinner.Model
	repo     string
	created  int
	skipped  int
	failed   int
	logs     []string
	quitting bool
	events   <-chan mirror.Event
	cancel   func()
}

// NewModel creates a TUI model fed by the driver's event channel. cancel is
// invoked when the user quits mid-run.
func NewModel(repo string, events <-chan mirror.Event, cancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		spinner: s,
		repo:    repo,
		events:  events,
		cancel:  cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForEvent(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case mirror.Event:
		switch msg.Outcome {
		case mirror.OutcomeCreated:
			m.created++
			m.logs = append(m.logs, fmt.Sprintf("[%s] created  #%d %s", time.Now().Format("15:04:05"), msg.Number, msg.Title))
		case mirror.OutcomeSkipped:
			m.skipped++
		case mirror.OutcomeFailed:
			m.failed++
			m.logs = append(m.logs, fmt.Sprintf("[%s] failed   #%d %v", time.Now().Format("15:04:05"), msg.Number, msg.Err))
		}
		return m, m.waitForEvent()

	case DoneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return DoneMsg{}
		}
		return ev
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Mirroring " + m.repo))
	s.WriteString("\n\n")

	s.WriteString(m.spinner.View())
	s.WriteString(" syncing issues\n\n")

	s.WriteString(createdStyle.Render(fmt.Sprintf("  created %d", m.created)))
	s.WriteString(skippedStyle.Render(fmt.Sprintf("   skipped %d", m.skipped)))
	s.WriteString(failedStyle.Render(fmt.Sprintf("   failed %d", m.failed)))
	s.WriteString("\n")

	if len(m.logs) > 0 {
		s.WriteString("\n")
		// Show last 5 logs
		start := 0
		if len(m.logs) > 5 {
			start = len(m.logs) - 5
		}
		for _, line := range m.logs[start:] {
			s.WriteString(logStyle.Render(line) + "\n")
		}
	}

	s.WriteString(logStyle.Render("\nPress q to quit\n"))

	return s.String()
}

// RenderSummary formats the final run summary for the terminal.
func RenderSummary(summary mirror.Summary) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Sync summary"))
	s.WriteString("\n")
	s.WriteString(createdStyle.Render(fmt.Sprintf("  created: %d", summary.Created)))
	s.WriteString("\n")
	s.WriteString(skippedStyle.Render(fmt.Sprintf("  skipped: %d", summary.Skipped)))
	s.WriteString("\n")
	s.WriteString(failedStyle.Render(fmt.Sprintf("  failed:  %d", summary.Failed)))
	s.WriteString("\n")

	for _, f := range summary.Failures {
		s.WriteString(failedStyle.Render(fmt.Sprintf("    #%d: %s", f.Number, f.Reason)))
		s.WriteString("\n")
	}

	return s.String()
}
