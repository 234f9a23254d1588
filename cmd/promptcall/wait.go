package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// progressMsg reports the remaining rate limit wait before a retry.
type progressMsg struct {
	attempt   int
	remaining time.Duration
}

// doneMsg ends the wait view.
type doneMsg struct{}

// waitModel shows a spinner while a prompt is in flight, plus the rate limit
// countdown when the CLI provider is waiting to retry.
type waitModel struct {
	spinner  spinner.Model
	label    string
	status   string
	done     bool
	onCancel func()
}

func newWaitModel(label string, onCancel func()) waitModel {
	return waitModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
		label:    label,
		onCancel: onCancel,
	}
}

func (m waitModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progressMsg:
		m.status = ""
		if msg.remaining > 0 {
			m.status = fmt.Sprintf("rate limited, retry %d in %s", msg.attempt, fmtDuration(msg.remaining))
		}
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			if m.onCancel != nil {
				m.onCancel()
			}
			m.done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m waitModel) View() string {
	if m.done {
		return ""
	}

	line := m.spinner.View() + " " + dimStyle.Render(m.label)
	if m.status != "" {
		line += " " + countdownStyle.Render(m.status)
	}

	return line + "\n"
}
