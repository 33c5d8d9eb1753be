package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlevkin/leakradar/internal/models"
)

// progressEventMsg wraps a scan progress event for the Bubble Tea loop.
type progressEventMsg models.ProgressEvent

// progressDoneMsg signals the event channel was closed.
type progressDoneMsg struct{}

// ProgressModel renders live scan progress with a spinner and a bar.
type ProgressModel struct {
	events <-chan models.ProgressEvent

	spinner spinner.Model
	bar     progress.Model

	phase   string
	message string
	percent int
	done    bool
}

// NewProgress creates a progress model fed by the given event channel.
func NewProgress(events <-chan models.ProgressEvent) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleSearchPrompt

	bar := progress.New(progress.WithDefaultGradient())

	return ProgressModel{
		events:  events,
		spinner: sp,
		bar:     bar,
		phase:   "init",
	}
}

func (m ProgressModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return progressDoneMsg{}
		}
		return progressEventMsg(ev)
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 10
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		return m, nil

	case progressEventMsg:
		m.phase = msg.Phase
		m.message = msg.Message
		if msg.Percent > m.percent {
			m.percent = msg.Percent
		}
		cmd := m.bar.SetPercent(float64(m.percent) / 100)
		return m, tea.Batch(cmd, m.waitForEvent())

	case progressDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.message))
	b.WriteString(fmt.Sprintf("%s %d%%  [%s]\n", m.bar.View(), m.percent, m.phase))
	return b.String()
}

// RunProgress displays scan progress until the event channel is closed.
func RunProgress(events <-chan models.ProgressEvent) error {
	p := tea.NewProgram(NewProgress(events))
	_, err := p.Run()
	return err
}
