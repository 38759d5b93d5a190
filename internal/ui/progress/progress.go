// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhancris/KPresent/internal/telemetry"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"})
	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"})
	fallbackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"})
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"})
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"})
)

// =============================================================================
// MESSAGES
// =============================================================================

// SlideMsg reports one finished slide.
type SlideMsg struct {
	Index  int // position in the deck, zero based
	Total  int
	Title  string
	Source string
}

// DoneMsg ends the display. Err is the assembly error, if any.
type DoneMsg struct {
	Err error
}

// =============================================================================
// MODEL
// =============================================================================

// maxLines is the number of finished slides kept on screen.
const maxLines = 6

// Model is the deck assembly display: a spinner, a bar and the most recent
// slide titles.
type Model struct {
	title   string
	total   int
	done    int
	started time.Time

	spinner spinner.Model
	bar     progress.Model
	lines   []string

	err       error
	finished  bool
	cancelled bool
}

// New creates a display for a deck of total slides.
func New(title string, total int) Model {
	if total < 1 {
		total = 1
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return Model{
		title:   title,
		total:   total,
		started: time.Now(),
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles slide, completion, key and resize messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SlideMsg:
		if msg.Total > 0 {
			m.total = msg.Total
		}
		m.done++
		if m.done > m.total {
			m.done = m.total
		}
		m.lines = append(m.lines, m.slideLine(msg))
		if len(m.lines) > maxLines {
			m.lines = m.lines[len(m.lines)-maxLines:]
		}
		return m, nil

	case DoneMsg:
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		width := msg.Width - 20
		if width < 20 {
			width = 20
		}
		if width > 80 {
			width = 80
		}
		m.bar.Width = width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) slideLine(msg SlideMsg) string {
	line := fmt.Sprintf("%2d. %s", msg.Index+1, msg.Title)
	if msg.Source == telemetry.SourceFallback {
		return fallbackStyle.Render(line + " (fallback)")
	}
	return doneStyle.Render(line)
}

// Percent is the completed fraction in [0, 1].
func (m Model) Percent() float64 {
	return float64(m.done) / float64(m.total)
}

// Done is the number of finished slides.
func (m Model) Done() int { return m.done }

// Cancelled reports whether the user interrupted the display.
func (m Model) Cancelled() bool { return m.cancelled }

// View renders the display.
func (m Model) View() string {
	var sb strings.Builder
	switch {
	case m.finished && m.err != nil:
		sb.WriteString(errorStyle.Render("x " + m.title))
	case m.finished:
		sb.WriteString(doneStyle.Render("* " + m.title))
	default:
		sb.WriteString(m.spinner.View() + " " + titleStyle.Render(m.title))
	}
	sb.WriteString("\n\n  ")
	sb.WriteString(m.bar.ViewAs(m.Percent()))
	sb.WriteString(fmt.Sprintf("  %d/%d", m.done, m.total))
	sb.WriteString("\n\n")
	for _, line := range m.lines {
		sb.WriteString("  " + line + "\n")
	}
	if !m.finished {
		elapsed := time.Since(m.started).Truncate(time.Second)
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %s elapsed, press q to cancel", elapsed)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// =============================================================================
// RUNNER
// =============================================================================

// ErrCancelled is returned by Run when the user quits the display.
var ErrCancelled = errors.New("generation cancelled")

// Reporter is handed to the work function to report finished slides.
type Reporter func(SlideMsg)

// Run shows the display on out while work runs. Work receives a context
// that is cancelled when the user quits, and returns the assembly error.
func Run(ctx context.Context, in io.Reader, out io.Writer, title string, total int, work func(context.Context, Reporter) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A nil in disables keyboard input.
	p := tea.NewProgram(New(title, total), tea.WithInput(in), tea.WithOutput(out), tea.WithContext(ctx))

	workErr := make(chan error, 1)
	go func() {
		err := work(ctx, func(msg SlideMsg) { p.Send(msg) })
		p.Send(DoneMsg{Err: err})
		workErr <- err
	}()

	final, runErr := p.Run()
	if m, ok := final.(Model); ok && m.Cancelled() {
		cancel()
		<-workErr
		return ErrCancelled
	}
	err := <-workErr
	if err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return nil
}
