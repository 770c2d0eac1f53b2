package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// taskDoneMsg carries the result of the background task.
type taskDoneMsg struct{ err error }

// taskModel shows a spinner until its task finishes.
type taskModel struct {
	spinner spinner.Model
	title   string
	task    func() error
	done    bool
	err     error
}

func newTaskModel(title string, task func() error) taskModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return taskModel{spinner: sp, title: title, task: task}
}

func (m taskModel) Init() tea.Cmd {
	task := m.task
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return taskDoneMsg{err: task()}
	})
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m taskModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.title)
}

// RunTask runs task while a spinner labelled title animates on out. When
// animate is false, for example because out is not a terminal, a single
// progress line is written instead.
func RunTask(ctx context.Context, out io.Writer, title string, animate bool, task func() error) error {
	if !animate {
		fmt.Fprintf(out, "%s...\n", title)
		return task()
	}

	p := tea.NewProgram(newTaskModel(title, task),
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("%s: %w", title, err)
	}
	return final.(taskModel).err
}
