package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"}).
			Bold(true)
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"})
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"})
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}).
			Bold(true)
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}).
			Padding(0, 1)
)

// Title renders a section heading.
func Title(s string) string { return titleStyle.Render(s) }

// Success renders a success status line.
func Success(s string) string { return successStyle.Render("✓ " + s) }

// Warning renders a warning status line.
func Warning(s string) string { return warningStyle.Render("! " + s) }

// Error renders an error status line.
func Error(s string) string { return errorStyle.Render("✗ " + s) }

// Muted renders secondary text.
func Muted(s string) string { return mutedStyle.Render(s) }

// PromptBox frames text the operator is expected to copy.
func PromptBox(s string) string { return promptBoxStyle.Render(s) }

// Statusf writes one styled status line to w.
func Statusf(w io.Writer, style func(string) string, format string, args ...any) {
	fmt.Fprintln(w, style(fmt.Sprintf(format, args...)))
}
