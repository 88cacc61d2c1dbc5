package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	headingStyle    = lipgloss.NewStyle().Bold(true)
	similarityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	linkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Underline(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	failStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

// render applies style only when the command writes to a terminal.
func render(cmd *cobra.Command, style lipgloss.Style, text string) string {
	if !isTerminal(cmd.OutOrStdout()) {
		return text
	}
	return style.Render(text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
