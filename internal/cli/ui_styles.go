package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goliatone/go-todos"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	boxUnchecked = "☐"
)

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✖ "+msg))
}

func panel(w io.Writer, lines []string) {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	fmt.Fprintln(w, border.Render(strings.Join(lines, "\n")))
}

func renderItems(w io.Writer, owner string, items []*todos.TodoItem) {
	lines := []string{titleStyle.Render(fmt.Sprintf("Todos for %s", owner))}
	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render("nothing to do"))
	}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			boxUnchecked,
			item.Text,
			mutedStyle.Render(item.TodoID),
		))
	}
	lines = append(lines, accentStyle.Render(fmt.Sprintf("%d active", len(items))))
	panel(w, lines)
}

func renderSession(w io.Writer, session todos.AuthSession) {
	if !session.Authenticated {
		panel(w, []string{mutedStyle.Render("not logged in")})
		return
	}
	panel(w, []string{
		titleStyle.Render(session.Name),
		accentStyle.Render(session.Username),
	})
}
