package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/ScreenerGo/internal/models"
)

// UI styles
var (
	bannerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	answerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#10B981")).
		Padding(1, 2).
		Width(80)

	toolNameStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	traceStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	errStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

func renderBanner() string {
	return bannerStyle.Render("ScreenerGo") + " - ask me about the stock universe. Type /help for commands.\n"
}

func renderAnswer(answer string) string {
	return answerStyle.Render(answer)
}

func renderError(msg string) string {
	return errStyle.Render(msg)
}

// renderTrace summarizes the tool activity behind an answer, one line
// per event.
func renderTrace(trace []models.TraceEvent) string {
	var b strings.Builder
	for _, evt := range trace {
		switch evt.Type {
		case models.TraceToolCall:
			b.WriteString(traceStyle.Render(fmt.Sprintf("  [%d] -> %s %s", evt.Step, evt.Tool, evt.Arguments)))
			b.WriteString("\n")
		case models.TraceToolResult:
			b.WriteString(traceStyle.Render(fmt.Sprintf("  [%d] <- %s (%d bytes)", evt.Step, evt.Tool, len(evt.Result))))
			b.WriteString("\n")
		case models.TraceError:
			b.WriteString(errStyle.Render(fmt.Sprintf("  [%d] error: %s %s", evt.Step, evt.Reason, evt.Content)))
			b.WriteString("\n")
		}
	}
	return b.String()
}
