package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderEventStream(eventLog []Event, theme Theme, width int) string {
	innerWidth := width - 4

	if len(eventLog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("EVENT STREAM"),
			theme.Dim.Render("  Waiting for events..."),
		)
		return theme.Border.Width(innerWidth).Render(content)
	}

	var lines []string
	for i, e := range eventLog {
		if i >= 10 {
			break
		}
		lines = append(lines, formatEvent(e, theme))
	}

	eventsText := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("EVENT STREAM"),
		eventsText,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatEvent(e Event, theme Theme) string {
	ts := theme.Dim.Render(e.At.Format("15:04:05"))

	var typeStyle lipgloss.Style
	switch {
	case strings.HasSuffix(e.Type, ".reopen_completed"):
		typeStyle = theme.StatusOK
	case strings.HasSuffix(e.Type, ".lockdown_completed"):
		typeStyle = theme.StatusLocked
	case strings.HasSuffix(e.Type, ".anomaly"):
		typeStyle = theme.StatusFailed
	case strings.HasPrefix(e.Type, "scheduler"):
		typeStyle = theme.Highlight
	default:
		typeStyle = theme.Dim
	}

	typeName := typeStyle.Render(fmt.Sprintf("%-26s", e.Type))
	desc := extractEventDesc(e)

	return fmt.Sprintf("%s %s %s", ts, typeName, desc)
}

func extractEventDesc(e Event) string {
	data := make(map[string]any)
	_ = json.Unmarshal(e.Data, &data)

	var parts []string

	if ws, ok := data["workspace_id"].(string); ok && ws != "" {
		parts = append(parts, fmt.Sprintf("[%s]", ws))
	}

	if action, ok := data["action"].(string); ok && action != "" {
		parts = append(parts, action)
	}

	if reason, ok := data["reason"].(string); ok && reason != "" {
		parts = append(parts, reason)
	}

	if n, ok := data["affected_channels"].(float64); ok {
		parts = append(parts, fmt.Sprintf("channels=%d", int(n)))
	}
	if n, ok := data["restored_channels"].(float64); ok {
		parts = append(parts, fmt.Sprintf("restored=%d", int(n)))
	}

	if len(parts) == 0 {
		raw := string(e.Data)
		if len(raw) > 60 {
			raw = raw[:60] + "..."
		}
		return raw
	}

	return strings.Join(parts, " ")
}
