package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HealthState tracks gateway health from /healthz polling.
type HealthState struct {
	Status        string
	UptimeSeconds int64
	Workspaces    int
	Connected     bool
	LastCheck     time.Time
}

// Model is the main BubbleTea model for the watch TUI.
type Model struct {
	apiURL string
	apiKey string

	width  int
	height int

	health   HealthState
	eventLog []Event
	lastID   int64
	lastTick time.Time

	calendar table.Model

	ticker  Ticker
	spinner Spinner
	theme   Theme

	lastError string
}

// New creates a new watch TUI model.
func New(apiURL, apiKey string) *Model {
	theme := NewDefaultTheme()

	cal := table.New(
		table.WithColumns([]table.Column{
			{Title: "SCHEDULED", Width: 20},
			{Title: "ACTION", Width: 10},
			{Title: "STATUS", Width: 12},
		}),
		table.WithHeight(6),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Selected = s.Selected.Foreground(lipgloss.Color("#E5C07B"))
	cal.SetStyles(s)

	return &Model{
		apiURL:   apiURL,
		apiKey:   apiKey,
		eventLog: make([]Event, 0),
		calendar: cal,
		ticker:   NewTicker(),
		spinner:  NewSpinner(),
		theme:    theme,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchEvents(m.apiURL, m.apiKey, 0),
		func() tea.Msg { return fetchHealth(m.apiURL, m.apiKey) },
		func() tea.Msg { return fetchCalendar(m.apiURL, m.apiKey) },
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.calendar, cmd = m.calendar.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.ticker.Tick()
		m.spinner.Decay()
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })

	case eventsMsg:
		for _, e := range msg.Events {
			if e.ID > m.lastID {
				m.lastID = e.ID
			}
			m.eventLog = append([]Event{e}, m.eventLog...)
			m.spinner.OnEvent()
			if e.Type == "scheduler.tick" {
				m.lastTick = time.Now()
			}
		}
		if len(m.eventLog) > 50 {
			m.eventLog = m.eventLog[:50]
		}
		m.health.Connected = true
		m.lastError = ""

		return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg {
			return fetchEvents(m.apiURL, m.apiKey, m.lastID)()
		})

	case healthMsg:
		m.health.Status = msg.Status
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.Workspaces = msg.Workspaces
		m.health.Connected = true
		m.health.LastCheck = time.Now()
		m.lastError = ""

		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg {
			return fetchHealth(m.apiURL, m.apiKey)
		})

	case calendarMsg:
		m.calendar.SetRows(calendarRows(msg.Entries))
		return m, tea.Tick(10*time.Second, func(time.Time) tea.Msg {
			return fetchCalendar(m.apiURL, m.apiKey)
		})

	case errMsg:
		m.health.Connected = false
		m.lastError = msg.Error()
		// Retry the whole poll set after a short delay.
		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg {
			return fetchHealth(m.apiURL, m.apiKey)
		})
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing watch..."
	}

	header := m.renderHeader()
	calendarPanel := m.renderCalendar()
	eventStream := renderEventStream(m.eventLog, m.theme, m.width)

	var errBar string
	if m.lastError != "" {
		errBar = m.theme.StatusFailed.Render(fmt.Sprintf(" ⚠ %s", m.lastError))
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(" [q] Quit • [↑/↓] Scroll Calendar")

	parts := []string{header, calendarPanel, eventStream}
	if errBar != "" {
		parts = append(parts, errBar)
	}
	parts = append(parts, help)

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m Model) renderHeader() string {
	innerWidth := m.width - 4

	statusText := m.theme.StatusOK.Render("HEALTHY")
	statusIcon := "✅"
	if !m.health.Connected {
		statusText = m.theme.StatusFailed.Render("CONNECTING")
		statusIcon = "🔌"
	} else if m.health.Status != "ok" && m.health.Status != "" {
		statusText = m.theme.StatusFailed.Render("DEGRADED")
		statusIcon = "⚠️"
	}

	uptimeStr := formatDuration(time.Duration(m.health.UptimeSeconds) * time.Second)

	lastEventStr := "never"
	if !m.spinner.LastEvent().IsZero() {
		lastEventStr = fmt.Sprintf("%s ago", time.Since(m.spinner.LastEvent()).Round(time.Second))
	}

	tickerStr := m.theme.Highlight.Render(m.ticker.Current())
	clock := m.theme.Dim.Render(time.Now().Format("15:04:05"))
	titleText := fmt.Sprintf(" CURFEWD WATCH %s", tickerStr)

	pad := innerWidth - lipgloss.Width(titleText) - lipgloss.Width(clock) - 4
	if pad < 1 {
		pad = 1
	}
	titleLine := titleText + strings.Repeat(" ", pad) + clock + " "

	statsLine := fmt.Sprintf(" %s %s  ⏱ %s  Workspaces: %d",
		statusIcon, statusText, uptimeStr, m.health.Workspaces)

	activityLine := fmt.Sprintf(" Last event: %s %s", lastEventStr, m.spinner.Render(m.theme))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, statsLine, activityLine)
	return m.theme.Border.Width(innerWidth).Render(content)
}

func (m Model) renderCalendar() string {
	innerWidth := m.width - 4
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("CURFEW CALENDAR"),
		m.calendar.View(),
	)
	return m.theme.Border.Width(innerWidth).Render(content)
}

func calendarRows(entries []calendarEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		status := "pending"
		if e.Completed {
			status = "completed"
		} else if e.ScheduledAt.Before(time.Now()) {
			status = "due"
		}
		rows = append(rows, table.Row{
			e.ScheduledAt.Local().Format("2006-01-02 15:04"),
			e.Action,
			status,
		})
	}
	return rows
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
}
