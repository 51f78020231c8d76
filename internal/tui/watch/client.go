package watch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// --- Message types ---

// Event mirrors the API's event snapshot shape; the payload stays raw JSON.
type Event struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

type eventsMsg struct {
	Events []Event `json:"events"`
}

type healthMsg struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Workspaces    int    `json:"workspaces"`
}

type calendarMsg struct {
	Entries []calendarEntry `json:"entries"`
}

type calendarEntry struct {
	Action      string     `json:"action"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type tickMsg time.Time

type errMsg error

// --- Commands ---

// fetchEvents polls the /events snapshot endpoint for events newer than
// lastID.
func fetchEvents(apiURL, apiKey string, lastID int64) tea.Cmd {
	return func() tea.Msg {
		var out eventsMsg
		url := fmt.Sprintf("%s/events?since=%d", apiURL, lastID)
		if err := getJSON(url, apiKey, &out); err != nil {
			return errMsg(err)
		}
		return out
	}
}

// fetchHealth queries the /healthz endpoint.
func fetchHealth(apiURL, apiKey string) tea.Msg {
	var h healthMsg
	if err := getJSON(apiURL+"/healthz", apiKey, &h); err != nil {
		return errMsg(err)
	}
	return h
}

// fetchCalendar queries the /calendar endpoint.
func fetchCalendar(apiURL, apiKey string) tea.Msg {
	var c calendarMsg
	if err := getJSON(apiURL+"/calendar?limit=20", apiKey, &c); err != nil {
		return errMsg(err)
	}
	return c
}

func getJSON(url, apiKey string, out any) error {
	client := &http.Client{Timeout: 3 * time.Second}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
