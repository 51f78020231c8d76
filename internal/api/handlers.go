package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mattjoyce/curfewd/internal/calendar"
	"github.com/mattjoyce/curfewd/internal/engine"
	"github.com/mattjoyce/curfewd/internal/transcript"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        "curfewd",
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"workspaces":     len(s.workspaces),
	})
}

// lockdownRequest optionally overrides the configured workspace policy for a
// manual run. Absent fields fall back to the policy.
type lockdownRequest struct {
	TargetRoles     []string `json:"target_roles,omitempty"`
	IgnoredRoles    []string `json:"ignored_roles,omitempty"`
	IgnoredChannels []string `json:"ignored_channels,omitempty"`
	IgnoreNeutral   *bool    `json:"ignore_neutral,omitempty"`
	OperatorID      string   `json:"operator_id,omitempty"`
}

// handleLockdown handles POST /workspace/{workspaceID}/lockdown.
func (s *Server) handleLockdown(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	policy, ok := s.workspaces[workspaceID]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown workspace")
		return
	}

	var req lockdownRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	params := engine.Params{
		TargetRoles:     policy.TargetRoles,
		IgnoredRoles:    policy.IgnoredRoles,
		IgnoredChannels: policy.IgnoredChannels,
		IgnoreNeutral:   policy.IgnoreNeutral,
	}
	if req.TargetRoles != nil {
		params.TargetRoles = req.TargetRoles
	}
	if req.IgnoredRoles != nil {
		params.IgnoredRoles = req.IgnoredRoles
	}
	if req.IgnoredChannels != nil {
		params.IgnoredChannels = req.IgnoredChannels
	}
	if req.IgnoreNeutral != nil {
		params.IgnoreNeutral = *req.IgnoreNeutral
	}

	prov := engine.Provenance{Auto: false, OperatorID: req.OperatorID}
	t, err := s.engine.Lockdown(r.Context(), workspaceID, params, prov)
	if err != nil {
		s.logger.Error("Manual lockdown failed", "workspace_id", workspaceID, "error", err)
		writeError(w, http.StatusInternalServerError, "lockdown failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// reopenRequest optionally carries an imported portable transcript; when it
// is absent the stored one is replayed.
type reopenRequest struct {
	OperatorID string          `json:"operator_id,omitempty"`
	Transcript json.RawMessage `json:"transcript,omitempty"`
}

// handleReopen handles POST /workspace/{workspaceID}/reopen.
func (s *Server) handleReopen(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	if _, ok := s.workspaces[workspaceID]; !ok {
		writeError(w, http.StatusNotFound, "unknown workspace")
		return
	}

	var req reopenRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	var t *transcript.Transcript
	if len(req.Transcript) > 0 {
		decoded, err := transcript.Decode(req.Transcript)
		if err != nil {
			if errors.Is(err, transcript.ErrMalformed) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		decoded.WorkspaceID = workspaceID
		t = decoded
	} else {
		stored, err := s.reader.Latest(r.Context(), workspaceID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "load transcript: "+err.Error())
			return
		}
		if stored == nil {
			writeError(w, http.StatusConflict, "no transcript stored for workspace")
			return
		}
		t = stored
	}

	prov := engine.Provenance{Auto: false, OperatorID: req.OperatorID}
	report, err := s.engine.Reopen(r.Context(), workspaceID, t, prov)
	if err != nil {
		if errors.Is(err, transcript.ErrMalformed) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Manual reopen failed", "workspace_id", workspaceID, "error", err)
		writeError(w, http.StatusInternalServerError, "reopen failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleGetTranscript handles GET /workspace/{workspaceID}/transcript and
// returns the stored transcript in its portable form.
func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")

	t, err := s.reader.Latest(r.Context(), workspaceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load transcript: "+err.Error())
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "no transcript stored for workspace")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleCalendarList handles GET /calendar?limit=N.
func (s *Server) handleCalendarList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.cal.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list calendar: "+err.Error())
		return
	}
	if entries == nil {
		entries = []calendar.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

type calendarAppendRequest struct {
	Action      string    `json:"action"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// handleCalendarAppend handles POST /calendar.
func (s *Server) handleCalendarAppend(w http.ResponseWriter, r *http.Request) {
	var req calendarAppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	action := calendar.Action(req.Action)
	if !action.Valid() {
		writeError(w, http.StatusBadRequest, "action must be LOCKDOWN or REOPEN")
		return
	}
	if req.ScheduledAt.IsZero() {
		writeError(w, http.StatusBadRequest, "scheduled_at is required")
		return
	}

	if err := s.cal.Append(r.Context(), action, req.ScheduledAt); err != nil {
		writeError(w, http.StatusConflict, "append calendar entry: "+err.Error())
		return
	}

	s.logger.Info("Calendar entry appended",
		"action", string(action),
		"scheduled_at", req.ScheduledAt.UTC().Format(time.RFC3339),
	)
	writeJSON(w, http.StatusCreated, map[string]any{
		"action":       string(action),
		"scheduled_at": req.ScheduledAt.UTC(),
	})
}

// handleEvents handles GET /events?since=N, serving the hub's ring buffer
// snapshot for pollers like the watch TUI.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid since")
			return
		}
		since = n
	}

	evs := s.hub.SnapshotSince(since)
	out := make([]map[string]any, 0, len(evs))
	for _, ev := range evs {
		out = append(out, map[string]any{
			"id":   ev.ID,
			"type": ev.Type,
			"at":   ev.At,
			"data": json.RawMessage(ev.Data),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}
