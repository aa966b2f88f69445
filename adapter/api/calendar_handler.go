package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	goalQueries "github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/felixgeelhaar/stride/internal/goals/infrastructure/calendar"
)

func (h *GoalsHandler) listDeadlines(w http.ResponseWriter, r *http.Request) ([]goalQueries.DeadlineDTO, bool) {
	includeCompleted, _ := strconv.ParseBool(r.URL.Query().Get("includeCompleted"))
	deadlines, err := h.deadlines.Handle(r.Context(), goalQueries.ListDeadlinesQuery{
		UserID:           userID(r),
		IncludeCompleted: includeCompleted,
	})
	if err != nil {
		writeAppError(w, r, h.logger, "list deadlines", err)
		return nil, false
	}
	return deadlines, true
}

// Deadlines handles GET /api/v1/deadlines
func (h *GoalsHandler) Deadlines(w http.ResponseWriter, r *http.Request) {
	deadlines, ok := h.listDeadlines(w, r)
	if !ok {
		return
	}
	if deadlines == nil {
		deadlines = []goalQueries.DeadlineDTO{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"deadlines": deadlines})
}

// CalendarFeed handles GET /api/v1/calendar.ics
func (h *GoalsHandler) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	deadlines, ok := h.listDeadlines(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := calendar.EncodeFeed(&buf, deadlines, time.Now()); err != nil {
		writeAppError(w, r, h.logger, "encode calendar", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="stride.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
