package calendar

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/felixgeelhaar/stride/internal/goals/application/queries"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func sampleDeadlines() []queries.DeadlineDTO {
	goalID := uuid.New()
	return []queries.DeadlineDTO{
		{
			ID: uuid.New(), GoalID: goalID, Kind: queries.DeadlineKindTask,
			Title: "Buy shoes", GoalTitle: "Run a half marathon", Status: "pending",
			Due: time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC),
		},
		{
			ID: goalID, GoalID: goalID, Kind: queries.DeadlineKindGoal,
			Title: "Run a half marathon", GoalTitle: "Run a half marathon", Status: "in-progress",
			Due: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestEncodeFeed(t *testing.T) {
	deadlines := sampleDeadlines()
	var buf bytes.Buffer
	require.NoError(t, EncodeFeed(&buf, deadlines, now))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	assert.Equal(t, productID, cal.Props.Get(ical.PropProductID).Value)

	events := cal.Events()
	require.Len(t, events, 2)

	task := events[0]
	assert.Equal(t, "Buy shoes (Run a half marathon)", task.Props.Get(ical.PropSummary).Value)
	assert.Equal(t, "20261020", task.Props.Get(ical.PropDateTimeStart).Value)
	assert.Equal(t, "20261021", task.Props.Get(ical.PropDateTimeEnd).Value)
	assert.Equal(t, "task-"+deadlines[0].ID.String()+"@stride", task.Props.Get(ical.PropUID).Value)
	assert.Equal(t, queries.DeadlineKindTask, task.Props.Get(PropXStride).Value)

	goal := events[1]
	assert.Equal(t, "Goal due: Run a half marathon", goal.Props.Get(ical.PropSummary).Value)
	assert.Contains(t, goal.Props.Get(ical.PropDescription).Value, "in-progress")
}

func TestEncodeFeed_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFeed(&buf, nil, now))
	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.NotContains(t, buf.String(), "BEGIN:VEVENT")
}

func TestIsStrideEvent(t *testing.T) {
	assert.False(t, isStrideEvent(nil))
	assert.False(t, isStrideEvent(ical.NewCalendar()))

	foreign := ical.NewCalendar()
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, "someone-else")
	foreign.Children = append(foreign.Children, event.Component)
	assert.False(t, isStrideEvent(foreign))

	assert.True(t, isStrideEvent(singleEvent(sampleDeadlines()[0], now)))
}

// fakeCalDAV stores PUT bodies and serves them back on GET.
type fakeCalDAV struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
}

func (f *fakeCalDAV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", ical.MIMEType)
		_, _ = w.Write(body)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.puts = append(f.puts, r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestSyncer_SyncCreatesThenUpdates(t *testing.T) {
	fake := &fakeCalDAV{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	syncer := NewSyncer(Config{URL: srv.URL, Username: "me", Password: "secret", CalendarPath: "/cal/me"}, nil)
	syncer.now = func() time.Time { return now }
	deadlines := sampleDeadlines()

	res, err := syncer.Sync(context.Background(), deadlines)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Created: 2}, *res)
	require.Len(t, fake.puts, 2)
	assert.Equal(t, "/cal/me/task-"+deadlines[0].ID.String()+".ics", fake.puts[0])
	assert.True(t, strings.Contains(string(fake.objects[fake.puts[0]]), "X-STRIDE:task"))

	res, err = syncer.Sync(context.Background(), deadlines)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Updated: 2}, *res)
}

func TestSyncer_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSyncer(Config{URL: srv.URL}, nil).Sync(context.Background(), sampleDeadlines())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find calendar")
}
