// Package calendar publishes goal deadlines as iCalendar data, either as a
// subscribable feed or pushed to a CalDAV server.
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/felixgeelhaar/stride/internal/goals/application/queries"
)

// PropXStride marks events this package owns.
const PropXStride = "X-STRIDE"

const productID = "-//Stride//Goal Deadlines//EN"

// NewCalendar returns a calendar with one all-day event per deadline.
func NewCalendar(deadlines []queries.DeadlineDTO, now time.Time) *ical.Calendar {
	cal := newCalendar()
	for _, d := range deadlines {
		cal.Children = append(cal.Children, toEvent(d, now).Component)
	}
	return cal
}

// EncodeFeed writes deadlines to w as an iCalendar document.
func EncodeFeed(w io.Writer, deadlines []queries.DeadlineDTO, now time.Time) error {
	if err := ical.NewEncoder(w).Encode(NewCalendar(deadlines, now)); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	return cal
}

// singleEvent wraps one deadline; CalDAV stores one event per object.
func singleEvent(d queries.DeadlineDTO, now time.Time) *ical.Calendar {
	cal := newCalendar()
	cal.Children = append(cal.Children, toEvent(d, now).Component)
	return cal
}

func toEvent(d queries.DeadlineDTO, now time.Time) *ical.Event {
	day := time.Date(d.Due.Year(), d.Due.Month(), d.Due.Day(), 0, 0, 0, 0, time.UTC)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventUID(d))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDate(ical.PropDateTimeStart, day)
	event.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))

	summary := "Goal due: " + d.Title
	description := fmt.Sprintf("Status: %s", d.Status)
	if d.Kind == queries.DeadlineKindTask {
		summary = fmt.Sprintf("%s (%s)", d.Title, d.GoalTitle)
		description = fmt.Sprintf("Task of %q\nStatus: %s", d.GoalTitle, d.Status)
	}
	event.Props.SetText(ical.PropSummary, summary)
	event.Props.SetText(ical.PropDescription, description)

	marker := ical.NewProp(PropXStride)
	marker.Value = d.Kind
	event.Props[PropXStride] = []ical.Prop{*marker}

	return event
}

func eventUID(d queries.DeadlineDTO) string {
	return fmt.Sprintf("%s-%s@stride", d.Kind, d.ID)
}

// isStrideEvent reports whether a component carries the X-STRIDE marker.
func isStrideEvent(cal *ical.Calendar) bool {
	if cal == nil {
		return false
	}
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if props := child.Props[PropXStride]; len(props) > 0 && props[0].Value != "" {
			return true
		}
	}
	return false
}
