package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/felixgeelhaar/stride/internal/goals/application/queries"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// ErrNoCalendars is returned when the account exposes no calendar.
var ErrNoCalendars = errors.New("no calendars found")

// Config selects the CalDAV account deadlines are pushed to.
type Config struct {
	URL      string
	Username string
	// Password is an app-specific password for hosted providers.
	Password string
	// CalendarPath pins a calendar; empty uses the account's first one.
	CalendarPath  string
	DeleteMissing bool
	Timeout       time.Duration
}

// SyncResult counts what a sync changed.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Syncer pushes deadlines into a CalDAV calendar (Apple Calendar, Fastmail,
// Nextcloud, ...).
type Syncer struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewSyncer creates a CalDAV deadline syncer.
func NewSyncer(cfg Config, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Syncer{cfg: cfg, logger: logger, now: time.Now}
}

// WithDeleteMissing returns a copy of s that also removes stride events no
// longer present in the synced set.
func (s *Syncer) WithDeleteMissing(enabled bool) *Syncer {
	cp := *s
	cp.cfg.DeleteMissing = enabled
	return &cp
}

// Sync upserts one calendar object per deadline. With DeleteMissing set,
// stride events no longer in deadlines are removed.
func (s *Syncer) Sync(ctx context.Context, deadlines []queries.DeadlineDTO) (*SyncResult, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}
	if !strings.HasSuffix(calPath, "/") {
		calPath += "/"
	}

	now := s.now()
	result := &SyncResult{}
	keep := make(map[string]struct{}, len(deadlines))

	for _, d := range deadlines {
		eventPath := calPath + d.Kind + "-" + d.ID.String() + ".ics"
		keep[eventPath] = struct{}{}

		updated, err := s.upsertEvent(ctx, client, eventPath, d, now)
		if err != nil {
			s.logger.Warn("caldav sync failed", "event_path", eventPath, "error", err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if s.cfg.DeleteMissing {
		deleted, err := s.deleteMissing(ctx, client, calPath, keep)
		if err != nil {
			s.logger.Warn("caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	s.logger.Info("caldav sync completed",
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *Syncer) client() (*caldav.Client, error) {
	httpClient := &http.Client{Timeout: s.cfg.Timeout}
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, s.cfg.Username, s.cfg.Password), s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (s *Syncer) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if s.cfg.CalendarPath != "" {
		return s.cfg.CalendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", ErrNoCalendars
	}
	return cals[0].Path, nil
}

func (s *Syncer) upsertEvent(ctx context.Context, client *caldav.Client, eventPath string, d queries.DeadlineDTO, now time.Time) (bool, error) {
	_, err := client.GetCalendarObject(ctx, eventPath)
	exists := err == nil

	if _, err := client.PutCalendarObject(ctx, eventPath, singleEvent(d, now)); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Syncer) deleteMissing(ctx context.Context, client *caldav.Client, calPath string, keep map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{Name: "VEVENT", Props: []string{"UID", PropXStride}},
			},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT"}},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if !isStrideEvent(obj.Data) {
			continue
		}
		if _, ok := keep[obj.Path]; ok {
			continue
		}
		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			s.logger.Warn("failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}
