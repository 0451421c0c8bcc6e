// Package calendar pulls busy time from Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"daymark-engine/internal/domain"
)

const primary = "primary"

var ErrNoToken = errors.New("google calendar token not set")

// GoogleBusy reads the primary calendar's free/busy with an OAuth2 access
// token supplied by token on every call.
type GoogleBusy struct {
	token    func() string
	endpoint string
}

// NewGoogleBusy returns a client for the public API, or for endpoint when
// it is not empty.
func NewGoogleBusy(token func() string, endpoint string) *GoogleBusy {
	return &GoogleBusy{token: token, endpoint: endpoint}
}

// BusySlots returns the busy intervals on date (YYYY-MM-DD) in loc, sorted
// by start.
func (g *GoogleBusy) BusySlots(ctx context.Context, date string, loc *time.Location) ([]domain.BusySlot, error) {
	tok := g.token()
	if tok == "" {
		return nil, ErrNoToken
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", date, err)
	}

	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"})),
	}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	req := &gcal.FreeBusyRequest{
		TimeMin: day.Format(time.RFC3339),
		TimeMax: day.AddDate(0, 0, 1).Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: primary}},
	}
	if name := loc.String(); name != "Local" {
		req.TimeZone = name
	}
	resp, err := svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("free/busy: %w", err)
	}
	slots, err := busyFrom(resp, loc)
	if err != nil {
		return nil, err
	}
	log.Printf("[calendar] date=%s busy=%d", date, len(slots))
	return slots, nil
}

func busyFrom(resp *gcal.FreeBusyResponse, loc *time.Location) ([]domain.BusySlot, error) {
	cal, ok := resp.Calendars[primary]
	if !ok {
		return []domain.BusySlot{}, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("free/busy %s: %s", primary, cal.Errors[0].Reason)
	}

	out := make([]domain.BusySlot, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		if p == nil {
			continue
		}
		start, err1 := time.Parse(time.RFC3339, p.Start)
		end, err2 := time.Parse(time.RFC3339, p.End)
		if err1 != nil || err2 != nil || !end.After(start) {
			continue
		}
		out = append(out, domain.BusySlot{Start: start.In(loc), End: end.In(loc)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
