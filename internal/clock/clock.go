// Package clock resolves local dates, hour buckets and time strings for a
// configured time zone.
package clock

import (
	"strings"
	"time"

	"codeberg.org/mutker/mcwatch/internal/errors"
)

const (
	DayKeyLayout     = "2006-01-02"
	TimeStringLayout = "15:04:05"
)

// Clock is the source of "now" for the poll loop.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Calendar maps instants onto local calendar keys.
type Calendar struct {
	loc *time.Location
}

// NewCalendar loads the named IANA zone. An empty name or "Local" selects
// the host zone.
func NewCalendar(name string) (*Calendar, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return &Calendar{loc: time.Local}, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInvalidTimezone, err)
	}

	return &Calendar{loc: loc}, nil
}

// InLocation returns a calendar for an already resolved zone.
func InLocation(loc *time.Location) *Calendar {
	return &Calendar{loc: loc}
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DayKey returns the local date of t as YYYY-MM-DD.
func (c *Calendar) DayKey(t time.Time) string {
	return t.In(c.loc).Format(DayKeyLayout)
}

// Hour returns the local hour-of-day bucket of t.
func (c *Calendar) Hour(t time.Time) int {
	return t.In(c.loc).Hour()
}

// TimeString returns the local wall time of t as HH:MM:SS.
func (c *Calendar) TimeString(t time.Time) string {
	return t.In(c.loc).Format(TimeStringLayout)
}
