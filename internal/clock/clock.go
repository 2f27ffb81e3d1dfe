package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	// The club zone must resolve even on hosts without a system tz database.
	_ "time/tzdata"
)

// Clock converts civil event dates and times in the club's configured IANA
// zone into absolute instants. The zone's offset depends on the calendar date
// (DST), so instants are always derived through the zone's own tables rather
// than a fixed offset.
type Clock struct {
	loc         *time.Location
	defaultTime string
}

func New(timezone, defaultEventTime string) (*Clock, error) {
	const op = "clock.New"

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if defaultEventTime == "" {
		defaultEventTime = "18:00"
	}
	if _, _, err := parseHHMM(defaultEventTime); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Clock{loc: loc, defaultTime: defaultEventTime}, nil
}

// Instant resolves a civil date plus an "HH:MM" time-of-day to the absolute
// instant in the club zone. An empty time-of-day uses the configured default.
// A wall-clock time that does not exist on the given date (DST spring-forward
// gap) rolls forward deterministically.
func (c *Clock) Instant(date time.Time, hhmm string) (time.Time, error) {
	const op = "clock.Instant"

	if hhmm == "" {
		hhmm = c.defaultTime
	}

	hour, minute, err := parseHHMM(hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	y, m, d := date.Date()

	return time.Date(y, m, d, hour, minute, 0, 0, c.loc), nil
}

// Now is the current instant observed in the club zone.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// DayLabel renders the relative day of an instant versus now, for reminder
// copy: "today", "tomorrow", or the formatted date.
func (c *Clock) DayLabel(now, instant time.Time) string {
	ny, nm, nd := now.In(c.loc).Date()
	iy, im, id := instant.In(c.loc).Date()

	// Compare calendar dates, not 24h offsets: a day across a DST
	// transition is not 24 hours long.
	ty, tm, td := time.Date(ny, nm, nd, 0, 0, 0, 0, c.loc).AddDate(0, 0, 1).Date()

	switch {
	case iy == ny && im == nm && id == nd:
		return "today"
	case iy == ty && im == tm && id == td:
		return "tomorrow"
	default:
		return instant.In(c.loc).Format("Monday, Jan 2")
	}
}

func parseHHMM(hhmm string) (int, int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q", hhmm)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid time of day %q", hhmm)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time of day %q", hhmm)
	}

	return hour, minute, nil
}
