package schedule

import (
	"fmt"
	"time"

	"clubsched/internal/clock"
	"clubsched/internal/models"
)

// Offset is a named reminder lead time before an event, e.g. {"24h", 24h}.
type Offset struct {
	Name string
	Lead time.Duration
}

// ParseOffsets builds offsets from duration strings; the string itself is the
// reminder type name ("24h", "2h").
func ParseOffsets(specs []string) ([]Offset, error) {
	const op = "schedule.ParseOffsets"

	offsets := make([]Offset, 0, len(specs))
	for _, s := range specs {
		lead, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if lead <= 0 {
			return nil, fmt.Errorf("%s: offset %q must be positive", op, s)
		}
		offsets = append(offsets, Offset{Name: s, Lead: lead})
	}

	return offsets, nil
}

type DueReminder struct {
	Event  models.Event
	Offset Offset
}

// Due selects the (event, offset) pairs whose reminder window contains now.
// An offset is due iff lead-window < eventInstant-now <= lead. The half-open
// interval guarantees a single firing as successive sweeps walk past the
// target instant, provided the sweep cadence is shorter than the window.
func Due(events []models.Event, now time.Time, offsets []Offset, window time.Duration, clk *clock.Clock) []DueReminder {
	var due []DueReminder

	for _, ev := range events {
		if ev.Status != models.EventUpcoming {
			continue
		}

		instant, err := clk.Instant(ev.EventDate, ev.EventTime)
		if err != nil {
			continue
		}

		diff := instant.Sub(now)
		for _, off := range offsets {
			if off.Lead-window < diff && diff <= off.Lead {
				due = append(due, DueReminder{Event: ev, Offset: off})
			}
		}
	}

	return due
}
