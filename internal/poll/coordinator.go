package poll

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubsched/internal/clock"
	"clubsched/internal/dispatch"
	"clubsched/internal/lib/logger/sl"
	"clubsched/internal/models"
)

// Business-rule violations surface as user-facing strings.
var (
	ErrBadDate   = errors.New("event date is not a valid date")
	ErrPastDate  = errors.New("event date must be in the future")
	ErrNoVotes   = errors.New("winning choice has no votes in this poll")
	ErrNoAddress = errors.New("restaurant has no address; cannot send invites")
)

type Store interface {
	ClosePoll(pollID, restaurantID int, eventDate time.Time, eventTime string, validate func(models.PollWinner) error) (int, error)
	EventByID(id int) (*models.Event, error)
}

type InviteSender interface {
	SendInvites(ev models.Event) (dispatch.Result, error)
}

type CloseParams struct {
	PollID       int
	RestaurantID int
	EventDate    string
	EventTime    string
	SendInvites  bool
}

// Coordinator drives the one-way active → closed poll transition. The store
// re-validates the poll is still active and recomputes vote counts inside the
// closing transaction; the coordinator owns the business rules applied to
// those fresh counts.
type Coordinator struct {
	log     *slog.Logger
	store   Store
	clk     *clock.Clock
	invites InviteSender
}

func New(log *slog.Logger, store Store, clk *clock.Clock, invites InviteSender) *Coordinator {
	return &Coordinator{
		log:     log,
		store:   store,
		clk:     clk,
		invites: invites,
	}
}

// Close validates and performs the transition, returning the created event
// id. Invite dispatch after a successful close is fire-and-forget: the task
// itself is idempotent, and its failure never unwinds the closed poll.
func (c *Coordinator) Close(p CloseParams) (int, error) {
	const op = "poll.Close"

	date, err := time.Parse("2006-01-02", p.EventDate)
	if err != nil {
		return 0, ErrBadDate
	}

	// Zone-aware future check before any transaction is started.
	instant, err := c.clk.Instant(date, p.EventTime)
	if err != nil {
		return 0, ErrBadDate
	}
	if !instant.After(c.clk.Now()) {
		return 0, ErrPastDate
	}

	eventID, err := c.store.ClosePoll(p.PollID, p.RestaurantID, date, p.EventTime, func(w models.PollWinner) error {
		if w.RestaurantVotes == 0 || w.DateVotes == 0 {
			return ErrNoVotes
		}
		if p.SendInvites && w.RestaurantAddress == "" {
			return ErrNoAddress
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if p.SendInvites {
		go c.sendInvites(eventID)
	}

	return eventID, nil
}

func (c *Coordinator) sendInvites(eventID int) {
	log := c.log.With(slog.String("op", "poll.sendInvites"), slog.Int("event_id", eventID))

	ev, err := c.store.EventByID(eventID)
	if err != nil {
		log.Error("failed to load event for invites", sl.Err(err))
		return
	}

	res, err := c.invites.SendInvites(*ev)
	if err != nil {
		log.Error("failed to send invites", sl.Err(err))
		return
	}

	log.Info("invites dispatched", slog.Int("sent", res.Sent), slog.Int("failed", res.Failed))
}
