package dispatch

import (
	"fmt"
	"log/slog"
	"time"

	"clubsched/internal/clock"
	"clubsched/internal/lib/logger/sl"
	"clubsched/internal/models"
	"clubsched/internal/rsvp"
	"clubsched/internal/schedule"

	"github.com/google/uuid"
)

type Storage interface {
	UpcomingEvents() ([]models.Event, error)
	EventByID(id int) (*models.Event, error)
	ReminderRecipients(eventID int, reminderType string, filter models.RecipientFilter) ([]models.User, error)
	InviteRecipients(eventID int, reminderType string) ([]models.User, error)
	RsvpStatus(eventID int, userID int64) (models.RsvpStatus, error)
	RecordReminder(eventID int, userID int64, reminderType string) error
}

type SmsSender interface {
	SendSms(to, body string) error
}

type InviteMailer interface {
	SendInvite(to, subject, text string, ics []byte) error
}

type SweepResult struct {
	Due    int `json:"due"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type BroadcastOptions struct {
	Message    string
	RsvpStatus models.RsvpStatus
	UserID     int64
}

// Dispatcher sends reminders and invites to recipient sets and records each
// confirmed send as a ReminderRecord. Ordering per recipient is send, then
// record: a crash between the two risks one duplicate send on the next sweep
// but never a record without a send attempt.
type Dispatcher struct {
	log     *slog.Logger
	storage Storage
	sms     SmsSender
	mailer  InviteMailer
	clk     *clock.Clock
	domain  string
	offsets []schedule.Offset
	window  time.Duration
}

func New(
	log *slog.Logger,
	storage Storage,
	sms SmsSender,
	mailer InviteMailer,
	clk *clock.Clock,
	calendarDomain string,
	offsets []schedule.Offset,
	window time.Duration,
) *Dispatcher {
	return &Dispatcher{
		log:     log,
		storage: storage,
		sms:     sms,
		mailer:  mailer,
		clk:     clk,
		domain:  calendarDomain,
		offsets: offsets,
		window:  window,
	}
}

// Sweep runs one pass over all upcoming events and dispatches every due
// (event, offset) pair. Failures are logged and counted, never propagated:
// the periodic trigger must not see errors.
func (d *Dispatcher) Sweep(now time.Time) SweepResult {
	const op = "dispatch.Sweep"

	log := d.log.With(slog.String("op", op))

	var res SweepResult

	events, err := d.storage.UpcomingEvents()
	if err != nil {
		log.Error("failed to load upcoming events", sl.Err(err))
		return res
	}

	due := schedule.Due(events, now, d.offsets, d.window, d.clk)
	res.Due = len(due)

	for _, dr := range due {
		sent, failed := d.dispatchSms(dr.Event, dr.Offset.Name, models.RecipientFilter{}, "")
		res.Sent += sent
		res.Failed += failed
	}

	if res.Due > 0 {
		log.Info("sweep completed",
			slog.Int("due", res.Due),
			slog.Int("sent", res.Sent),
			slog.Int("failed", res.Failed),
		)
	}

	return res
}

// Broadcast sends an ad-hoc admin message to the event's eligible recipients,
// optionally narrowed by RSVP status or to one user. The one-off reminder
// type keeps it out of the scheduled reminders' dedup space.
func (d *Dispatcher) Broadcast(eventID int, opts BroadcastOptions) (Result, error) {
	const op = "dispatch.Broadcast"

	ev, err := d.storage.EventByID(eventID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	reminderType := "adhoc-" + uuid.NewString()

	filter := models.RecipientFilter{
		RsvpStatus: opts.RsvpStatus,
		UserID:     opts.UserID,
	}

	sent, failed := d.dispatchSms(*ev, reminderType, filter, opts.Message)

	return Result{Sent: sent, Failed: failed}, nil
}

// dispatchSms fans a message out to the remaining recipients for (event,
// reminderType). An empty message means standard reminder copy per recipient.
// Per recipient: send, then record; a failed send records nothing so a later
// sweep retries that recipient alone.
func (d *Dispatcher) dispatchSms(ev models.Event, reminderType string, filter models.RecipientFilter, message string) (sent, failed int) {
	log := d.log.With(
		slog.Int("event_id", ev.ID),
		slog.String("reminder_type", reminderType),
	)

	recipients, err := d.storage.ReminderRecipients(ev.ID, reminderType, filter)
	if err != nil {
		log.Error("failed to load recipients", sl.Err(err))
		return 0, 0
	}

	instant, err := d.clk.Instant(ev.EventDate, ev.EventTime)
	if err != nil {
		log.Error("failed to resolve event instant", sl.Err(err))
		return 0, 0
	}

	now := d.clk.Now()

	for _, u := range recipients {
		body := message
		if body == "" {
			status, err := d.storage.RsvpStatus(ev.ID, u.ID)
			if err != nil {
				log.Error("failed to load rsvp status", slog.Int64("user_id", u.ID), sl.Err(err))
				status = ""
			}
			body = d.renderReminder(ev, instant, now, status)
		}

		if err := d.sms.SendSms(*u.Phone, body); err != nil {
			log.Error("failed to send sms", slog.Int64("user_id", u.ID), sl.Err(err))
			failed++
			continue
		}

		if err := d.storage.RecordReminder(ev.ID, u.ID, reminderType); err != nil {
			// The send went out; a missing record only risks one duplicate
			// on the next sweep.
			log.Error("failed to record reminder", slog.Int64("user_id", u.ID), sl.Err(err))
		}
		sent++
	}

	return sent, failed
}

func (d *Dispatcher) renderReminder(ev models.Event, instant, now time.Time, status models.RsvpStatus) string {
	return fmt.Sprintf(
		"Dinner reminder: %s %s at %s. Your RSVP: %s. Reply YES or NO to update, HELP for help, STOP to opt out.",
		ev.RestaurantName,
		d.clk.DayLabel(now, instant),
		instant.In(d.clk.Location()).Format("3:04 PM"),
		rsvp.StatusLabel(status),
	)
}
