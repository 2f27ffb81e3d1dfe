package dispatch

import (
	"fmt"
	"log/slog"
	"time"

	"clubsched/internal/lib/logger/sl"
	"clubsched/internal/models"

	ics "github.com/arran4/golang-ical"
)

// inviteReminderType scopes invite dedup separately from scheduled reminders.
const inviteReminderType = "invite"

// SendInvites emails a calendar invite for a freshly created event to every
// active member with an email address. Called fire-and-forget after a poll
// closes; it shares the dispatcher's eligibility and dedup machinery, so a
// lost or duplicated call is safe.
func (d *Dispatcher) SendInvites(ev models.Event) (Result, error) {
	const op = "dispatch.SendInvites"

	log := d.log.With(slog.String("op", op), slog.Int("event_id", ev.ID))

	if d.mailer == nil {
		return Result{}, fmt.Errorf("%s: invite mailer not configured", op)
	}

	instant, err := d.clk.Instant(ev.EventDate, ev.EventTime)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	recipients, err := d.storage.InviteRecipients(ev.ID, inviteReminderType)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	calendar := d.buildInviteICS(ev, instant)
	subject := fmt.Sprintf("Dinner invite: %s on %s", ev.RestaurantName, instant.In(d.clk.Location()).Format("Monday, Jan 2"))
	text := fmt.Sprintf(
		"You're invited to dinner at %s on %s at %s.\nAddress: %s\nRespond via your calendar, or reply YES/NO by text.",
		ev.RestaurantName,
		instant.In(d.clk.Location()).Format("Monday, January 2"),
		instant.In(d.clk.Location()).Format("3:04 PM"),
		ev.RestaurantAddress,
	)

	var res Result
	for _, u := range recipients {
		if err := d.mailer.SendInvite(u.Email, subject, text, calendar); err != nil {
			log.Error("failed to send invite", slog.Int64("user_id", u.ID), sl.Err(err))
			res.Failed++
			continue
		}

		if err := d.storage.RecordReminder(ev.ID, u.ID, inviteReminderType); err != nil {
			log.Error("failed to record invite", slog.Int64("user_id", u.ID), sl.Err(err))
		}
		res.Sent++
	}

	return res, nil
}

// buildInviteICS renders the METHOD:REQUEST calendar object. The UID uses the
// same event-<id>@<domain> grammar the inbound calendar-reply parser accepts,
// which is what routes replies back to the event.
func (d *Dispatcher) buildInviteICS(ev models.Event, instant time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)

	uid := fmt.Sprintf("event-%d@%s", ev.ID, d.domain)

	event := cal.AddEvent(uid)
	event.SetCreatedTime(time.Now())
	event.SetDtStampTime(time.Now())
	event.SetStartAt(instant)
	event.SetEndAt(instant.Add(2 * time.Hour))
	event.SetSummary(fmt.Sprintf("Dinner at %s", ev.RestaurantName))
	event.SetLocation(ev.RestaurantAddress)

	return []byte(cal.Serialize())
}
