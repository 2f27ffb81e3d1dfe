package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"clubsched/internal/clock"
	"clubsched/internal/lib/logger/handlers/slogdiscard"
	"clubsched/internal/models"
	"clubsched/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordKey struct {
	eventID      int
	userID       int64
	reminderType string
}

type fakeStorage struct {
	events     []models.Event
	users      []models.User
	rsvps      map[[2]int64]models.RsvpStatus
	records    map[recordKey]bool
	recordErr  error
	usersErr   error
	eventsErr  error
	recordSeen []recordKey
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		rsvps:   map[[2]int64]models.RsvpStatus{},
		records: map[recordKey]bool{},
	}
}

func (f *fakeStorage) UpcomingEvents() ([]models.Event, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

func (f *fakeStorage) EventByID(id int) (*models.Event, error) {
	for _, ev := range f.events {
		if ev.ID == id {
			ev := ev
			return &ev, nil
		}
	}
	return nil, errors.New("event not found")
}

func (f *fakeStorage) ReminderRecipients(eventID int, reminderType string, filter models.RecipientFilter) ([]models.User, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}

	var out []models.User
	for _, u := range f.users {
		if !u.ReminderEligible() {
			continue
		}
		if f.records[recordKey{eventID, u.ID, reminderType}] {
			continue
		}
		if filter.UserID != 0 && u.ID != filter.UserID {
			continue
		}
		if filter.RsvpStatus != "" && f.rsvps[[2]int64{int64(eventID), u.ID}] != filter.RsvpStatus {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStorage) InviteRecipients(eventID int, reminderType string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Status != models.UserActive || u.Email == "" {
			continue
		}
		if f.records[recordKey{eventID, u.ID, reminderType}] {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStorage) RsvpStatus(eventID int, userID int64) (models.RsvpStatus, error) {
	return f.rsvps[[2]int64{int64(eventID), userID}], nil
}

func (f *fakeStorage) RecordReminder(eventID int, userID int64, reminderType string) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	key := recordKey{eventID, userID, reminderType}
	f.records[key] = true
	f.recordSeen = append(f.recordSeen, key)
	return nil
}

type fakeSms struct {
	sent    []string
	bodies  []string
	failFor map[string]bool
}

func (f *fakeSms) SendSms(to, body string) error {
	if f.failFor[to] {
		return errors.New("provider error")
	}
	f.sent = append(f.sent, to)
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeMailer struct {
	sent []string
	ics  [][]byte
	fail bool
}

func (f *fakeMailer) SendInvite(to, subject, text string, ics []byte) error {
	if f.fail {
		return errors.New("provider error")
	}
	f.sent = append(f.sent, to)
	f.ics = append(f.ics, ics)
	return nil
}

func activeUser(id int64, phoneNum string) models.User {
	p := phoneNum
	return models.User{
		ID:       id,
		Name:     fmt.Sprintf("User %d", id),
		Email:    fmt.Sprintf("user%d@members.example", id),
		Phone:    &p,
		SmsOptIn: true,
		Status:   models.UserActive,
	}
}

func newTestDispatcher(t *testing.T, storage *fakeStorage, sms *fakeSms, mailer *fakeMailer) (*Dispatcher, *clock.Clock) {
	t.Helper()

	clk, err := clock.New("America/Chicago", "18:00")
	require.NoError(t, err)

	offsets, err := schedule.ParseOffsets([]string{"24h", "2h"})
	require.NoError(t, err)

	d := New(slogdiscard.NewDiscardLogger(), storage, sms, mailer, clk, "club.example", offsets, 15*time.Minute)

	return d, clk
}

func TestSweepSendsAndRecords(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	sms := &fakeSms{}
	d, clk := newTestDispatcher(t, storage, sms, &fakeMailer{})

	eventDate := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)
	storage.events = []models.Event{{
		ID:             1,
		RestaurantName: "Nonna's",
		EventDate:      eventDate,
		EventTime:      "18:00",
		Status:         models.EventUpcoming,
	}}
	storage.users = []models.User{activeUser(1, "+14155550001"), activeUser(2, "+14155550002")}
	storage.rsvps[[2]int64{1, 1}] = models.RsvpYes

	instant, err := clk.Instant(eventDate, "18:00")
	require.NoError(t, err)

	res := d.Sweep(instant.Add(-24 * time.Hour))

	assert.Equal(t, 1, res.Due)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 0, res.Failed)
	assert.ElementsMatch(t, []string{"+14155550001", "+14155550002"}, sms.sent)

	// Confirmed sends are recorded for dedup.
	assert.True(t, storage.records[recordKey{1, 1, "24h"}])
	assert.True(t, storage.records[recordKey{1, 2, "24h"}])

	// Message copy carries the current RSVP label and reply instructions.
	assert.Contains(t, sms.bodies[0], "Your RSVP: Yes")
	assert.Contains(t, sms.bodies[1], "Your RSVP: Pending")
	assert.Contains(t, sms.bodies[0], "Nonna's")
	assert.Contains(t, sms.bodies[0], "STOP")
}

func TestSweepSecondPassIsDeduplicated(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	sms := &fakeSms{}
	d, clk := newTestDispatcher(t, storage, sms, &fakeMailer{})

	eventDate := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)
	storage.events = []models.Event{{
		ID:        1,
		EventDate: eventDate,
		EventTime: "18:00",
		Status:    models.EventUpcoming,
	}}
	storage.users = []models.User{activeUser(1, "+14155550001")}

	instant, err := clk.Instant(eventDate, "18:00")
	require.NoError(t, err)

	// Two sweeps inside the same window, closer together than the window.
	first := d.Sweep(instant.Add(-24 * time.Hour))
	second := d.Sweep(instant.Add(-24*time.Hour + 5*time.Minute))

	assert.Equal(t, 1, first.Sent)
	assert.Equal(t, 1, second.Due, "pair is still due, recipients are filtered instead")
	assert.Equal(t, 0, second.Sent)
	assert.Len(t, sms.sent, 1, "exactly one send across both sweeps")
}

func TestSweepFailureDoesNotBlockOthersOrRecord(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	sms := &fakeSms{failFor: map[string]bool{"+14155550001": true}}
	d, clk := newTestDispatcher(t, storage, sms, &fakeMailer{})

	eventDate := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)
	storage.events = []models.Event{{
		ID:        1,
		EventDate: eventDate,
		EventTime: "18:00",
		Status:    models.EventUpcoming,
	}}
	storage.users = []models.User{activeUser(1, "+14155550001"), activeUser(2, "+14155550002")}

	instant, err := clk.Instant(eventDate, "18:00")
	require.NoError(t, err)

	res := d.Sweep(instant.Add(-24 * time.Hour))

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)

	// No record for the failed recipient: a later sweep can retry them.
	assert.False(t, storage.records[recordKey{1, 1, "24h"}])
	assert.True(t, storage.records[recordKey{1, 2, "24h"}])
}

func TestBroadcastFiltersAndUsesAdhocType(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	sms := &fakeSms{}
	d, _ := newTestDispatcher(t, storage, sms, &fakeMailer{})

	eventDate := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)
	storage.events = []models.Event{{
		ID:        1,
		EventDate: eventDate,
		EventTime: "18:00",
		Status:    models.EventUpcoming,
	}}
	storage.users = []models.User{activeUser(1, "+14155550001"), activeUser(2, "+14155550002")}
	storage.rsvps[[2]int64{1, 1}] = models.RsvpYes
	storage.rsvps[[2]int64{1, 2}] = models.RsvpNo

	res, err := d.Broadcast(1, BroadcastOptions{
		Message:    "Venue changed to the back room.",
		RsvpStatus: models.RsvpYes,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []string{"+14155550001"}, sms.sent)
	assert.Equal(t, []string{"Venue changed to the back room."}, sms.bodies)

	require.Len(t, storage.recordSeen, 1)
	assert.True(t, strings.HasPrefix(storage.recordSeen[0].reminderType, "adhoc-"))
}

func TestBroadcastSingleRecipient(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	sms := &fakeSms{}
	d, _ := newTestDispatcher(t, storage, sms, &fakeMailer{})

	eventDate := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)
	storage.events = []models.Event{{
		ID:        1,
		EventDate: eventDate,
		Status:    models.EventUpcoming,
	}}
	storage.users = []models.User{activeUser(1, "+14155550001"), activeUser(2, "+14155550002")}

	res, err := d.Broadcast(1, BroadcastOptions{Message: "still coming?", UserID: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []string{"+14155550002"}, sms.sent)
}

func TestBroadcastUnknownEvent(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher(t, newFakeStorage(), &fakeSms{}, &fakeMailer{})

	_, err := d.Broadcast(99, BroadcastOptions{Message: "hello"})
	assert.Error(t, err)
}

func TestSendInvites(t *testing.T) {
	t.Parallel()

	storage := newFakeStorage()
	mailer := &fakeMailer{}
	d, _ := newTestDispatcher(t, storage, &fakeSms{}, mailer)

	eventDate := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)
	ev := models.Event{
		ID:                7,
		RestaurantName:    "Nonna's",
		RestaurantAddress: "12 Main St",
		EventDate:         eventDate,
		EventTime:         "18:00",
		Status:            models.EventUpcoming,
	}
	storage.events = []models.Event{ev}
	storage.users = []models.User{activeUser(1, "+14155550001")}

	res, err := d.SendInvites(ev)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Sent)
	require.Len(t, mailer.ics, 1)

	body := string(mailer.ics[0])
	assert.Contains(t, body, "METHOD:REQUEST")
	assert.Contains(t, body, "UID:event-7@club.example")
	assert.Contains(t, body, "LOCATION:12 Main St")

	// Invite dedup rides the same record mechanism.
	assert.True(t, storage.records[recordKey{7, 1, "invite"}])

	// A repeated fire-and-forget call is absorbed.
	res, err = d.SendInvites(ev)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sent)
	assert.Len(t, mailer.sent, 1)
}
