package rsvp

import (
	"fmt"

	"clubsched/internal/models"
	"clubsched/internal/reply"
)

type Store interface {
	UpsertRsvp(eventID int, userID int64, status models.RsvpStatus, comments *string, viaCalendar bool) (bool, error)
}

// Reconciler folds responses from any channel into the single RSVP row per
// (event, user). The storage upsert clears admin-override markers, so a
// member's fresh reply always supersedes a prior manual correction.
type Reconciler struct {
	store Store
}

func New(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile records a response. Returns whether a new row was created, for
// downstream activity logging.
func (r *Reconciler) Reconcile(eventID int, userID int64, status models.RsvpStatus, comments *string, viaCalendar bool) (bool, error) {
	const op = "rsvp.Reconcile"

	created, err := r.store.UpsertRsvp(eventID, userID, status, comments, viaCalendar)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// StatusFromPartstat maps a calendar participation status to an RSVP status.
func StatusFromPartstat(partstat string) (models.RsvpStatus, bool) {
	switch partstat {
	case reply.PartstatAccepted:
		return models.RsvpYes, true
	case reply.PartstatDeclined:
		return models.RsvpNo, true
	case reply.PartstatTentative, reply.PartstatNeedsAction:
		return models.RsvpMaybe, true
	default:
		return "", false
	}
}

// StatusLabel renders an RSVP status for member-facing copy; an absent row
// reads as Pending.
func StatusLabel(status models.RsvpStatus) string {
	switch status {
	case models.RsvpYes:
		return "Yes"
	case models.RsvpNo:
		return "No"
	case models.RsvpMaybe:
		return "Maybe"
	default:
		return "Pending"
	}
}
