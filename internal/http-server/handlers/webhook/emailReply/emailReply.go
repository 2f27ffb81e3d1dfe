package emailReply

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"clubsched/internal/lib/api/response"
	"clubsched/internal/lib/logger/sl"
	"clubsched/internal/models"
	"clubsched/internal/reply"
	"clubsched/internal/rsvp"
	"clubsched/internal/storage/postgres"
	"clubsched/internal/webhook"

	"github.com/go-chi/render"
)

// maxPayloadBytes caps inbound email payloads; forwarded HTML bodies can be
// large but anything past this is not a calendar reply.
const maxPayloadBytes = 1 << 20

// InboundEmail is the email provider's inbound webhook envelope.
type InboundEmail struct {
	Type string `json:"type"`
	Data struct {
		From    string `json:"from"`
		Subject string `json:"subject"`
		Text    string `json:"text"`
		Html    string `json:"html"`
	} `json:"data"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventStore
type EventStore interface {
	EventByID(id int) (*models.Event, error)
	UserByEmail(email string) (*models.User, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=RsvpRecorder
type RsvpRecorder interface {
	Reconcile(eventID int, userID int64, status models.RsvpStatus, comments *string, viaCalendar bool) (bool, error)
}

type ReplyResult struct {
	response.Response
	Success bool       `json:"success"`
	Data    ResultData `json:"data"`
}

type ResultData struct {
	EventID int    `json:"event_id"`
	UserID  int64  `json:"user_id"`
	Status  string `json:"status"`
	Created bool   `json:"created"`
}

func New(log *slog.Logger, verifier *webhook.EmailVerifier, parser *reply.CalendarParser, store EventStore, rsvps RsvpRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.emailReply.New"

		log := log.With(
			slog.String("op", op),
		)

		// A malformed forwarded email must never 500 the webhook; the
		// provider would retry a poison payload forever.
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic while handling inbound email", slog.Any("panic", rec))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
			}
		}()

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
		if err != nil {
			log.Error("failed to read request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to read request body"))
			return
		}

		if err := verifier.Verify(payload, r.Header); err != nil {
			if errors.Is(err, webhook.ErrNotConfigured) {
				log.Error("email webhook secret is not configured")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("webhook secret not configured"))
				return
			}
			log.Warn("rejected inbound email with bad signature", sl.Err(err))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid signature"))
			return
		}

		var email InboundEmail
		if err := json.Unmarshal(payload, &email); err != nil {
			log.Error("failed to decode inbound email", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if email.Type != "email.received" {
			log.Info("ignoring inbound event", slog.String("type", email.Type))
			render.JSON(w, r, map[string]string{"message": "ignored"})
			return
		}

		parsed := parser.Parse(email.Data.Text, email.Data.Html, email.Data.Subject)
		if parsed == nil {
			log.Info("inbound email carries no calendar reply",
				slog.String("subject", email.Data.Subject),
			)
			render.JSON(w, r, map[string]string{"message": "no actionable data found"})
			return
		}

		eventID := reply.RedirectLegacyEventID(parsed.EventID)

		ev, err := store.EventByID(eventID)
		if err != nil {
			if errors.Is(err, postgres.ErrEventNotFound) {
				log.Warn("calendar reply for unknown event", slog.Int("event_id", eventID))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
				return
			}
			log.Error("failed to get event", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		sender := senderAddress(email.Data.From)

		user, err := store.UserByEmail(sender)
		if err != nil {
			if errors.Is(err, postgres.ErrUserNotFound) {
				log.Warn("calendar reply from unknown sender", slog.String("from", sender))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("user not found"))
				return
			}
			log.Error("failed to look up user", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}

		status, ok := rsvp.StatusFromPartstat(parsed.Partstat)
		if !ok {
			log.Info("calendar reply without a participation decision",
				slog.Int("event_id", ev.ID),
				slog.Int64("user_id", user.ID),
			)
			render.JSON(w, r, map[string]string{"message": "no actionable data found"})
			return
		}

		created, err := rsvps.Reconcile(ev.ID, user.ID, status, nil, true)
		if err != nil {
			log.Error("failed to record rsvp", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to record rsvp"))
			return
		}

		log.Info("rsvp recorded via calendar reply",
			slog.Int("event_id", ev.ID),
			slog.Int64("user_id", user.ID),
			slog.String("status", string(status)),
			slog.Bool("created", created),
		)

		render.JSON(w, r, ReplyResult{
			Response: response.OK(),
			Success:  true,
			Data: ResultData{
				EventID: ev.ID,
				UserID:  user.ID,
				Status:  string(status),
				Created: created,
			},
		})
	}
}

// senderAddress extracts the bare address from a From header value such as
// `"Alice Example" <alice@example.com>` and lowercases it for lookup.
func senderAddress(from string) string {
	if start := strings.LastIndex(from, "<"); start >= 0 {
		if end := strings.Index(from[start:], ">"); end > 0 {
			from = from[start+1 : start+end]
		}
	}

	return strings.ToLower(strings.TrimSpace(from))
}
