package smsReply

import (
	"encoding/xml"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"clubsched/internal/config"
	"clubsched/internal/lib/logger/sl"
	"clubsched/internal/lib/phone"
	"clubsched/internal/models"
	"clubsched/internal/reply"
	"clubsched/internal/rsvp"
	"clubsched/internal/storage/postgres"
	"clubsched/internal/webhook"
)

const (
	helpMessage = "Reply YES or NO to RSVP for the next dinner. Reply STOP to opt out of reminders."

	optOutMessage = "You have been unsubscribed from dinner reminders."

	noEventMessage = "There is no upcoming dinner to RSVP for right now."
)

// TwiML is the provider's expected XML reply: zero or one human-readable
// message, content-type text/xml.
type TwiML struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ReplyStore
type ReplyStore interface {
	UserByPhone(phoneNumber string) (*models.User, error)
	NextUpcomingEvent(from time.Time) (*models.Event, error)
	OptOutUser(userID int64) error
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=RsvpRecorder
type RsvpRecorder interface {
	Reconcile(eventID int, userID int64, status models.RsvpStatus, comments *string, viaCalendar bool) (bool, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=RateLimiter
type RateLimiter interface {
	Allow(scope, identifier string) (bool, error)
}

// Now returns the current instant; injected so tests control time.
type Now func() time.Time

func New(log *slog.Logger, cfg *config.Config, store ReplyStore, rsvps RsvpRecorder, limiter RateLimiter, now Now) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.smsReply.New"

		log := log.With(
			slog.String("op", op),
		)

		// Missing shared secret is an operator problem, reported as such
		// rather than dressed up as an auth failure.
		if cfg.Twilio.AuthToken == "" {
			log.Error("twilio auth token is not configured")
			http.Error(w, "sms webhook not configured", http.StatusInternalServerError)
			return
		}

		if err := r.ParseForm(); err != nil {
			log.Error("failed to parse form", sl.Err(err))
			http.Error(w, "malformed request", http.StatusBadRequest)
			return
		}

		signature := r.Header.Get("X-Twilio-Signature")
		if !webhook.ValidateTwilioSignature(cfg.Twilio.AuthToken, requestURL(r), r.PostForm, signature) {
			log.Warn("rejected sms webhook with bad signature")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		from := r.PostFormValue("From")
		body := r.PostFormValue("Body")
		if from == "" {
			http.Error(w, "missing sender", http.StatusBadRequest)
			return
		}

		if allowed, err := limiter.Allow("sms", from); err != nil {
			// The limiter failing must not take the webhook down with it.
			log.Error("rate limiter failed", sl.Err(err))
		} else if !allowed {
			log.Warn("rate limited sms sender", slog.String("from", from))
			respondTwiML(w, "")
			return
		}

		user, err := store.UserByPhone(phone.Normalize(from))
		if err != nil {
			if errors.Is(err, postgres.ErrUserNotFound) {
				log.Info("sms from unknown number", slog.String("from", from))
				w.Header().Set("Content-Type", "text/xml")
				w.WriteHeader(http.StatusNotFound)
				return
			}
			log.Error("failed to look up user", sl.Err(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		log = log.With(slog.Int64("user_id", user.ID))

		switch intent := reply.ParseSms(body); intent {
		case reply.IntentOptOut:
			if err := store.OptOutUser(user.ID); err != nil {
				log.Error("failed to opt out user", sl.Err(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			log.Info("user opted out")
			respondTwiML(w, optOutMessage)

		case reply.IntentYes, reply.IntentNo:
			status := models.RsvpYes
			if intent == reply.IntentNo {
				status = models.RsvpNo
			}

			ev, err := store.NextUpcomingEvent(now())
			if err != nil {
				if errors.Is(err, postgres.ErrEventNotFound) {
					respondTwiML(w, noEventMessage)
					return
				}
				log.Error("failed to find upcoming event", sl.Err(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			if _, err := rsvps.Reconcile(ev.ID, user.ID, status, nil, false); err != nil {
				log.Error("failed to record rsvp", sl.Err(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			log.Info("rsvp recorded via sms",
				slog.Int("event_id", ev.ID),
				slog.String("status", string(status)),
			)
			respondTwiML(w, confirmation(ev, status))

		default:
			// Help and anything unrecognized both get the help copy.
			respondTwiML(w, helpMessage)
		}
	}
}

func confirmation(ev *models.Event, status models.RsvpStatus) string {
	return "Got it! You are marked as " + rsvp.StatusLabel(status) +
		" for " + ev.RestaurantName + " on " + ev.EventDate.Format("Jan 2") + "."
}

func respondTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)

	out, err := xml.Marshal(TwiML{Message: message})
	if err != nil {
		return
	}

	w.Write([]byte(xml.Header))
	w.Write(out)
}

// requestURL reconstructs the full URL the provider signed. The scheme comes
// from the proxy header when the service sits behind TLS termination.
func requestURL(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}

	return scheme + "://" + r.Host + r.RequestURI
}
