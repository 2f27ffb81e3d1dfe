package broadcast

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"clubsched/internal/dispatch"
	"clubsched/internal/lib/api/response"
	"clubsched/internal/lib/logger/sl"
	"clubsched/internal/models"
	"clubsched/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type BroadcastRequest struct {
	Message    string `json:"message" validate:"required"`
	RsvpStatus string `json:"rsvp_status,omitempty" validate:"omitempty,oneof=yes no maybe"`
	UserID     int64  `json:"user_id,omitempty"`
}

type BroadcastResponse struct {
	response.Response
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Broadcaster
type Broadcaster interface {
	Broadcast(eventID int, opts dispatch.BroadcastOptions) (dispatch.Result, error)
}

func New(log *slog.Logger, broadcaster Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.broadcast.New"

		log := log.With(
			slog.String("op", op),
		)

		eventID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			log.Error("invalid event id", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event id format"))

			return
		}

		var req BroadcastRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err := validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))

			return
		}

		res, err := broadcaster.Broadcast(eventID, dispatch.BroadcastOptions{
			Message:    req.Message,
			RsvpStatus: models.RsvpStatus(req.RsvpStatus),
			UserID:     req.UserID,
		})
		if err != nil {
			if errors.Is(err, postgres.ErrEventNotFound) {
				log.Warn("broadcast for unknown event", slog.Int("event_id", eventID))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))

				return
			}

			log.Error("failed to broadcast", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to broadcast"))

			return
		}

		log.Info("broadcast finished",
			slog.Int("event_id", eventID),
			slog.Int("sent", res.Sent),
			slog.Int("failed", res.Failed),
		)

		render.JSON(w, r, BroadcastResponse{
			Response: response.OK(),
			Sent:     res.Sent,
			Failed:   res.Failed,
		})
	}
}
