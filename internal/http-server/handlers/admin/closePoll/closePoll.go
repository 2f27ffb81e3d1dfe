package closePoll

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"clubsched/internal/lib/api/response"
	"clubsched/internal/lib/logger/sl"
	"clubsched/internal/poll"
	"clubsched/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type CloseRequest struct {
	RestaurantID int    `json:"restaurant_id" validate:"required"`
	EventDate    string `json:"event_date" validate:"required"`
	EventTime    string `json:"event_time,omitempty"`
	SendInvites  bool   `json:"send_invites,omitempty"`
}

type CloseResponse struct {
	response.Response
	EventID int `json:"event_id"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=PollCloser
type PollCloser interface {
	Close(p poll.CloseParams) (int, error)
}

func New(log *slog.Logger, closer PollCloser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.closePoll.New"

		log := log.With(
			slog.String("op", op),
		)

		pollID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			log.Error("invalid poll id", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid poll id format"))

			return
		}

		var req CloseRequest

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

		eventID, err := closer.Close(poll.CloseParams{
			PollID:       pollID,
			RestaurantID: req.RestaurantID,
			EventDate:    req.EventDate,
			EventTime:    req.EventTime,
			SendInvites:  req.SendInvites,
		})
		if err != nil {
			status, msg := closeError(err)
			log.Error("failed to close poll", sl.Err(err))
			render.Status(r, status)
			render.JSON(w, r, response.Error(msg))

			return
		}

		log.Info("poll closed",
			slog.Int("poll_id", pollID),
			slog.Int("event_id", eventID),
		)

		render.JSON(w, r, CloseResponse{
			Response: response.OK(),
			EventID:  eventID,
		})
	}
}

// closeError maps coordinator and storage failures onto the admin API:
// business-rule rejections are 422, the lost race for an already-closed poll
// is 409.
func closeError(err error) (int, string) {
	switch {
	case errors.Is(err, poll.ErrBadDate):
		return http.StatusUnprocessableEntity, "event date is not a valid date"
	case errors.Is(err, poll.ErrPastDate):
		return http.StatusUnprocessableEntity, "event date must be in the future"
	case errors.Is(err, poll.ErrNoVotes):
		return http.StatusUnprocessableEntity, "winning choice has no votes in this poll"
	case errors.Is(err, poll.ErrNoAddress):
		return http.StatusUnprocessableEntity, "restaurant has no address; cannot send invites"
	case errors.Is(err, postgres.ErrPollNotActive):
		return http.StatusConflict, "poll is not active"
	case errors.Is(err, postgres.ErrPollNotFound):
		return http.StatusNotFound, "poll not found"
	case errors.Is(err, postgres.ErrRestaurantNotFound):
		return http.StatusNotFound, "restaurant not found"
	default:
		return http.StatusInternalServerError, "failed to close poll"
	}
}
