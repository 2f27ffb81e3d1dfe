package sweepReminders

import (
	"log/slog"
	"net/http"
	"time"

	"clubsched/internal/dispatch"
	"clubsched/internal/lib/api/response"

	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Sweeper
type Sweeper interface {
	Sweep(now time.Time) dispatch.SweepResult
}

type SweepResponse struct {
	response.Response
	Due    int `json:"due"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// New runs one reminder sweep on demand. Per-recipient failures are counted
// and logged by the dispatcher, not surfaced as an HTTP error, so the cron
// caller never retries a half-delivered sweep.
func New(log *slog.Logger, sweeper Sweeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cron.sweepReminders.New"

		log := log.With(
			slog.String("op", op),
		)

		res := sweeper.Sweep(time.Now())

		log.Info("reminder sweep finished",
			slog.Int("due", res.Due),
			slog.Int("sent", res.Sent),
			slog.Int("failed", res.Failed),
		)

		render.JSON(w, r, SweepResponse{
			Response: response.OK(),
			Due:      res.Due,
			Sent:     res.Sent,
			Failed:   res.Failed,
		})
	}
}
